package workflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"backend/models"
)

// ErrNoToken blocks any call before a request is built. The UI surfaces it
// as a client-side error; nothing reaches the network.
var ErrNoToken = errors.New("no access token, sign in first")

// Client is a typed wrapper over the purchasing backend API. Every call
// attaches the bearer token. Requests carry no timeout and are never
// retried; a failure is reported once and the caller decides what to do.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{},
	}
}

func (c *Client) do(method, path string, query url.Values, body interface{}, out interface{}) error {
	if c.Token == "" {
		return ErrNoToken
	}

	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// decodeError extracts the server's JSON error message when one is present,
// falling back to a generic message per status code.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Error != "" {
			return errors.New(body.Error)
		}
		if body.Message != "" {
			return errors.New(body.Message)
		}
	}
	return fmt.Errorf("server returned status %d", resp.StatusCode)
}

// CompareList fetches the comparison record for a part number, optionally
// narrowed to one PR line.
func (c *Client) CompareList(partNo string, prListID int) (*models.ComparisonRecord, error) {
	query := url.Values{"part_no": {partNo}}
	if prListID > 0 {
		query.Set("pr_list_id", strconv.Itoa(prListID))
	}
	var record models.ComparisonRecord
	if err := c.do(http.MethodGet, "/api/purchase/pc/compare/list", query, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ApprovedList fetches PR lines approved and waiting for PO creation.
func (c *Client) ApprovedList(prID int) ([]models.ApprovedLine, error) {
	query := url.Values{}
	if prID > 0 {
		query.Set("prId", strconv.Itoa(prID))
	}
	var lines []models.ApprovedLine
	if err := c.do(http.MethodGet, "/api/purchase/pc/approved-list", query, nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// SearchVendor queries the vendor directory, returning display strings in
// the form "CODE : NAME".
func (c *Client) SearchVendor(keyword string) ([]string, error) {
	var results []string
	err := c.do(http.MethodGet, "/api/purchase/search-vendor", url.Values{"keyword": {keyword}}, nil, &results)
	return results, err
}

// VendorByCode fetches one vendor's detail.
func (c *Client) VendorByCode(code string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := c.do(http.MethodGet, "/api/purchase/vendors", url.Values{"vendorCode": {code}}, nil, &vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}

// CreateVendor registers a new vendor in the directory.
func (c *Client) CreateVendor(vendor models.Vendor) error {
	return c.do(http.MethodPost, "/api/purchase/create-new-vendor", nil, vendor, nil)
}

// UpdateVendor updates vendor contact fields.
func (c *Client) UpdateVendor(vendor models.Vendor) error {
	return c.do(http.MethodPut, "/api/purchase/update-vendor", nil, vendor, nil)
}

// InsertVendorForCompare adds a vendor quote row to a comparison.
func (c *Client) InsertVendorForCompare(pclID int, vendorCode string) error {
	req := models.InsertVendorRequest{PclID: pclID, VendorCode: vendorCode}
	return c.do(http.MethodPost, "/api/purchase/insert-vendor-for-compare", nil, req, nil)
}

// RemoveVendorFromCLV deletes one vendor quote row.
func (c *Client) RemoveVendorFromCLV(clvID int) error {
	query := url.Values{"clvId": {strconv.Itoa(clvID)}}
	return c.do(http.MethodDelete, "/api/purchase/remove-vendor-from-clv", query, nil, nil)
}

// EditPrices updates all vendor price/discount/ship-date tuples of a
// comparison in one request.
func (c *Client) EditPrices(req models.EditPriceRequest) error {
	return c.do(http.MethodPut, "/api/purchase/edit-price-in-clv", nil, req, nil)
}

// SendToApprove records the chosen vendor and approval reason.
func (c *Client) SendToApprove(req models.SendToApproveRequest) error {
	return c.do(http.MethodPut, "/api/purchase/send-pcl-to-approve", nil, req, nil)
}

// Approve approves a pending comparison list.
func (c *Client) Approve(pclID int) error {
	query := url.Values{"id": {strconv.Itoa(pclID)}}
	return c.do(http.MethodPut, "/api/purchase/approve-pcl", query, nil, nil)
}

// Reject rejects a pending comparison list with a reason.
func (c *Client) Reject(pclID int, reason string) error {
	query := url.Values{"pclId": {strconv.Itoa(pclID)}, "reason": {reason}}
	return c.do(http.MethodPut, "/api/purchase/reject-pcl", query, nil, nil)
}

// CreatePO creates a purchase order from one or more approved comparisons.
func (c *Client) CreatePO(req models.CreatePORequest) error {
	return c.do(http.MethodPost, "/api/purchase/po/create", nil, req, nil)
}
