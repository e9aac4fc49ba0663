package models

import (
	"encoding/json"
)

// PR line / PCL workflow statuses. The whole application dispatches on this
// closed set; anything else coming off the wire is treated as read-only.
const (
	StatusPendingApproval = "Pending Approval"
	StatusApproved        = "Approved"
	StatusPoCreated       = "Po Created"
	StatusPoApproved      = "PO Approved"
	StatusOrdered         = "ORDERED"
	StatusCompared        = "Compared"
	StatusRejected        = "Rejected"
	StatusPoRejected      = "Po Rejected"
)

// ApproveReasons is the canonical reason list for sending a comparison to
// approval. Code 11 is reserved for a free-text reason supplied by the user.
var ApproveReasons = map[int]string{
	1:  "Lowest price",
	2:  "Best quality",
	3:  "Fastest delivery",
	4:  "Sole vendor",
	5:  "OEM / standard part",
	6:  "Best credit term",
	7:  "Contract price",
	8:  "Urgent requirement",
	9:  "Repeat order with previous vendor",
	10: "Sample / trial order",
}

// ReasonOther marks a free-text reason.
const ReasonOther = 11

// MaxDiscounts caps the sequential discount chain per vendor quote.
const MaxDiscounts = 6

// ComparisonRecord is one purchase comparison list (PCL): the PR lines for a
// part number together with the vendor quotes being compared.
type ComparisonRecord struct {
	PclID              int             `json:"pcl_id" example:"1"`
	PartNo             string          `json:"part_no" example:"PN-001"`
	Requester          string          `json:"requester" example:"John Doe"`
	Department         string          `json:"department" example:"Production"`
	Status             string          `json:"status,omitempty" example:"Pending Approval"`
	VendorSelected     int             `json:"vendor_selected,omitempty" example:"0"`
	ReasonChoose       string          `json:"reason_choose,omitempty" example:""`
	PartInventoryAndPR []InventoryItem `json:"part_inventory_and_pr"`
	Vendors            []VendorQuote   `json:"vendors"`
}

// InventoryItem is one purchase-request line inside a comparison record.
type InventoryItem struct {
	PRListID       int         `json:"pr_list_id" example:"101"`
	PRNo           string      `json:"pr_no" example:"PR-2024-100"`
	ProductCode    string      `json:"product_code" example:"PN-001"`
	ProductDetail  string      `json:"product_detail" example:"Hex bolt M8x30"`
	Qty            float64     `json:"qty" example:"500"`
	Unit           string      `json:"unit" example:"pcs"`
	PONo           string      `json:"po_no,omitempty" example:""`
	Status         string      `json:"status,omitempty" example:""`
	RecentPurchase FlexHistory `json:"recent_purchase,omitempty"`
}

// PurchaseHistoryEntry is a historical purchase snapshot for a PR line.
type PurchaseHistoryEntry struct {
	VendorCode    string    `json:"vendor_code" example:"V001"`
	VendorName    string    `json:"vendor_name" example:"ABC Suppliers"`
	Price         float64   `json:"price" example:"480.00"`
	PriceApproval float64   `json:"price_approval" example:"480.00"`
	Discount      []float64 `json:"discount" example:"5,2"`
	PurchaseDate  string    `json:"purchase_date" example:"2024-01-15"`
	DueDate       string    `json:"due_date" example:"2024-02-15"`
}

// FlexHistory decodes recent_purchase payloads that arrive as an array, a
// single object, or are absent entirely. The canonical contract is an array;
// the other shapes were observed in the wild and are normalised here once
// instead of type-narrowing at every call site.
type FlexHistory []PurchaseHistoryEntry

func (f *FlexHistory) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = nil
		return nil
	}
	if data[0] == '[' {
		var list []PurchaseHistoryEntry
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*f = list
		return nil
	}
	var single PurchaseHistoryEntry
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*f = FlexHistory{single}
	return nil
}

// VendorQuote is one vendor's offer row within a comparison list (CLV).
// ClvID is unique within the record.
type VendorQuote struct {
	ClvID      int       `json:"clv_id" example:"10"`
	VendorCode string    `json:"vendor_code" example:"V001"`
	VendorName string    `json:"vendor_name" example:"ABC Suppliers"`
	TaxID      string    `json:"tax_id,omitempty" example:"0105536112233"`
	CreditTerm string    `json:"credit_term,omitempty" example:"30 days"`
	Email      string    `json:"email,omitempty" example:"sales@abc.example.com"`
	Phone      string    `json:"phone,omitempty" example:"022223333"`
	Fax        string    `json:"fax,omitempty" example:""`
	Price      float64   `json:"price" example:"500.00"`
	Discount   []float64 `json:"discount" example:"5,2"`
	DateShip   string    `json:"date_ship,omitempty" example:"2024-03-01"`
	DateDue    string    `json:"date_due,omitempty" example:"2024-03-15"`
}

// ApprovedLine is a PR line approved for PO creation.
type ApprovedLine struct {
	PclID         int     `json:"pcl_id" example:"1"`
	PartNo        string  `json:"part_no" example:"PN-001"`
	PRNo          string  `json:"pr_no" example:"PR-2024-100"`
	ProductDetail string  `json:"product_detail" example:"Hex bolt M8x30"`
	Qty           float64 `json:"qty" example:"500"`
	Unit          string  `json:"unit" example:"pcs"`
	VendorName    string  `json:"vendor_name" example:"ABC Suppliers"`
	Status        string  `json:"status" example:"Approved"`
}

// EditedPrice is one vendor tuple inside an edit-price request.
type EditedPrice struct {
	ClvID    int       `json:"clv_id" binding:"required" example:"10"`
	Price    float64   `json:"price" example:"480.00"`
	Discount []float64 `json:"discount" example:"5,2"`
	DateShip string    `json:"date_ship,omitempty" example:"2024-03-01"`
}

// EditPriceRequest updates all price/discount/ship-date tuples of a PCL.
type EditPriceRequest struct {
	EditedPrices []EditedPrice `json:"edited_prices" binding:"required"`
}

// SendToApproveRequest records the chosen vendor and approval reason.
type SendToApproveRequest struct {
	PclID          int     `json:"pcl_id" binding:"required" example:"1"`
	VendorSelected int     `json:"vendor_selected" binding:"required" example:"10"`
	ReasonChoose   string  `json:"reason_choose" binding:"required" example:"Lowest price"`
	NewQty         float64 `json:"new_qty" example:"500"`
}

// InsertVendorRequest adds a vendor into an existing comparison.
type InsertVendorRequest struct {
	PclID      int    `json:"pcl_id" binding:"required" example:"1"`
	VendorCode string `json:"vendor_code" binding:"required" example:"V001"`
}
