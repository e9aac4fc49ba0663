package workflow

import (
	"errors"
	"fmt"

	"backend/models"
)

// Validation failures raised before any request is sent.
var (
	ErrNoSelection     = errors.New("no vendor selected")
	ErrMissingPrice    = errors.New("every vendor needs a price before sending to approval")
	ErrNoMaterialType  = errors.New("material type must be selected")
	ErrDuplicateVendor = errors.New("vendor is already in the comparison")
	ErrUnknownReason   = errors.New("unknown approval reason code")
)

// Session drives one comparison modal: the fetched record, the draft edits
// layered on top of it, the active tab and the selected vendor row. All
// mutation happens from a single goroutine in response to discrete UI
// events, so no locking is needed.
type Session struct {
	Client        *Client
	Record        *models.ComparisonRecord
	Drafts        DraftSet
	ActiveTab     Tab
	SelectedQuote *models.VendorQuote

	latest       *models.InventoryItem
	prevPurchase *models.PurchaseHistoryEntry

	partNo   string
	prListID int
}

func NewSession(client *Client) *Session {
	return &Session{
		Client:    client,
		Drafts:    NewDraftSet(),
		ActiveTab: TabPurchaseHistory,
	}
}

// Load fetches the comparison record for a part and replaces the snapshot
// wholesale. A failed fetch leaves the previous record in place.
func (s *Session) Load(partNo string, prListID int) error {
	if partNo == "" {
		return errors.New("part number is required")
	}
	record, err := s.Client.CompareList(partNo, prListID)
	if err != nil {
		return err
	}
	s.partNo = partNo
	s.prListID = prListID
	s.replace(record)
	s.ActiveTab = TabPurchaseHistory
	return nil
}

// Reload refetches with the last load key.
func (s *Session) Reload() error {
	record, err := s.Client.CompareList(s.partNo, s.prListID)
	if err != nil {
		return err
	}
	s.replace(record)
	return nil
}

// replace swaps in a new snapshot and recomputes the derived caches.
func (s *Session) replace(record *models.ComparisonRecord) {
	s.Record = record
	s.latest = LatestInventoryItem(record)
	s.prevPurchase = PreviousPurchase(record)
	s.SelectedQuote = nil
}

// Latest returns the cached newest PR line.
func (s *Session) Latest() *models.InventoryItem {
	return s.latest
}

// PreviousPurchase returns the cached previous purchase record.
func (s *Session) PreviousPurchase() *models.PurchaseHistoryEntry {
	return s.prevPurchase
}

// status returns the workflow status of the newest PR line.
func (s *Session) status() string {
	if s.latest == nil {
		return ""
	}
	return s.latest.Status
}

// StatusTab resolves which of approve, completed-summary and summary is
// reachable for the current record.
func (s *Session) StatusTab() Tab {
	return StatusTab(s.status())
}

// CanEdit reports whether the comparison grid accepts edits.
func (s *Session) CanEdit() bool {
	return Editable(s.status())
}

// SortedVendors returns the vendor rows ordered ascending by draft-merged
// price.
func (s *Session) SortedVendors() []models.VendorQuote {
	if s.Record == nil {
		return nil
	}
	return s.Drafts.SortQuotes(s.Record.Vendors)
}

// SelectRow picks a vendor row and moves to the summary tab. Selection is
// refused while the record is read-only; the caller sees false and the tab
// stays put.
func (s *Session) SelectRow(clvID int) bool {
	if s.Record == nil || !s.CanEdit() {
		return false
	}
	for i := range s.Record.Vendors {
		if s.Record.Vendors[i].ClvID == clvID {
			merged := s.Drafts.Merge(s.Record.Vendors[i])
			s.SelectedQuote = &merged
			s.ActiveTab = TabSummary
			return true
		}
	}
	return false
}

// OpenTab switches the view. The modal can always return to
// purchase-history.
func (s *Session) OpenTab(tab Tab) {
	s.ActiveTab = tab
}

// Close clears drafts and resets the tab, matching modal dismissal.
func (s *Session) Close() {
	s.Drafts.Clear()
	s.SelectedQuote = nil
	s.ActiveTab = TabPurchaseHistory
}

// ReasonText resolves an approval reason code into the text stored on the
// comparison. Code 11 carries free text supplied by the user.
func ReasonText(code int, other string) (string, error) {
	if code == models.ReasonOther {
		if other == "" {
			return "", ErrUnknownReason
		}
		return other, nil
	}
	reason, ok := models.ApproveReasons[code]
	if !ok {
		return "", ErrUnknownReason
	}
	return reason, nil
}

// SaveAndSendToApprove validates the draft-merged prices, saves them, then
// records the selected vendor and reason. Both writes must succeed in order;
// on success the drafts are dropped, the record is refetched and the modal
// returns to purchase-history. A validation failure sends nothing.
func (s *Session) SaveAndSendToApprove(reasonCode int, otherReason string, newQty float64) error {
	if s.Record == nil {
		return errors.New("no comparison loaded")
	}
	if s.SelectedQuote == nil {
		return ErrNoSelection
	}
	reason, err := ReasonText(reasonCode, otherReason)
	if err != nil {
		return err
	}

	edited := make([]models.EditedPrice, 0, len(s.Record.Vendors))
	for _, quote := range s.Record.Vendors {
		merged := s.Drafts.Merge(quote)
		if merged.Price == 0 {
			return fmt.Errorf("%w: %s", ErrMissingPrice, merged.VendorName)
		}
		edited = append(edited, models.EditedPrice{
			ClvID:    merged.ClvID,
			Price:    merged.Price,
			Discount: merged.Discount,
			DateShip: merged.DateShip,
		})
	}

	if err := s.Client.EditPrices(models.EditPriceRequest{EditedPrices: edited}); err != nil {
		return err
	}
	if err := s.Client.SendToApprove(models.SendToApproveRequest{
		PclID:          s.Record.PclID,
		VendorSelected: s.SelectedQuote.ClvID,
		ReasonChoose:   reason,
		NewQty:         newQty,
	}); err != nil {
		return err
	}

	s.Drafts.Clear()
	if err := s.Reload(); err != nil {
		return err
	}
	s.ActiveTab = TabPurchaseHistory
	return nil
}

// Approve approves the loaded comparison and refetches.
func (s *Session) Approve() error {
	if s.Record == nil {
		return errors.New("no comparison loaded")
	}
	if err := s.Client.Approve(s.Record.PclID); err != nil {
		return err
	}
	return s.Reload()
}

// Reject rejects the loaded comparison with a reason and refetches.
func (s *Session) Reject(reason string) error {
	if s.Record == nil {
		return errors.New("no comparison loaded")
	}
	if reason == "" {
		return errors.New("rejection reason is required")
	}
	if err := s.Client.Reject(s.Record.PclID, reason); err != nil {
		return err
	}
	return s.Reload()
}

// CreatePO issues a purchase order for the given comparison ids. Without a
// material type the trigger stays disabled and no request is sent.
func (s *Session) CreatePO(materialType, remark string, extDiscount float64, pclIDs []int) error {
	if materialType != models.MaterialTypeDirect && materialType != models.MaterialTypeIndirect {
		return ErrNoMaterialType
	}
	if len(pclIDs) == 0 {
		return errors.New("no comparison lists selected")
	}
	poList := make([]models.POListItem, 0, len(pclIDs))
	for _, id := range pclIDs {
		poList = append(poList, models.POListItem{PclID: id})
	}
	return s.Client.CreatePO(models.CreatePORequest{
		MaterialType: materialType,
		Remark:       remark,
		ExtDiscount:  extDiscount,
		POList:       poList,
	})
}

// AddVendor inserts a vendor into the comparison. A vendor already present
// is refused locally; the insert is awaited before the refetch so the new
// row is part of the next snapshot.
func (s *Session) AddVendor(vendorCode string) error {
	if s.Record == nil {
		return errors.New("no comparison loaded")
	}
	for _, quote := range s.Record.Vendors {
		if quote.VendorCode == vendorCode {
			return ErrDuplicateVendor
		}
	}
	if err := s.Client.InsertVendorForCompare(s.Record.PclID, vendorCode); err != nil {
		return err
	}
	return s.Reload()
}

// RemoveVendor deletes a vendor quote row and purges it from local
// selection state.
func (s *Session) RemoveVendor(clvID int) error {
	if s.Record == nil {
		return errors.New("no comparison loaded")
	}
	if err := s.Client.RemoveVendorFromCLV(clvID); err != nil {
		return err
	}
	if s.SelectedQuote != nil && s.SelectedQuote.ClvID == clvID {
		s.SelectedQuote = nil
	}
	delete(s.Drafts, clvID)
	return s.Reload()
}
