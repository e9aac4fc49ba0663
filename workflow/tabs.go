package workflow

import "backend/models"

// Tab identifies one view of the comparison modal.
type Tab string

const (
	TabPurchaseHistory  Tab = "purchase-history"
	TabCompareVendors   Tab = "compare-vendors"
	TabMultipleOrder    Tab = "multiple-order"
	TabApprove          Tab = "approve"
	TabCompletedSummary Tab = "completed-summary"
	TabSummary          Tab = "summary"
)

// StatusTab maps a PR line status onto the single workflow tab reachable for
// it. Exactly one of approve, completed-summary and summary is shown at a
// time; purchase-history and compare-vendors are always reachable.
func StatusTab(status string) Tab {
	switch status {
	case models.StatusPendingApproval:
		return TabApprove
	case models.StatusApproved, models.StatusPoCreated:
		return TabCompletedSummary
	default:
		return TabSummary
	}
}

// Editable reports whether price and discount cells may be edited for the
// given status. Anything already in or past approval is read-only.
func Editable(status string) bool {
	switch status {
	case "", models.StatusCompared, models.StatusPoRejected, models.StatusRejected:
		return true
	default:
		return false
	}
}
