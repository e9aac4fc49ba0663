package workflow

import "backend/models"

// LatestInventoryItem returns the PR line with the highest pr_list_id, or nil
// when the record has no lines.
func LatestInventoryItem(record *models.ComparisonRecord) *models.InventoryItem {
	if record == nil || len(record.PartInventoryAndPR) == 0 {
		return nil
	}
	latest := &record.PartInventoryAndPR[0]
	for i := 1; i < len(record.PartInventoryAndPR); i++ {
		if record.PartInventoryAndPR[i].PRListID > latest.PRListID {
			latest = &record.PartInventoryAndPR[i]
		}
	}
	return latest
}

// PreviousPurchase returns the first purchase-history record of the
// second-to-last PR line, or nil when fewer than two lines exist or the line
// carries no history.
func PreviousPurchase(record *models.ComparisonRecord) *models.PurchaseHistoryEntry {
	if record == nil || len(record.PartInventoryAndPR) < 2 {
		return nil
	}
	prev := record.PartInventoryAndPR[len(record.PartInventoryAndPR)-2]
	if len(prev.RecentPurchase) == 0 {
		return nil
	}
	return &prev.RecentPurchase[0]
}

// LatestNoPO reports whether no line of the given PR number carries a PO
// number yet.
func LatestNoPO(record *models.ComparisonRecord, prNo string) bool {
	if record == nil {
		return false
	}
	for _, item := range record.PartInventoryAndPR {
		if item.PRNo == prNo && item.PONo != "" {
			return false
		}
	}
	return true
}
