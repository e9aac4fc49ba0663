package workflow

import (
	"testing"

	"backend/models"
)

func sampleRecord() *models.ComparisonRecord {
	return &models.ComparisonRecord{
		PclID:  1,
		PartNo: "PN-001",
		PartInventoryAndPR: []models.InventoryItem{
			{PRListID: 100, PRNo: "PR-2024-099", ProductCode: "PN-001", PONo: "PO-2024-0009",
				RecentPurchase: models.FlexHistory{
					{VendorCode: "V001", Price: 480, PurchaseDate: "2024-01-15"},
					{VendorCode: "V002", Price: 495, PurchaseDate: "2023-11-02"},
				}},
			{PRListID: 101, PRNo: "PR-2024-100", ProductCode: "PN-001"},
		},
		Vendors: []models.VendorQuote{
			{ClvID: 10, VendorCode: "V001", Price: 500},
			{ClvID: 11, VendorCode: "V002", Price: 300},
		},
	}
}

func TestLatestInventoryItemIsMaxPRListID(t *testing.T) {
	record := sampleRecord()
	latest := LatestInventoryItem(record)
	if latest == nil || latest.PRListID != 101 {
		t.Fatalf("expected latest pr_list_id 101, got %+v", latest)
	}

	// order independence
	record.PartInventoryAndPR[0], record.PartInventoryAndPR[1] =
		record.PartInventoryAndPR[1], record.PartInventoryAndPR[0]
	if latest := LatestInventoryItem(record); latest.PRListID != 101 {
		t.Fatalf("expected 101 regardless of order, got %d", latest.PRListID)
	}

	if LatestInventoryItem(nil) != nil {
		t.Error("nil record must yield nil")
	}
	if LatestInventoryItem(&models.ComparisonRecord{}) != nil {
		t.Error("empty record must yield nil")
	}
}

func TestPreviousPurchase(t *testing.T) {
	record := sampleRecord()
	prev := PreviousPurchase(record)
	if prev == nil || prev.VendorCode != "V001" || prev.Price != 480 {
		t.Fatalf("expected first history entry of second-to-last line, got %+v", prev)
	}

	single := &models.ComparisonRecord{
		PartInventoryAndPR: []models.InventoryItem{{PRListID: 1}},
	}
	if PreviousPurchase(single) != nil {
		t.Error("one line cannot have a previous purchase")
	}

	record.PartInventoryAndPR[0].RecentPurchase = nil
	if PreviousPurchase(record) != nil {
		t.Error("line without history must yield nil")
	}
}

func TestLatestNoPO(t *testing.T) {
	record := sampleRecord()
	if !LatestNoPO(record, "PR-2024-100") {
		t.Error("PR-2024-100 has no PO, expected true")
	}
	if LatestNoPO(record, "PR-2024-099") {
		t.Error("PR-2024-099 carries a PO, expected false")
	}
	if LatestNoPO(nil, "PR-2024-100") {
		t.Error("nil record, expected false")
	}
}
