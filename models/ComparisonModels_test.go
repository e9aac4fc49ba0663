package models

import (
	"encoding/json"
	"testing"
)

func TestFlexHistoryDecodesArray(t *testing.T) {
	var item InventoryItem
	payload := `{"pr_list_id":101,"recent_purchase":[{"vendor_code":"V001","price":480},{"vendor_code":"V002","price":495}]}`
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(item.RecentPurchase) != 2 || item.RecentPurchase[0].VendorCode != "V001" {
		t.Fatalf("expected two entries, got %+v", item.RecentPurchase)
	}
}

func TestFlexHistoryDecodesSingleObject(t *testing.T) {
	var item InventoryItem
	payload := `{"pr_list_id":101,"recent_purchase":{"vendor_code":"V001","price":480}}`
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(item.RecentPurchase) != 1 || item.RecentPurchase[0].Price != 480 {
		t.Fatalf("expected single-entry list, got %+v", item.RecentPurchase)
	}
}

func TestFlexHistoryDecodesNullAndAbsent(t *testing.T) {
	var withNull InventoryItem
	if err := json.Unmarshal([]byte(`{"pr_list_id":101,"recent_purchase":null}`), &withNull); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if withNull.RecentPurchase != nil {
		t.Errorf("null must decode to nil, got %+v", withNull.RecentPurchase)
	}

	var absent InventoryItem
	if err := json.Unmarshal([]byte(`{"pr_list_id":101}`), &absent); err != nil {
		t.Fatalf("unmarshal absent: %v", err)
	}
	if absent.RecentPurchase != nil {
		t.Errorf("absent must stay nil, got %+v", absent.RecentPurchase)
	}
}
