package workflow

import (
	"testing"

	"backend/models"
)

func twoVendorQuotes() []models.VendorQuote {
	return []models.VendorQuote{
		{ClvID: 10, VendorCode: "V001", VendorName: "ABC Suppliers", Price: 500},
		{ClvID: 11, VendorCode: "V002", VendorName: "XYZ Trading", Price: 300},
	}
}

func TestSortQuotesAscendingByPrice(t *testing.T) {
	ds := NewDraftSet()
	sorted := ds.SortQuotes(twoVendorQuotes())
	if sorted[0].ClvID != 11 || sorted[1].ClvID != 10 {
		t.Fatalf("expected order [11 10], got [%d %d]", sorted[0].ClvID, sorted[1].ClvID)
	}
}

func TestPriceEditResorts(t *testing.T) {
	ds := NewDraftSet()
	quotes := twoVendorQuotes()

	ds.SetPriceText(10, "100")
	ds.CommitPrice(10)

	sorted := ds.SortQuotes(quotes)
	if sorted[0].ClvID != 10 || sorted[1].ClvID != 11 {
		t.Fatalf("expected order [10 11] after edit, got [%d %d]", sorted[0].ClvID, sorted[1].ClvID)
	}
	// source slice must stay untouched
	if quotes[0].ClvID != 10 || quotes[0].Price != 500 {
		t.Errorf("input slice was mutated: %+v", quotes[0])
	}
}

func TestSortIsNonDecreasingByMergedPrice(t *testing.T) {
	ds := NewDraftSet()
	quotes := []models.VendorQuote{
		{ClvID: 1, Price: 400, Discount: []float64{50}},
		{ClvID: 2, Price: 300},
		{ClvID: 3, Price: 250, Discount: []float64{10, 10}},
	}
	ds.SetPriceText(2, "500")
	ds.CommitPrice(2)

	sorted := ds.SortQuotes(quotes)
	for i := 1; i < len(sorted); i++ {
		if ds.Merge(sorted[i-1]).Price > ds.Merge(sorted[i]).Price {
			t.Fatalf("order not non-decreasing at %d: %f > %f",
				i, ds.Merge(sorted[i-1]).Price, ds.Merge(sorted[i]).Price)
		}
	}
}

func TestSortIgnoresDiscounts(t *testing.T) {
	ds := NewDraftSet()
	quotes := []models.VendorQuote{
		{ClvID: 1, Price: 100, Discount: []float64{50}},
		{ClvID: 2, Price: 90},
	}
	// vendor 1 nets 50 after its discount, but the grid orders on list price
	sorted := ds.SortQuotes(quotes)
	if sorted[0].ClvID != 2 || sorted[1].ClvID != 1 {
		t.Fatalf("expected order [2 1], got [%d %d]", sorted[0].ClvID, sorted[1].ClvID)
	}
}

func TestCommitPriceInvalidTextParsesToZero(t *testing.T) {
	ds := NewDraftSet()
	ds.SetPriceText(10, "12.3.4")
	ds.CommitPrice(10)
	if d := ds[10]; d.Price == nil || *d.Price != 0 {
		t.Fatalf("expected invalid text to commit as 0, got %+v", d.Price)
	}

	ds.SetPriceText(10, " 480.5 ")
	ds.CommitPrice(10)
	if *ds[10].Price != 480.5 {
		t.Fatalf("expected 480.5, got %f", *ds[10].Price)
	}
}

func TestCommitPriceWithoutDraftIsNoop(t *testing.T) {
	ds := NewDraftSet()
	ds.CommitPrice(99)
	if _, ok := ds[99]; ok {
		t.Fatal("commit without prior keystrokes should not create a draft")
	}
}

func TestMergeEmptyDraftIsIdentity(t *testing.T) {
	ds := NewDraftSet()
	original := models.VendorQuote{ClvID: 10, VendorCode: "V001", Price: 500, Discount: []float64{5, 2}, DateShip: "2024-03-01"}
	merged := ds.Merge(original)
	if merged.Price != original.Price || merged.DateShip != original.DateShip {
		t.Fatalf("merge without draft changed the quote: %+v", merged)
	}
	if len(merged.Discount) != 2 || merged.Discount[0] != 5 {
		t.Fatalf("merge without draft changed discounts: %v", merged.Discount)
	}
}

func TestMergeDraftWins(t *testing.T) {
	ds := NewDraftSet()
	quote := models.VendorQuote{ClvID: 10, Price: 500, Discount: []float64{5}}

	ds.SetPriceText(10, "450")
	ds.CommitPrice(10)
	ds.SetDiscount(10, quote.Discount, 0, 8)

	merged := ds.Merge(quote)
	if merged.Price != 450 {
		t.Errorf("expected draft price 450, got %f", merged.Price)
	}
	if merged.Discount[0] != 8 {
		t.Errorf("expected draft discount 8, got %v", merged.Discount)
	}
}

func TestAddDiscountCapsAtSix(t *testing.T) {
	ds := NewDraftSet()
	original := []float64{1, 2, 3, 4, 5, 6}
	ds.AddDiscount(10, original)
	if d, ok := ds[10]; ok && d.Discounts != nil && len(d.Discounts) > models.MaxDiscounts {
		t.Fatalf("add beyond %d discounts must be a no-op, got %v", models.MaxDiscounts, d.Discounts)
	}

	ds.AddDiscount(11, []float64{5})
	if got := ds[11].Discounts; len(got) != 2 || got[1] != 0 {
		t.Fatalf("expected appended zero cell, got %v", got)
	}
}

func TestRemoveSoleDiscountIsNoop(t *testing.T) {
	ds := NewDraftSet()
	ds.RemoveDiscount(10, []float64{5}, 0)
	if d, ok := ds[10]; ok && d.Discounts != nil && len(d.Discounts) != 1 {
		t.Fatalf("removing the sole discount must be a no-op, got %v", d.Discounts)
	}

	ds.RemoveDiscount(11, []float64{5, 2}, 0)
	if got := ds[11].Discounts; len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected [2] after removal, got %v", got)
	}
}

func TestSetDiscountClamps(t *testing.T) {
	ds := NewDraftSet()
	ds.SetDiscount(10, []float64{5}, 0, 150)
	if got := ds[10].Discounts[0]; got != 100 {
		t.Errorf("expected clamp to 100, got %f", got)
	}
	ds.SetDiscount(10, nil, 5, 10) // out of range, no-op
	if len(ds[10].Discounts) != 1 {
		t.Errorf("out-of-range index must not grow the list: %v", ds[10].Discounts)
	}

	ds.SetDiscount(11, []float64{5}, 0, -3)
	if got := ds[11].Discounts[0]; got != 0 {
		t.Errorf("expected clamp to 0, got %f", got)
	}
}

func TestEffectivePriceSequentialDiscounts(t *testing.T) {
	ds := NewDraftSet()
	quote := models.VendorQuote{ClvID: 10, Price: 1000, Discount: []float64{10, 5}}
	// 1000 * 0.9 * 0.95 = 855
	if got := ds.EffectivePrice(quote); got != 855 {
		t.Fatalf("expected 855, got %f", got)
	}
}

func TestClearDropsAllDrafts(t *testing.T) {
	ds := NewDraftSet()
	ds.SetPriceText(10, "1")
	ds.SetPriceText(11, "2")
	ds.Clear()
	if len(ds) != 0 {
		t.Fatalf("expected empty draft set, got %d entries", len(ds))
	}
}
