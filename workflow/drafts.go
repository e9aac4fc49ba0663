package workflow

import (
	"sort"
	"strconv"
	"strings"

	"backend/models"
)

// PriceDraft is an in-memory, per-vendor override of price and discount
// fields. RawPrice carries the keystroke text as typed, including
// intermediate states like a trailing decimal point; Price is only set once
// the text is committed on blur. A nil Discounts slice means the discount
// list was never touched.
type PriceDraft struct {
	RawPrice  string
	Price     *float64
	Discounts []float64
}

// DraftSet maps a vendor quote's clv_id to its draft. Absent key means no
// edits for that vendor.
type DraftSet map[int]*PriceDraft

func NewDraftSet() DraftSet {
	return make(DraftSet)
}

func (ds DraftSet) draft(clvID int) *PriceDraft {
	d, ok := ds[clvID]
	if !ok {
		d = &PriceDraft{}
		ds[clvID] = d
	}
	return d
}

// SetPriceText records the raw keystroke text for a vendor without parsing.
func (ds DraftSet) SetPriceText(clvID int, text string) {
	ds.draft(clvID).RawPrice = text
}

// CommitPrice parses the raw text into the draft price. Unparseable text
// commits as zero, matching blur behaviour on the grid.
func (ds DraftSet) CommitPrice(clvID int) {
	d, ok := ds[clvID]
	if !ok {
		return
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(d.RawPrice), 64)
	if err != nil {
		price = 0
	}
	d.Price = &price
}

// discountBase returns the working discount list for a vendor: the draft list
// when one exists, else a copy of the original quote's list.
func (ds DraftSet) discountBase(clvID int, original []float64) []float64 {
	if d, ok := ds[clvID]; ok && d.Discounts != nil {
		return d.Discounts
	}
	base := make([]float64, len(original))
	copy(base, original)
	return base
}

// AddDiscount appends a zero discount cell. Adding beyond six entries is a
// no-op.
func (ds DraftSet) AddDiscount(clvID int, original []float64) {
	base := ds.discountBase(clvID, original)
	if len(base) >= models.MaxDiscounts {
		return
	}
	ds.draft(clvID).Discounts = append(base, 0)
}

// RemoveDiscount deletes the discount cell at index. Removing the sole
// remaining entry or an out-of-range index is a no-op.
func (ds DraftSet) RemoveDiscount(clvID int, original []float64, index int) {
	base := ds.discountBase(clvID, original)
	if len(base) <= 1 || index < 0 || index >= len(base) {
		return
	}
	ds.draft(clvID).Discounts = append(base[:index], base[index+1:]...)
}

// SetDiscount writes a discount value at index, clamped to [0,100].
func (ds DraftSet) SetDiscount(clvID int, original []float64, index int, value float64) {
	base := ds.discountBase(clvID, original)
	if index < 0 || index >= len(base) {
		return
	}
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	base[index] = value
	ds.draft(clvID).Discounts = base
}

// Merge overlays a vendor quote with its draft. Draft fields win; with no
// draft the quote passes through unchanged.
func (ds DraftSet) Merge(quote models.VendorQuote) models.VendorQuote {
	d, ok := ds[quote.ClvID]
	if !ok {
		return quote
	}
	if d.Price != nil {
		quote.Price = *d.Price
	}
	if d.Discounts != nil {
		quote.Discount = d.Discounts
	}
	return quote
}

// EffectivePrice applies the sequential discount chain to the draft-merged
// price. Each percentage applies to the running result.
func (ds DraftSet) EffectivePrice(quote models.VendorQuote) float64 {
	merged := ds.Merge(quote)
	price := merged.Price
	for _, d := range merged.Discount {
		price = price * (1 - d/100)
	}
	return price
}

// SortQuotes returns a new slice ordered ascending by draft-merged price,
// before any discounts. Discounted net prices are a display concern, see
// EffectivePrice. The input is left untouched.
func (ds DraftSet) SortQuotes(quotes []models.VendorQuote) []models.VendorQuote {
	sorted := make([]models.VendorQuote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ds.Merge(sorted[i]).Price < ds.Merge(sorted[j]).Price
	})
	return sorted
}

// Clear drops every draft, used after a successful submit or modal close.
func (ds DraftSet) Clear() {
	for k := range ds {
		delete(ds, k)
	}
}
