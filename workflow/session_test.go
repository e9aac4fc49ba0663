package workflow

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"backend/models"
)

// fakeBackend serves a canned comparison record and accepts every write,
// recording the order of calls it sees.
type fakeBackend struct {
	record   *models.ComparisonRecord
	calls    []string
	requests int64
}

func (b *fakeBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&b.requests, 1)
		b.calls = append(b.calls, r.Method+" "+r.URL.Path)

		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "missing token"})
			return
		}

		switch r.Method + " " + r.URL.Path {
		case "GET /api/purchase/pc/compare/list":
			json.NewEncoder(w).Encode(b.record)
		case "GET /api/purchase/search-vendor":
			json.NewEncoder(w).Encode([]string{"V003 : New Suppliers Ltd"})
		case "PUT /api/purchase/edit-price-in-clv",
			"PUT /api/purchase/send-pcl-to-approve",
			"PUT /api/purchase/approve-pcl",
			"PUT /api/purchase/reject-pcl",
			"DELETE /api/purchase/remove-vendor-from-clv":
			json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
		case "POST /api/purchase/insert-vendor-for-compare", "POST /api/purchase/po/create":
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
		}
	})
}

func newTestSession(t *testing.T, record *models.ComparisonRecord) (*Session, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{record: record}
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	session := NewSession(NewClient(server.URL, "test-token"))
	if err := session.Load("PN-001", 101); err != nil {
		t.Fatalf("load: %v", err)
	}
	backend.calls = nil
	backend.requests = 0
	return session, backend
}

func TestLoadReplacesSnapshotAndCaches(t *testing.T) {
	session, _ := newTestSession(t, sampleRecord())

	if session.Record == nil || session.Record.PclID != 1 {
		t.Fatalf("record not loaded: %+v", session.Record)
	}
	if session.ActiveTab != TabPurchaseHistory {
		t.Errorf("expected purchase-history after load, got %s", session.ActiveTab)
	}
	if latest := session.Latest(); latest == nil || latest.PRListID != 101 {
		t.Errorf("latest cache wrong: %+v", latest)
	}
	if prev := session.PreviousPurchase(); prev == nil || prev.VendorCode != "V001" {
		t.Errorf("previous purchase cache wrong: %+v", prev)
	}
}

func TestSelectRowMovesToSummary(t *testing.T) {
	session, _ := newTestSession(t, sampleRecord())

	if !session.SelectRow(11) {
		t.Fatal("expected selection to succeed on editable record")
	}
	if session.ActiveTab != TabSummary {
		t.Errorf("expected summary tab, got %s", session.ActiveTab)
	}
	if session.SelectedQuote == nil || session.SelectedQuote.ClvID != 11 {
		t.Errorf("wrong selection: %+v", session.SelectedQuote)
	}
}

func TestSelectRowDisabledWhilePendingApproval(t *testing.T) {
	record := sampleRecord()
	record.PartInventoryAndPR[1].Status = models.StatusPendingApproval
	session, _ := newTestSession(t, record)

	if session.StatusTab() != TabApprove {
		t.Errorf("expected approve tab reachable, got %s", session.StatusTab())
	}
	if session.SelectRow(11) {
		t.Fatal("row click must do nothing while pending approval")
	}
	if session.ActiveTab != TabPurchaseHistory {
		t.Errorf("tab must not change, got %s", session.ActiveTab)
	}
	if session.SelectedQuote != nil {
		t.Errorf("nothing may be selected, got %+v", session.SelectedQuote)
	}
}

func TestSendToApproveBlockedOnZeroPrice(t *testing.T) {
	record := sampleRecord()
	record.Vendors[1].Price = 0
	session, backend := newTestSession(t, record)
	session.SelectRow(10)
	backend.requests = 0

	err := session.SaveAndSendToApprove(1, "", 0)
	if !errors.Is(err, ErrMissingPrice) {
		t.Fatalf("expected ErrMissingPrice, got %v", err)
	}
	if backend.requests != 0 {
		t.Fatalf("validation failure must not reach the network, saw %d requests", backend.requests)
	}
}

func TestSendToApproveBlockedWithDraftPriceZero(t *testing.T) {
	session, backend := newTestSession(t, sampleRecord())
	session.SelectRow(10)
	// blur with junk text commits zero, which then fails validation
	session.Drafts.SetPriceText(11, "abc")
	session.Drafts.CommitPrice(11)
	backend.requests = 0

	if err := session.SaveAndSendToApprove(1, "", 0); !errors.Is(err, ErrMissingPrice) {
		t.Fatalf("expected ErrMissingPrice, got %v", err)
	}
	if backend.requests != 0 {
		t.Fatalf("expected no network traffic, saw %d requests", backend.requests)
	}
}

func TestSendToApproveSequence(t *testing.T) {
	session, backend := newTestSession(t, sampleRecord())
	session.SelectRow(10)
	session.Drafts.SetPriceText(10, "450")
	session.Drafts.CommitPrice(10)
	backend.calls = nil

	if err := session.SaveAndSendToApprove(1, "", 500); err != nil {
		t.Fatalf("send to approve: %v", err)
	}

	want := []string{
		"PUT /api/purchase/edit-price-in-clv",
		"PUT /api/purchase/send-pcl-to-approve",
		"GET /api/purchase/pc/compare/list",
	}
	if len(backend.calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), backend.calls)
	}
	for i, call := range want {
		if backend.calls[i] != call {
			t.Errorf("call %d: expected %s, got %s", i, call, backend.calls[i])
		}
	}

	if len(session.Drafts) != 0 {
		t.Error("drafts must be cleared after a successful submit")
	}
	if session.ActiveTab != TabPurchaseHistory {
		t.Errorf("expected tab reset, got %s", session.ActiveTab)
	}
}

func TestSendToApproveUnknownReason(t *testing.T) {
	session, backend := newTestSession(t, sampleRecord())
	session.SelectRow(10)
	backend.requests = 0

	if err := session.SaveAndSendToApprove(99, "", 0); !errors.Is(err, ErrUnknownReason) {
		t.Fatalf("expected ErrUnknownReason, got %v", err)
	}
	if err := session.SaveAndSendToApprove(models.ReasonOther, "", 0); !errors.Is(err, ErrUnknownReason) {
		t.Fatalf("expected ErrUnknownReason for empty free text, got %v", err)
	}
	if backend.requests != 0 {
		t.Fatalf("expected no network traffic, saw %d requests", backend.requests)
	}
}

func TestReasonText(t *testing.T) {
	if got, err := ReasonText(1, ""); err != nil || got != models.ApproveReasons[1] {
		t.Errorf("ReasonText(1) = %q, %v", got, err)
	}
	if got, err := ReasonText(models.ReasonOther, "price negotiated by phone"); err != nil || got != "price negotiated by phone" {
		t.Errorf("ReasonText(11) = %q, %v", got, err)
	}
}

func TestCreatePOWithoutMaterialTypeSendsNothing(t *testing.T) {
	session, backend := newTestSession(t, sampleRecord())

	if err := session.CreatePO("", "remark", 0, []int{1}); !errors.Is(err, ErrNoMaterialType) {
		t.Fatalf("expected ErrNoMaterialType, got %v", err)
	}
	if backend.requests != 0 {
		t.Fatalf("expected no POST, saw %d requests", backend.requests)
	}

	if err := session.CreatePO(models.MaterialTypeDirect, "remark", 0, []int{1}); err != nil {
		t.Fatalf("create PO: %v", err)
	}
	if backend.requests != 1 || backend.calls[0] != "POST /api/purchase/po/create" {
		t.Fatalf("expected one create call, got %v", backend.calls)
	}
}

func TestAddVendorDuplicateGuard(t *testing.T) {
	session, backend := newTestSession(t, sampleRecord())

	if err := session.AddVendor("V001"); !errors.Is(err, ErrDuplicateVendor) {
		t.Fatalf("expected ErrDuplicateVendor, got %v", err)
	}
	if backend.requests != 0 {
		t.Fatalf("duplicate guard must block before the network, saw %d requests", backend.requests)
	}

	if err := session.AddVendor("V003"); err != nil {
		t.Fatalf("add vendor: %v", err)
	}
	// insert is awaited, then the record is refetched
	want := []string{
		"POST /api/purchase/insert-vendor-for-compare",
		"GET /api/purchase/pc/compare/list",
	}
	for i, call := range want {
		if backend.calls[i] != call {
			t.Errorf("call %d: expected %s, got %s", i, call, backend.calls[i])
		}
	}
}

func TestSortedVendorsReflectsDrafts(t *testing.T) {
	session, _ := newTestSession(t, sampleRecord())

	sorted := session.SortedVendors()
	if sorted[0].ClvID != 11 || sorted[1].ClvID != 10 {
		t.Fatalf("expected [11 10] by price, got %+v", sorted)
	}

	session.Drafts.SetPriceText(10, "100")
	session.Drafts.CommitPrice(10)
	sorted = session.SortedVendors()
	if sorted[0].ClvID != 10 {
		t.Fatalf("expected draft price to lead the order, got %+v", sorted)
	}
	if merged := session.Drafts.Merge(sorted[0]); merged.Price != 100 {
		t.Fatalf("expected merged price 100, got %v", merged.Price)
	}
}

func TestSearchVendorReturnsDisplayStrings(t *testing.T) {
	session, _ := newTestSession(t, sampleRecord())

	results, err := session.Client.SearchVendor("new")
	if err != nil {
		t.Fatalf("search vendor: %v", err)
	}
	if len(results) != 1 || results[0] != "V003 : New Suppliers Ltd" {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestCloseResetsTabAndDrafts(t *testing.T) {
	session, _ := newTestSession(t, sampleRecord())
	session.OpenTab(TabMultipleOrder)
	if session.ActiveTab != TabMultipleOrder {
		t.Fatalf("expected multiple-order tab, got %s", session.ActiveTab)
	}
	session.SelectRow(10)
	session.Drafts.SetPriceText(10, "450")

	session.Close()
	if session.ActiveTab != TabPurchaseHistory {
		t.Errorf("expected purchase-history after close, got %s", session.ActiveTab)
	}
	if len(session.Drafts) != 0 || session.SelectedQuote != nil {
		t.Error("close must drop drafts and selection")
	}
}

func TestRemoveVendorPurgesSelection(t *testing.T) {
	session, _ := newTestSession(t, sampleRecord())
	session.SelectRow(11)
	session.Drafts.SetPriceText(11, "250")

	if err := session.RemoveVendor(11); err != nil {
		t.Fatalf("remove vendor: %v", err)
	}
	if session.SelectedQuote != nil {
		t.Error("selection must be purged with the removed row")
	}
	if _, ok := session.Drafts[11]; ok {
		t.Error("draft of the removed row must be dropped")
	}
}

func TestNoTokenBlocksBeforeNetwork(t *testing.T) {
	backend := &fakeBackend{record: sampleRecord()}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	session := NewSession(NewClient(server.URL, ""))
	err := session.Load("PN-001", 101)
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if backend.requests != 0 {
		t.Fatalf("missing token must block client-side, saw %d requests", backend.requests)
	}
}

func TestFailedFetchKeepsPreviousRecord(t *testing.T) {
	session, _ := newTestSession(t, sampleRecord())

	session.Client.BaseURL = "http://127.0.0.1:0"
	if err := session.Reload(); err == nil {
		t.Fatal("expected reload to fail")
	}
	if session.Record == nil || session.Record.PclID != 1 {
		t.Fatal("failed fetch must leave the previous record in place")
	}
}

func TestServerErrorMessageSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "Vendor is already in this comparison"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")
	err := client.InsertVendorForCompare(1, "V001")
	if err == nil || err.Error() != "Vendor is already in this comparison" {
		t.Fatalf("expected server message to surface, got %v", err)
	}
}

func TestGenericMessageOnOpaqueBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")
	err := client.Approve(1)
	if err == nil || err.Error() != "server returned status 502" {
		t.Fatalf("expected generic fallback, got %v", err)
	}
}
