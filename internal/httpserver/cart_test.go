package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"minicart/internal/controller"
	"minicart/internal/domain"
	"minicart/internal/store"
	"minicart/internal/view"
)

type stubSource struct {
	snapshot *domain.Snapshot
	err      error
}

func (s *stubSource) Obtain(_ context.Context) (*domain.Snapshot, error) {
	return s.snapshot, s.err
}

func newTestRouter(t *testing.T, src *stubSource) (*gin.Engine, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemory()
	ctrl := controller.New(src, st, nil, view.NewFormatter(), "/checkout", nil)
	if err := ctrl.Load(context.Background()); err != nil && src.err == nil {
		t.Fatalf("load controller: %v", err)
	}

	router, err := buildRouter(testLogger(t), Deps{Ctrl: ctrl, Store: st})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router, st
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCartPageRendersRows(t *testing.T) {
	router, _ := newTestRouter(t, &stubSource{snapshot: &domain.Snapshot{Items: []domain.LineItem{
		{ID: "1", Title: "Demo Mug", UnitPriceCents: 1299, Quantity: 2},
	}}})

	rec := doJSON(t, router, http.MethodGet, "/cart", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Demo Mug") {
		t.Fatalf("expected row title in page, got %s", body)
	}
	if !strings.Contains(body, `id="cart-count"`) || !strings.Contains(body, `id="confirm-modal"`) {
		t.Fatalf("expected fixed surface elements in page")
	}
}

func TestCartPageShowsErrorStateOnFetchFailure(t *testing.T) {
	router, st := newTestRouter(t, &stubSource{err: errors.New("feed down")})

	rec := doJSON(t, router, http.MethodGet, "/cart", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "could not load your cart") {
		t.Fatalf("expected inline error message, got %s", rec.Body.String())
	}

	if persisted, _ := st.Load(context.Background()); persisted != nil {
		t.Fatalf("expected no persistence write, got %+v", persisted)
	}
}

func TestSetQuantityEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubSource{snapshot: &domain.Snapshot{Items: []domain.LineItem{
		{ID: "1", Title: "Mug", UnitPriceCents: 1000, Quantity: 2},
	}}})

	rec := doJSON(t, router, http.MethodPost, "/cart/items/1/quantity", `{"quantity":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var patch controller.Patch
	if err := json.Unmarshal(rec.Body.Bytes(), &patch); err != nil {
		t.Fatalf("decode patch: %v", err)
	}
	if !patch.Changed || patch.Quantity != 3 || patch.ItemCount != 3 {
		t.Fatalf("unexpected patch %+v", patch)
	}
	if patch.Subtotal != "Rp3.000" {
		t.Fatalf("unexpected subtotal %q", patch.Subtotal)
	}
}

func TestSetQuantityZeroIsAccepted(t *testing.T) {
	router, _ := newTestRouter(t, &stubSource{snapshot: &domain.Snapshot{Items: []domain.LineItem{
		{ID: "1", UnitPriceCents: 1000, Quantity: 1},
	}}})

	// A decrement below the floor binds fine and is refused by the model.
	rec := doJSON(t, router, http.MethodPost, "/cart/items/1/quantity", `{"quantity":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var patch controller.Patch
	if err := json.Unmarshal(rec.Body.Bytes(), &patch); err != nil {
		t.Fatalf("decode patch: %v", err)
	}
	if patch.Changed || patch.Quantity != 1 {
		t.Fatalf("unexpected patch %+v", patch)
	}
}

func TestSetQuantityMissingBody(t *testing.T) {
	router, _ := newTestRouter(t, &stubSource{snapshot: &domain.Snapshot{}})

	rec := doJSON(t, router, http.MethodPost, "/cart/items/1/quantity", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRemovalFlowOverHTTP(t *testing.T) {
	router, st := newTestRouter(t, &stubSource{snapshot: &domain.Snapshot{Items: []domain.LineItem{
		{ID: "5", Title: "Mug", UnitPriceCents: 1000, Quantity: 1},
		{ID: "6", Title: "Shirt", UnitPriceCents: 500, Quantity: 2},
	}}})

	rec := doJSON(t, router, http.MethodPost, "/cart/items/5/remove", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var begin struct {
		OK      bool          `json:"ok"`
		Pending *view.Pending `json:"pending"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &begin); err != nil {
		t.Fatalf("decode begin: %v", err)
	}
	if !begin.OK || begin.Pending == nil || begin.Pending.ID != "5" {
		t.Fatalf("unexpected begin response %+v", begin)
	}

	// Cancel leaves the item in place.
	rec = doJSON(t, router, http.MethodPost, "/cart/removal/cancel", `{"token":"`+begin.Pending.Token+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if persisted, _ := st.Load(context.Background()); persisted != nil {
		t.Fatalf("cancel must not write, got %+v", persisted)
	}

	// Begin again and confirm.
	rec = doJSON(t, router, http.MethodPost, "/cart/items/5/remove", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &begin); err != nil {
		t.Fatalf("decode begin: %v", err)
	}
	rec = doJSON(t, router, http.MethodPost, "/cart/removal/confirm", `{"token":"`+begin.Pending.Token+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var confirm struct {
		OK    bool             `json:"ok"`
		Patch controller.Patch `json:"patch"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &confirm); err != nil {
		t.Fatalf("decode confirm: %v", err)
	}
	if !confirm.OK || confirm.Patch.RemovedID != "5" || confirm.Patch.ItemCount != 2 {
		t.Fatalf("unexpected confirm response %+v", confirm)
	}

	persisted, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("store load: %v", err)
	}
	if len(persisted.Items) != 1 || persisted.Items[0].ID != "6" {
		t.Fatalf("unexpected persisted items %+v", persisted.Items)
	}
}

func TestRemoveUnknownItemIsIgnored(t *testing.T) {
	router, _ := newTestRouter(t, &stubSource{snapshot: &domain.Snapshot{Items: []domain.LineItem{{ID: "1", Quantity: 1}}}})

	rec := doJSON(t, router, http.MethodPost, "/cart/items/missing/remove", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok":false`) {
		t.Fatalf("expected ok:false, got %s", rec.Body.String())
	}
}

func TestCheckoutEmptyCartSignalsUser(t *testing.T) {
	router, _ := newTestRouter(t, &stubSource{snapshot: &domain.Snapshot{}})

	rec := doJSON(t, router, http.MethodPost, "/cart/checkout", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Your cart is empty.") {
		t.Fatalf("expected empty-cart signal, got %s", rec.Body.String())
	}
}

func TestCheckoutReturnsLocation(t *testing.T) {
	router, _ := newTestRouter(t, &stubSource{snapshot: &domain.Snapshot{Items: []domain.LineItem{
		{ID: "1", UnitPriceCents: 1000, Quantity: 1},
	}}})

	rec := doJSON(t, router, http.MethodPost, "/cart/checkout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"checkoutUrl":"/checkout"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
