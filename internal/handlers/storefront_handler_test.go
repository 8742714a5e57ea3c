package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/imrishuroy/go-storefront/internal/cart"
	"github.com/imrishuroy/go-storefront/internal/catalog"
	"github.com/imrishuroy/go-storefront/internal/checkout"
	"github.com/imrishuroy/go-storefront/internal/payment"
	"github.com/imrishuroy/go-storefront/internal/storage"
	"github.com/imrishuroy/go-storefront/internal/testutil"
)

type mockNotifier struct {
	mu     sync.Mutex
	orders []string
}

func (m *mockNotifier) PublishOrder(ctx context.Context, paymentID, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, orderID+"/"+paymentID)
	return nil
}

type testServer struct {
	router   *gin.Engine
	api      *testutil.CatalogAPI
	cart     *cart.Engine
	gateway  *payment.Hosted
	notifier *mockNotifier
}

func newTestServer(t *testing.T, policy checkout.AmountPolicy) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := testutil.NewCatalogAPI(t, 100)
	client := catalog.NewClient(api.URL)
	store := storage.New(storage.NewMemory())
	engine := cart.NewEngine(store, client)
	ts := &testServer{
		router:   gin.New(),
		api:      api,
		cart:     engine,
		gateway:  payment.NewHosted("rzp_test_key"),
		notifier: &mockNotifier{},
	}
	RegisterStorefrontRoutes(ts.router, HandlerConfig{
		Catalog:  client,
		Cart:     engine,
		Store:    store,
		Gateway:  ts.gateway,
		Notifier: ts.notifier,
		Policy:   policy,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, target string, body string, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func validForm() url.Values {
	return url.Values{
		"firstName": {"Asha"},
		"lastName":  {"Rao"},
		"city":      {"New Delhi"},
		"state":     {"Delhi"},
		"zip":       {"110001"},
		"phone":     {"9876543210"},
		"address":   {"12, MG Road"},
	}
}

func TestProducts_InitialListing(t *testing.T) {
	ts := newTestServer(t, checkout.PolicyWarn)

	w := ts.do(t, http.MethodGet, "/products", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "Product 1<") || !strings.Contains(body, "Product 30<") || strings.Contains(body, "Product 31<") {
		t.Fatalf("expected the first 30 products, got %s", body)
	}
	if n := strings.Count(body, `aria-label="Pagination Buttons"`); n != 4 {
		t.Fatalf("expected 4 pagination buttons, got %d", n)
	}
	if w.Header().Get("X-Cart-Count") != "0" {
		t.Fatalf("expected empty cart, got %q", w.Header().Get("X-Cart-Count"))
	}
}

func TestProducts_Pagination(t *testing.T) {
	ts := newTestServer(t, checkout.PolicyWarn)

	w := ts.do(t, http.MethodGet, "/products?page=3", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	reqs := ts.api.Requests()
	if reqs[len(reqs)-1] != "/products?limit=30&skip=90" {
		t.Fatalf("unexpected upstream request %v", reqs)
	}
	if strings.Count(w.Body.String(), "js-addToCartBtn") != 10 {
		t.Fatalf("last page should hold the remaining 10 products")
	}

	for _, page := range []string{"4", "-1", "abc"} {
		if w := ts.do(t, http.MethodGet, "/products?page="+page, "", ""); w.Code != http.StatusBadRequest {
			t.Fatalf("page %s: expected 400, got %d", page, w.Code)
		}
	}
}

func TestProducts_CatalogDown(t *testing.T) {
	ts := newTestServer(t, checkout.PolicyWarn)
	ts.api.SetDown(true)

	w := ts.do(t, http.MethodGet, "/products", "", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if decode(t, w)["error"] != "catalog_unavailable" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestSearch(t *testing.T) {
	ts := newTestServer(t, checkout.PolicyWarn)

	w := ts.do(t, http.MethodGet, "/products/search?q=Product+42", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.Count(w.Body.String(), "js-addToCartBtn") != 1 {
		t.Fatalf("expected one hit, got %s", w.Body.String())
	}
}

func TestAddToCart_RelabelsAndCounts(t *testing.T) {
	ts := newTestServer(t, checkout.PolicyWarn)

	w := ts.do(t, http.MethodPost, "/cart/items/2", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decode(t, w)
	if got["label"] != "Go To Cart" || got["count"] != float64(1) {
		t.Fatalf("unexpected body %v", got)
	}

	// a second add is a no-op
	ts.do(t, http.MethodPost, "/cart/items/2", "", "")
	listing := ts.do(t, http.MethodGet, "/products", "", "")
	if listing.Header().Get("X-Cart-Count") != "1" {
		t.Fatalf("expected count 1, got %q", listing.Header().Get("X-Cart-Count"))
	}
	if strings.Count(listing.Body.String(), "Go To Cart") != 1 {
		t.Fatalf("exactly one product should read Go To Cart")
	}

	if w := ts.do(t, http.MethodPost, "/cart/items/abc", "", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad id, got %d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/cart/items/999", "", ""); w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for an unknown product, got %d", w.Code)
	}
}

func TestCheckout_InvalidFormReportsEveryField(t *testing.T) {
	ts := newTestServer(t, checkout.PolicyWarn)

	form := validForm()
	form.Set("zip", "012345")
	form.Set("firstName", "Al")
	w := ts.do(t, http.MethodPost, "/checkout", form.Encode(), "application/x-www-form-urlencoded")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	fields := decode(t, w)["fields"].(map[string]any)
	if len(fields) != 7 {
		t.Fatalf("expected all 7 fields, got %v", fields)
	}
	if fields["zip"] != "Invalid Zip Code" || fields["firstName"] != "First name must be between 3 and 50 characters." || fields["city"] != "" {
		t.Fatalf("unexpected messages %v", fields)
	}
}

func TestCheckout_BlockPolicyStopsEmptyCart(t *testing.T) {
	ts := newTestServer(t, checkout.PolicyBlock)

	w := ts.do(t, http.MethodPost, "/checkout", validForm().Encode(), "application/x-www-form-urlencoded")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestCheckout_PaymentFlow(t *testing.T) {
	ts := newTestServer(t, checkout.PolicyWarn)

	ts.do(t, http.MethodPost, "/cart/items/1", "", "")
	ts.do(t, http.MethodPost, "/cart/items/3", "", "")
	w := ts.do(t, http.MethodGet, "/cart", "", "")
	if total := decode(t, w)["total"]; total != "36.00" {
		t.Fatalf("expected total 36.00, got %v", total)
	}

	w = ts.do(t, http.MethodPost, "/checkout", validForm().Encode(), "application/x-www-form-urlencoded")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var sub struct {
		Alerts  []string        `json:"alerts"`
		Payment payment.Options `json:"payment"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sub); err != nil {
		t.Fatalf("decode checkout: %v", err)
	}
	if sub.Payment.Request.Amount != 3600 || sub.Payment.Request.Currency != "INR" {
		t.Fatalf("unexpected payment request %+v", sub.Payment.Request)
	}
	if sub.Payment.Request.Prefill.Name != "Asha Rao" || len(sub.Alerts) != 0 {
		t.Fatalf("unexpected prefill/alerts %+v", sub)
	}

	callback := `{"orderId":"` + sub.Payment.OrderID + `","paymentId":"pay_123","signature":"sig"}`
	w = ts.do(t, http.MethodPost, "/payments/callback", callback, "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Location") != checkout.OrderSummaryPath {
		t.Fatalf("expected redirect to the order summary")
	}

	w = ts.do(t, http.MethodGet, "/orders/summary", "", "")
	got := decode(t, w)
	if got["paymentId"] != "pay_123" || got["orderId"] != sub.Payment.OrderID {
		t.Fatalf("unexpected summary %v", got)
	}
	if n := ts.cart.Count(context.Background()); n != 0 {
		t.Fatalf("cart should be empty after payment, got %d", n)
	}
	if len(ts.notifier.orders) != 1 {
		t.Fatalf("expected one published order, got %v", ts.notifier.orders)
	}

	// the session is consumed
	w = ts.do(t, http.MethodPost, "/payments/callback", callback, "application/json")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on replay, got %d", w.Code)
	}
}

func TestCheckout_PaymentFailureKeepsCart(t *testing.T) {
	ts := newTestServer(t, checkout.PolicyWarn)
	ts.do(t, http.MethodPost, "/cart/items/1", "", "")
	ts.do(t, http.MethodGet, "/cart", "", "")

	w := ts.do(t, http.MethodPost, "/checkout", validForm().Encode(), "application/x-www-form-urlencoded")
	var sub struct {
		Payment payment.Options `json:"payment"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sub); err != nil {
		t.Fatalf("decode checkout: %v", err)
	}

	callback := `{"orderId":"` + sub.Payment.OrderID + `","error":{"code":"BAD_REQUEST_ERROR","description":"declined"}}`
	w = ts.do(t, http.MethodPost, "/payments/callback", callback, "application/json")
	if w.Code != http.StatusOK || decode(t, w)["status"] != "failed" {
		t.Fatalf("unexpected failure response %d %s", w.Code, w.Body.String())
	}
	if ts.cart.Count(context.Background()) != 1 {
		t.Fatalf("cart must survive a failed payment")
	}
	if w := ts.do(t, http.MethodGet, "/orders/summary", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected no order, got %d", w.Code)
	}
}
