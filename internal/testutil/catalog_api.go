package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/imrishuroy/go-storefront/internal/catalog"
)

// CatalogAPI is an in-process stand-in for the remote products API. It serves
// the listing, paginated listing, search and product detail endpoints.
type CatalogAPI struct {
	URL string // base endpoint, ".../products"

	mu       sync.Mutex
	products []catalog.Product
	requests []string
	down     bool
}

// NewCatalogAPI starts a server holding n generated products with ids 1..n.
func NewCatalogAPI(t *testing.T, n int) *CatalogAPI {
	t.Helper()
	api := &CatalogAPI{}
	for i := 1; i <= n; i++ {
		api.products = append(api.products, catalog.Product{
			ID:                 i,
			Title:              "Product " + strconv.Itoa(i),
			Thumbnail:          "https://cdn.example/" + strconv.Itoa(i) + ".png",
			Price:              float64(10 * i),
			DiscountPercentage: 10,
			Rating:             4.5,
		})
	}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	api.URL = srv.URL + "/products"
	return api
}

// SetDown makes every request fail with 503.
func (a *CatalogAPI) SetDown(down bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.down = down
}

// Requests returns the request URIs served so far.
func (a *CatalogAPI) Requests() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.requests...)
}

func (a *CatalogAPI) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.requests = append(a.requests, r.URL.RequestURI())
	down := a.down
	products := a.products
	a.mu.Unlock()

	if down {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/products":
		limit, skip := 30, 0
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			limit = v
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil {
			skip = v
		}
		writeList(w, products, skip, limit)
	case r.URL.Path == "/products/search":
		q := strings.ToLower(r.URL.Query().Get("q"))
		var hits []catalog.Product
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Title), q) {
				hits = append(hits, p)
			}
		}
		writeList(w, hits, 0, 30)
	case strings.HasPrefix(r.URL.Path, "/products/"):
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/products/"))
		if err != nil || id < 1 || id > len(products) {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(products[id-1])
	default:
		http.NotFound(w, r)
	}
}

func writeList(w http.ResponseWriter, products []catalog.Product, skip, limit int) {
	total := len(products)
	start := min(skip, total)
	end := min(start+limit, total)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"products": products[start:end],
		"total":    total,
		"skip":     skip,
		"limit":    limit,
	})
}
