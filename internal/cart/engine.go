package cart

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/imrishuroy/go-storefront/internal/catalog"
	"github.com/imrishuroy/go-storefront/internal/storage"
)

// Store keys shared with checkout.
const (
	CartKey  = "cartProducts"
	PriceKey = "priceToPay"
)

// Item is a product snapshot held in the cart.
type Item struct {
	catalog.Product
	Quantity int  `json:"quantity"`
	Selected bool `json:"selected"`
}

// PriceRecord is the amount payable handed to checkout. It is stored as a
// single-element list.
type PriceRecord struct {
	Amount float64 `json:"amount"`
}

// ProductSource resolves full product detail by id.
type ProductSource interface {
	ProductByID(ctx context.Context, id int) (*catalog.Product, error)
}

// Engine owns the persisted cart. The in-process mutex serialises
// read-modify-write cycles; there is no coordination with other processes
// sharing the same store, a single writer is assumed.
type Engine struct {
	mu       sync.Mutex
	store    *storage.Store
	products ProductSource
}

func NewEngine(store *storage.Store, products ProductSource) *Engine {
	return &Engine{store: store, products: products}
}

// AddToCart fetches the product and appends it with quantity 1 unless an entry
// with the same id is already present. It reports whether the cart changed.
func (e *Engine) AddToCart(ctx context.Context, productID int) (bool, error) {
	product, err := e.products.ProductByID(ctx, productID)
	if err != nil {
		return false, fmt.Errorf("add product %d to cart: %w", productID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	items := e.load(ctx)
	for _, it := range items {
		if it.ID == product.ID {
			return false, nil
		}
	}

	items = append(items, Item{Product: *product, Quantity: 1, Selected: true})
	if err := e.store.Set(ctx, CartKey, items); err != nil {
		return false, fmt.Errorf("persist cart: %w", err)
	}
	log.Printf("[cart] added product=%d count=%d", product.ID, len(items))
	return true, nil
}

// Items returns the cart in insertion order.
func (e *Engine) Items(ctx context.Context) []Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load(ctx)
}

// Count is the number of distinct products in the cart.
func (e *Engine) Count(ctx context.Context) int {
	return len(e.Items(ctx))
}

// ApplySelection returns a copy of products with Selected set exactly on the
// ones present in the cart.
func (e *Engine) ApplySelection(ctx context.Context, products []catalog.Product) []catalog.Product {
	inCart := map[int]struct{}{}
	for _, it := range e.Items(ctx) {
		inCart[it.ID] = struct{}{}
	}

	out := make([]catalog.Product, len(products))
	for i, p := range products {
		_, p.Selected = inCart[p.ID]
		out[i] = p
	}
	return out
}

// Total is the discounted cart value rounded to cents.
func (e *Engine) Total(ctx context.Context) float64 {
	var sum float64
	for _, it := range e.Items(ctx) {
		sum += it.DiscountedPrice() * float64(it.Quantity)
	}
	return math.Round(sum*100) / 100
}

// SavePayable records the current total as the amount checkout will charge.
func (e *Engine) SavePayable(ctx context.Context) (float64, error) {
	total := e.Total(ctx)
	if err := e.store.Set(ctx, PriceKey, []PriceRecord{{Amount: total}}); err != nil {
		return 0, fmt.Errorf("persist amount payable: %w", err)
	}
	return total, nil
}

// Clear empties the cart and resets the amount payable.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Set(ctx, CartKey, []Item{}); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	if err := e.store.Set(ctx, PriceKey, []PriceRecord{{Amount: 0}}); err != nil {
		return fmt.Errorf("reset amount payable: %w", err)
	}
	return nil
}

func (e *Engine) load(ctx context.Context) []Item {
	items := []Item{}
	e.store.Get(ctx, CartKey, &items)
	return items
}
