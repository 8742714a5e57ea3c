// Package storefront drives the product listing: initial load, pagination,
// debounced search and add-to-cart, keeping the rendered view consistent with
// the cart.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/imrishuroy/go-storefront/internal/aws"
	"github.com/imrishuroy/go-storefront/internal/catalog"
	"github.com/imrishuroy/go-storefront/internal/render"
	"github.com/imrishuroy/go-storefront/internal/schedule"
)

// Listing defaults. The remote catalog holds 100 products; the last page is
// requested with the full page size and the API returns whatever remains.
const (
	DefaultPageSize    = 30
	DefaultCatalogSize = 100
	DefaultDebounce    = 350 * time.Millisecond
)

// ErrPageOutOfRange is returned for a page index outside the pagination controls.
var ErrPageOutOfRange = errors.New("page out of range")

// State of the listing.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRendered
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Catalog is the remote product source.
type Catalog interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Page(ctx context.Context, limit, skip int) ([]catalog.Product, error)
	Search(ctx context.Context, query string) ([]catalog.Product, error)
}

// Cart is the subset of the cart engine the listing needs.
type Cart interface {
	AddToCart(ctx context.Context, productID int) (bool, error)
	Count(ctx context.Context) int
	ApplySelection(ctx context.Context, products []catalog.Product) []catalog.Product
}

// View receives everything the listing displays.
type View interface {
	RenderProducts(cards []render.Card)
	ShowCartCount(n int)
	ShowPagination(buttons []render.PageButton)
	// MarkInCart relabels a single product's button without re-rendering the list.
	MarkInCart(productID int, label string)
	ScrollToTop()
}

// Deps groups the collaborators of a listing controller.
type Deps struct {
	Catalog     Catalog
	Cart        Cart
	Scheduler   schedule.Scheduler // defaults to real timers
	Metrics     aws.Recorder       // optional
	PageSize    int
	CatalogSize int
	Debounce    time.Duration
}

// Controller is one listing instance bound to one view.
//
// Every load takes a generation number; a response arriving after a newer load
// was issued is dropped, so the view always shows the most recently requested
// listing regardless of response order.
type Controller struct {
	deps   Deps
	view   View
	search *schedule.Debouncer

	mu         sync.Mutex
	state      State
	generation uint64
	products   []catalog.Product
}

func New(deps Deps, view View) *Controller {
	if deps.PageSize <= 0 {
		deps.PageSize = DefaultPageSize
	}
	if deps.CatalogSize <= 0 {
		deps.CatalogSize = DefaultCatalogSize
	}
	if deps.Debounce <= 0 {
		deps.Debounce = DefaultDebounce
	}
	if deps.Scheduler == nil {
		deps.Scheduler = schedule.Real{}
	}
	if deps.Metrics == nil {
		deps.Metrics = aws.NopRecorder{}
	}
	return &Controller{
		deps:   deps,
		view:   view,
		search: schedule.NewDebouncer(deps.Scheduler, deps.Debounce),
	}
}

// Init loads the default listing, then shows the cart count and pagination.
// On fetch failure the view is left empty.
func (c *Controller) Init(ctx context.Context) error {
	if err := c.load(ctx, false, c.deps.Catalog.List); err != nil {
		log.Printf("[storefront] error initializing: %v", err)
		return err
	}
	c.view.ShowCartCount(c.deps.Cart.Count(ctx))
	c.view.ShowPagination(c.Pages())
	return nil
}

// Pages returns the pagination controls.
func (c *Controller) Pages() []render.PageButton {
	return render.Pagination(c.deps.CatalogSize, c.deps.PageSize)
}

// Paginate loads the zero-based page and scrolls to the top.
func (c *Controller) Paginate(ctx context.Context, page int) error {
	if page < 0 || page >= len(c.Pages()) {
		return fmt.Errorf("%w: %d", ErrPageOutOfRange, page)
	}
	limit := c.deps.PageSize
	skip := page * limit
	return c.load(ctx, true, func(ctx context.Context) ([]catalog.Product, error) {
		return c.deps.Catalog.Page(ctx, limit, skip)
	})
}

// SearchInput feeds one keystroke's value into the debounced search. Only the
// last value of a burst is searched, once the quiet period has passed.
func (c *Controller) SearchInput(ctx context.Context, value string) {
	query := strings.TrimSpace(value)
	c.search.Call(func() {
		if err := c.Search(ctx, query); err != nil {
			log.Printf("[storefront] something went wrong while searching %q: %v", query, err)
		}
	})
}

// Search runs query immediately. An empty query is forwarded as-is.
func (c *Controller) Search(ctx context.Context, query string) error {
	return c.load(ctx, false, func(ctx context.Context) ([]catalog.Product, error) {
		return c.deps.Catalog.Search(ctx, query)
	})
}

// AddToCart adds the product, refreshes the count and relabels its button.
func (c *Controller) AddToCart(ctx context.Context, productID int) error {
	added, err := c.deps.Cart.AddToCart(ctx, productID)
	if err != nil {
		log.Printf("[storefront] error adding product %d to cart: %v", productID, err)
		return err
	}
	if added {
		c.deps.Metrics.Count(ctx, aws.MetricCartAdd)
	}

	c.mu.Lock()
	for i := range c.products {
		if c.products[i].ID == productID {
			c.products[i].Selected = true
		}
	}
	c.mu.Unlock()

	c.view.ShowCartCount(c.deps.Cart.Count(ctx))
	c.view.MarkInCart(productID, render.LabelGoToCart)
	return nil
}

// State reports the listing state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Products returns the products currently displayed.
func (c *Controller) Products() []catalog.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]catalog.Product, len(c.products))
	copy(out, c.products)
	return out
}

// FlushSearch runs a pending debounced search immediately, for when input has
// ended and no further keystroke can supersede it.
func (c *Controller) FlushSearch() bool {
	return c.search.Flush()
}

// Close drops any pending debounced search.
func (c *Controller) Close() {
	c.search.Cancel()
}

func (c *Controller) load(ctx context.Context, scroll bool, fetch func(context.Context) ([]catalog.Product, error)) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state = StateLoading
	c.mu.Unlock()

	products, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		log.Printf("[storefront] dropping superseded listing generation=%d latest=%d", gen, c.generation)
		return nil
	}
	if err != nil {
		c.deps.Metrics.Count(ctx, aws.MetricCatalogFailure)
		if c.products == nil {
			c.state = StateIdle
		} else {
			c.state = StateRendered
		}
		return err
	}

	selected := c.deps.Cart.ApplySelection(ctx, products)
	if scroll {
		c.view.ScrollToTop()
	}
	c.view.RenderProducts(render.Products(selected))
	c.products = selected
	c.state = StateRendered
	return nil
}
