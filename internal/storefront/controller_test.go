package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/imrishuroy/go-storefront/internal/cart"
	"github.com/imrishuroy/go-storefront/internal/catalog"
	"github.com/imrishuroy/go-storefront/internal/render"
	"github.com/imrishuroy/go-storefront/internal/storage"
	"github.com/imrishuroy/go-storefront/internal/testutil"
)

type fakeCatalog struct {
	mu       sync.Mutex
	calls    []string
	products []catalog.Product
	err      error
	// gates blocks a Page call for the given skip until the channel is closed.
	gates   map[int]chan struct{}
	started chan int
}

func (f *fakeCatalog) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeCatalog) List(ctx context.Context) ([]catalog.Product, error) {
	if err := f.record("list"); err != nil {
		return nil, err
	}
	return f.products, nil
}

func (f *fakeCatalog) Page(ctx context.Context, limit, skip int) ([]catalog.Product, error) {
	if err := f.record(fmt.Sprintf("page limit=%d skip=%d", limit, skip)); err != nil {
		return nil, err
	}
	if f.started != nil {
		f.started <- skip
	}
	if gate, ok := f.gates[skip]; ok {
		<-gate
	}
	return []catalog.Product{{ID: 1000 + skip, Title: fmt.Sprintf("skip %d", skip)}}, nil
}

func (f *fakeCatalog) Search(ctx context.Context, query string) ([]catalog.Product, error) {
	if err := f.record("search q=" + query); err != nil {
		return nil, err
	}
	return f.products[:1], nil
}

func (f *fakeCatalog) ProductByID(ctx context.Context, id int) (*catalog.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: unexpected status 404", catalog.ErrFetchFailed)
}

func (f *fakeCatalog) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type recordingView struct {
	mu       sync.Mutex
	events   []string
	rendered [][]render.Card
	count    int
	pages    []render.PageButton
	labels   map[int]string
}

func newRecordingView() *recordingView {
	return &recordingView{labels: map[int]string{}}
}

func (v *recordingView) RenderProducts(cards []render.Card) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, "render")
	v.rendered = append(v.rendered, cards)
}

func (v *recordingView) ShowCartCount(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, "count")
	v.count = n
}

func (v *recordingView) ShowPagination(buttons []render.PageButton) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, "pagination")
	v.pages = buttons
}

func (v *recordingView) MarkInCart(productID int, label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, "mark")
	v.labels[productID] = label
}

func (v *recordingView) ScrollToTop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, "scroll")
}

func (v *recordingView) last() []render.Card {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.rendered) == 0 {
		return nil
	}
	return v.rendered[len(v.rendered)-1]
}

type fixture struct {
	catalog *fakeCatalog
	cart    *cart.Engine
	view    *recordingView
	sched   *testutil.FakeScheduler
}

func newController(t *testing.T) (*Controller, *fixture) {
	t.Helper()
	f := &fixture{
		catalog: &fakeCatalog{products: []catalog.Product{
			{ID: 1, Title: "Mascara", Price: 100, DiscountPercentage: 20},
			{ID: 2, Title: "Palette", Price: 50},
			{ID: 3, Title: "Lipstick", Price: 10},
		}},
		view:  newRecordingView(),
		sched: testutil.NewFakeScheduler(),
	}
	f.cart = cart.NewEngine(storage.New(storage.NewMemory()), f.catalog)
	c := New(Deps{Catalog: f.catalog, Cart: f.cart, Scheduler: f.sched}, f.view)
	return c, f
}

func TestInit_RendersWithSelectionCountAndPagination(t *testing.T) {
	c, f := newController(t)
	ctx := context.Background()
	if _, err := f.cart.AddToCart(ctx, 2); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	if c.State() != StateIdle {
		t.Fatalf("expected idle before init, got %s", c.State())
	}
	if err := c.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	cards := f.view.last()
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}
	if cards[0].DiscountedPrice != "80.00" || cards[0].ActionLabel != "Add To Cart" {
		t.Fatalf("unexpected first card: %+v", cards[0])
	}
	if cards[1].ActionLabel != "Go To Cart" {
		t.Fatalf("product in cart must read Go To Cart, got %+v", cards[1])
	}
	if f.view.count != 1 {
		t.Fatalf("expected cart count 1, got %d", f.view.count)
	}
	if len(f.view.pages) != 4 {
		t.Fatalf("expected 4 pagination buttons, got %d", len(f.view.pages))
	}
	if c.State() != StateRendered {
		t.Fatalf("expected rendered, got %s", c.State())
	}
}

func TestInit_FetchFailureLeavesViewEmpty(t *testing.T) {
	c, f := newController(t)
	f.catalog.err = fmt.Errorf("%w: timeout", catalog.ErrFetchFailed)

	err := c.Init(context.Background())
	if !errors.Is(err, catalog.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if len(f.view.events) != 0 {
		t.Fatalf("view must stay untouched, got %v", f.view.events)
	}
	if c.State() != StateIdle {
		t.Fatalf("expected idle after failed init, got %s", c.State())
	}
}

func TestPaginate(t *testing.T) {
	c, f := newController(t)
	ctx := context.Background()

	if err := c.Paginate(ctx, 2); err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if err := c.Paginate(ctx, 3); err != nil {
		t.Fatalf("Paginate last page: %v", err)
	}
	calls := f.catalog.Calls()
	if calls[0] != "page limit=30 skip=60" || calls[1] != "page limit=30 skip=90" {
		t.Fatalf("unexpected calls: %v", calls)
	}
	if f.view.events[0] != "scroll" || f.view.events[1] != "render" {
		t.Fatalf("expected scroll then render, got %v", f.view.events)
	}
	if got := f.view.last()[0].ID; got != 1090 {
		t.Fatalf("expected last page rendered, got product %d", got)
	}

	for _, page := range []int{-1, 4} {
		if err := c.Paginate(ctx, page); !errors.Is(err, ErrPageOutOfRange) {
			t.Fatalf("page %d: expected ErrPageOutOfRange, got %v", page, err)
		}
	}
}

func TestSearchInput_DebouncesToLastKeystroke(t *testing.T) {
	c, f := newController(t)
	ctx := context.Background()

	c.SearchInput(ctx, "l")
	f.sched.Advance(100 * time.Millisecond)
	c.SearchInput(ctx, "la")
	f.sched.Advance(100 * time.Millisecond)
	c.SearchInput(ctx, " lap ")

	f.sched.Advance(349 * time.Millisecond)
	if n := len(f.catalog.Calls()); n != 0 {
		t.Fatalf("search fired before the quiet period: %v", f.catalog.Calls())
	}
	f.sched.Advance(time.Millisecond)

	calls := f.catalog.Calls()
	if len(calls) != 1 || calls[0] != "search q=lap" {
		t.Fatalf("expected exactly one search for the last value, got %v", calls)
	}
	if len(f.view.rendered) != 1 {
		t.Fatalf("expected one render, got %d", len(f.view.rendered))
	}
}

func TestSearch_EmptyQueryForwarded(t *testing.T) {
	c, f := newController(t)

	c.SearchInput(context.Background(), "   ")
	f.sched.Advance(DefaultDebounce)

	calls := f.catalog.Calls()
	if len(calls) != 1 || calls[0] != "search q=" {
		t.Fatalf("expected empty query forwarded, got %v", calls)
	}
}

func TestAddToCart_RelabelsOnlyThatButton(t *testing.T) {
	c, f := newController(t)
	ctx := context.Background()
	if err := c.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	renders := len(f.view.rendered)

	if err := c.AddToCart(ctx, 3); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if len(f.view.rendered) != renders {
		t.Fatalf("add to cart must not re-render the list")
	}
	if f.view.labels[3] != "Go To Cart" || len(f.view.labels) != 1 {
		t.Fatalf("unexpected relabels: %v", f.view.labels)
	}
	if f.view.count != 1 {
		t.Fatalf("expected count 1, got %d", f.view.count)
	}
	for _, p := range c.Products() {
		if p.Selected != (p.ID == 3) {
			t.Fatalf("product %d selected=%v", p.ID, p.Selected)
		}
	}

	// adding again keeps the count at one
	if err := c.AddToCart(ctx, 3); err != nil {
		t.Fatalf("second AddToCart: %v", err)
	}
	if f.view.count != 1 {
		t.Fatalf("expected count to stay 1, got %d", f.view.count)
	}
}

func TestAddToCart_FailureLeavesButton(t *testing.T) {
	c, f := newController(t)

	if err := c.AddToCart(context.Background(), 42); !errors.Is(err, catalog.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if len(f.view.labels) != 0 {
		t.Fatalf("button must not be relabelled on failure")
	}
}

func TestPaginate_SupersededResponseIsDropped(t *testing.T) {
	c, f := newController(t)
	ctx := context.Background()
	gate := make(chan struct{})
	f.catalog.gates = map[int]chan struct{}{0: gate}
	f.catalog.started = make(chan int, 2)

	done := make(chan error, 1)
	go func() { done <- c.Paginate(ctx, 0) }()
	<-f.catalog.started // page 0 in flight

	if err := c.Paginate(ctx, 1); err != nil {
		t.Fatalf("Paginate(1): %v", err)
	}
	<-f.catalog.started
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("Paginate(0): %v", err)
	}

	if got := f.view.last()[0].ID; got != 1030 {
		t.Fatalf("expected page 1 to stay rendered, got product %d", got)
	}
	if len(f.view.rendered) != 1 {
		t.Fatalf("stale response must not render, got %d renders", len(f.view.rendered))
	}
}
