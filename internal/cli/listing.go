package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/imrishuroy/go-storefront/internal/render"
	"github.com/imrishuroy/go-storefront/internal/storefront"
	"github.com/spf13/cobra"
)

// listingResult is the JSON payload of a listing.
type listingResult struct {
	Products  []render.Card       `json:"products"`
	CartCount int                 `json:"cartCount"`
	Pages     []render.PageButton `json:"pages"`
}

// listingView collects what the listing controller displays. With live set,
// every render is written out as it happens.
type listingView struct {
	out  *OutputFormatter
	live bool

	mu     sync.Mutex
	result listingResult
}

func (v *listingView) RenderProducts(cards []render.Card) {
	v.mu.Lock()
	v.result.Products = cards
	res, live := v.result, v.live
	v.mu.Unlock()
	if live {
		_ = v.write(res)
	}
}

// setLive makes every later render write out immediately.
func (v *listingView) setLive() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.live = true
}

func (v *listingView) ShowCartCount(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result.CartCount = n
}

func (v *listingView) ShowPagination(buttons []render.PageButton) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result.Pages = buttons
}

func (v *listingView) MarkInCart(productID int, label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.result.Products {
		if v.result.Products[i].ID == productID {
			v.result.Products[i].ActionLabel = label
			v.result.Products[i].InCart = true
		}
	}
}

func (v *listingView) ScrollToTop() {}

func (v *listingView) snapshot() listingResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

func (v *listingView) flush() error {
	return v.write(v.snapshot())
}

func (v *listingView) write(res listingResult) error {
	return v.out.Success(res, func(w io.Writer) { writeListing(w, res) })
}

func writeListing(w io.Writer, res listingResult) {
	if len(res.Products) == 0 {
		fmt.Fprintln(w, "No products found.")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range res.Products {
		fmt.Fprintf(tw, "#%d\t%s\t₹%s\t(₹%s, %s%% off)\t%v★\t[%s]\n",
			c.ID, c.Title, c.DiscountedPrice, c.Price, c.Discount, c.Rating, c.ActionLabel)
	}
	tw.Flush()

	if len(res.Pages) > 0 {
		labels := make([]string, len(res.Pages))
		for i, p := range res.Pages {
			labels[i] = p.Label
		}
		fmt.Fprintf(w, "Pages: %s\n", strings.Join(labels, " "))
	}
	fmt.Fprintf(w, "Cart: %d\n", res.CartCount)
}

// listingError maps a listing failure to an exit code.
func listingError(out *OutputFormatter, err error) error {
	if errors.Is(err, storefront.ErrPageOutOfRange) {
		_ = out.Error("page_out_of_range", err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid page", err)
	}
	_ = out.Error("catalog_unavailable", "Something went wrong while fetching products", err.Error())
	return WrapExitError(ExitFailure, "failed to load products", err)
}

// NewProductsCommand creates the products command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products, optionally one page of the catalog",
		Long: `List products from the remote catalog.

Without --page the default listing is shown. Pages are numbered from 1 as on
the pagination controls.

Example:
  storefront products --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rootOpts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := rootOpts.formatter(cmd)
			view := &listingView{out: out}
			ctrl := storefront.New(storefront.Deps{Catalog: a.Catalog, Cart: a.Cart, Metrics: a.Metrics}, view)
			if page > 0 {
				err = ctrl.Paginate(ctx, page-1)
			} else {
				err = ctrl.Init(ctx)
			}
			if err != nil {
				return listingError(out, err)
			}
			view.ShowCartCount(a.Cart.Count(ctx))
			view.ShowPagination(ctrl.Pages())
			return view.flush()
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "page number (1-based)")

	return cmd
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog",
		Long: `Search the catalog. An empty query is sent as-is.

Example:
  storefront search phone`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rootOpts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			query := ""
			if len(args) == 1 {
				query = strings.TrimSpace(args[0])
			}
			out := rootOpts.formatter(cmd)
			view := &listingView{out: out}
			ctrl := storefront.New(storefront.Deps{Catalog: a.Catalog, Cart: a.Cart, Metrics: a.Metrics}, view)
			if err := ctrl.Search(ctx, query); err != nil {
				return listingError(out, err)
			}
			view.ShowCartCount(a.Cart.Count(ctx))
			return view.flush()
		},
	}

	return cmd
}
