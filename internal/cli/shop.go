package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/imrishuroy/go-storefront/internal/catalog"
	"github.com/imrishuroy/go-storefront/internal/render"
	"github.com/imrishuroy/go-storefront/internal/storefront"
	"github.com/spf13/cobra"
)

const shopHelp = `Type to search; every line is the current search box value.
  :page N   show page N
  :add ID   add product ID to the cart
  :count    show the cart count
  :quit     leave`

// NewShopCommand creates the interactive shop command.
func NewShopCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Interactive listing with debounced search",
		Long: `Start an interactive shop session on the default listing.

` + shopHelp,
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
			ctrl := storefront.New(storefront.Deps{
				Catalog:   a.Catalog,
				Cart:      a.Cart,
				Scheduler: rootOpts.scheduler,
				Metrics:   a.Metrics,
				Debounce:  a.Config.SearchDebounce,
			}, view)
			defer ctrl.Close()

			if err := ctrl.Init(ctx); err != nil {
				return listingError(out, err)
			}
			// first screen carries the count and pagination Init shows after rendering
			if err := view.flush(); err != nil {
				return err
			}
			view.setLive()
			out.VerboseLog("%s", shopHelp)

			s := &shopSession{ctrl: ctrl, view: view, out: out, cart: a.Cart}
			return s.run(cmd, cmd.InOrStdin())
		},
	}

	return cmd
}

type shopSession struct {
	ctrl *storefront.Controller
	view *listingView
	out  *OutputFormatter
	cart storefront.Cart
}

var errQuit = errors.New("quit")

func (s *shopSession) run(cmd *cobra.Command, in io.Reader) error {
	ctx := cmd.Context()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ":") {
			s.ctrl.SearchInput(ctx, line)
			continue
		}
		if err := s.command(cmd, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitFailure, "failed to read input", err)
	}
	// input ended; nothing can supersede a pending search any more
	s.ctrl.FlushSearch()
	return nil
}

func (s *shopSession) command(cmd *cobra.Command, line string) error {
	ctx := cmd.Context()
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return errQuit
	case ":count":
		n := s.cart.Count(ctx)
		return s.out.Success(map[string]int{"cartCount": n}, func(w io.Writer) {
			fmt.Fprintf(w, "Cart: %d\n", n)
		})
	case ":page":
		page, err := argInt(fields)
		if err != nil {
			return s.out.Error("invalid_command", err.Error(), nil)
		}
		if err := s.ctrl.Paginate(ctx, page-1); err != nil {
			if errors.Is(err, storefront.ErrPageOutOfRange) {
				return s.out.Error("page_out_of_range", err.Error(), nil)
			}
			return s.out.Error("catalog_unavailable", "Something went wrong while fetching products", err.Error())
		}
		return nil
	case ":add":
		id, err := argInt(fields)
		if err != nil {
			return s.out.Error("invalid_command", err.Error(), nil)
		}
		if err := s.ctrl.AddToCart(ctx, id); err != nil {
			if errors.Is(err, catalog.ErrFetchFailed) {
				return s.out.Error("product_unavailable", fmt.Sprintf("could not add product %d", id), err.Error())
			}
			return WrapExitError(ExitFailure, "failed to add to cart", err)
		}
		res := s.view.snapshot()
		return s.out.Success(map[string]int{"productId": id, "cartCount": res.CartCount}, func(w io.Writer) {
			fmt.Fprintf(w, "Added #%d [%s]. Cart: %d\n", id, render.LabelGoToCart, res.CartCount)
		})
	default:
		return s.out.Error("invalid_command", fmt.Sprintf("unknown command %s", fields[0]), shopHelp)
	}
}

func argInt(fields []string) (int, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("%s takes exactly one number", fields[0])
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", fields[0], fields[1])
	}
	return n, nil
}
