package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/imrishuroy/go-storefront/internal/cart"
	"github.com/imrishuroy/go-storefront/internal/catalog"
	"github.com/imrishuroy/go-storefront/internal/render"
	"github.com/spf13/cobra"
)

type cartResult struct {
	Items []cart.Item `json:"items"`
	Count int         `json:"count"`
	Total string      `json:"total"`
}

// NewCartCommand creates the cart command and its subcommands.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and change the cart",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid product id %q", args[0]))
			}
			ctx := cmd.Context()
			a, err := rootOpts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := rootOpts.formatter(cmd)
			added, err := a.Cart.AddToCart(ctx, id)
			if err != nil {
				if errors.Is(err, catalog.ErrFetchFailed) {
					_ = out.Error("product_unavailable", fmt.Sprintf("could not add product %d", id), err.Error())
				}
				return WrapExitError(ExitFailure, "failed to add to cart", err)
			}
			count := a.Cart.Count(ctx)
			return out.Success(map[string]any{"productId": id, "added": added, "count": count}, func(w io.Writer) {
				if added {
					fmt.Fprintf(w, "Added #%d. Cart: %d\n", id, count)
				} else {
					fmt.Fprintf(w, "#%d is already in the cart. Cart: %d\n", id, count)
				}
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the cart and record the amount payable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rootOpts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			total, err := a.Cart.SavePayable(ctx)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to record amount payable", err)
			}
			items := a.Cart.Items(ctx)
			res := cartResult{Items: items, Count: len(items), Total: render.FormatPrice(total)}
			return rootOpts.formatter(cmd).Success(res, func(w io.Writer) {
				if len(items) == 0 {
					fmt.Fprintln(w, "Your cart is empty.")
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				for _, it := range items {
					fmt.Fprintf(tw, "#%d\t%s\tx%d\t₹%s\n", it.ID, it.Title, it.Quantity, render.FormatPrice(it.DiscountedPrice()))
				}
				tw.Flush()
				fmt.Fprintf(w, "Total: ₹%s\n", res.Total)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "count",
		Short: "Print the number of products in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rootOpts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			n := a.Cart.Count(ctx)
			return rootOpts.formatter(cmd).Success(map[string]int{"count": n}, func(w io.Writer) {
				fmt.Fprintln(w, n)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rootOpts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Cart.Clear(ctx); err != nil {
				return WrapExitError(ExitFailure, "failed to clear cart", err)
			}
			return rootOpts.formatter(cmd).Success(map[string]int{"count": 0}, func(w io.Writer) {
				fmt.Fprintln(w, "Cart cleared.")
			})
		},
	})

	return cmd
}
