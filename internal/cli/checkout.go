package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/imrishuroy/go-storefront/internal/checkout"
	"github.com/imrishuroy/go-storefront/internal/payment"
	"github.com/imrishuroy/go-storefront/internal/validation"
	"github.com/spf13/cobra"
)

// CheckoutOptions holds flags for the checkout command.
type CheckoutOptions struct {
	*RootOptions
	Form    validation.CheckoutForm
	Decline bool
}

// checkoutView records what the checkout controller shows.
type checkoutView struct {
	out      *OutputFormatter
	fields   validation.Result
	alerts   []string
	location string
}

func (v *checkoutView) ShowFieldErrors(res validation.Result) { v.fields = res }
func (v *checkoutView) Navigate(path string)                  { v.location = path }

func (v *checkoutView) Alert(msg string) {
	v.alerts = append(v.alerts, msg)
	v.out.VerboseLog("alert: %s", msg)
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Validate the shipping form and pay for the cart",
		Long: `Validate the shipping form and pay for the cart through the sandbox gateway.

Every field is checked and every problem is reported. On success the order is
recorded, the cart is emptied and the order summary is printed.

Example:
  storefront checkout --first-name Asha --last-name Rao --city "New Delhi" \
    --state Delhi --zip 110001 --phone 9876543210 --address "12, MG Road"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Form.FirstName, "first-name", "", "first name")
	f.StringVar(&opts.Form.LastName, "last-name", "", "last name")
	f.StringVar(&opts.Form.City, "city", "", "city")
	f.StringVar(&opts.Form.State, "state", "", "state")
	f.StringVar(&opts.Form.Zip, "zip", "", "6 digit PIN code")
	f.StringVar(&opts.Form.Phone, "phone", "", "10 digit mobile number")
	f.StringVar(&opts.Form.Address, "address", "", "street address")
	f.BoolVar(&opts.Decline, "decline", false, "make the sandbox gateway decline the payment")

	return cmd
}

func runCheckout(opts *CheckoutOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.Cart.SavePayable(ctx); err != nil {
		return WrapExitError(ExitFailure, "failed to record amount payable", err)
	}

	out := opts.formatter(cmd)
	view := &checkoutView{out: out}
	gateway := &payment.Sandbox{Key: a.Config.PaymentKey, Decline: opts.Decline}
	ctrl := checkout.New(checkout.Deps{
		Store:    a.Store,
		Gateway:  gateway,
		Cart:     a.Cart,
		Notifier: a.Notifier,
		Metrics:  a.Metrics,
		Policy:   a.Policy,
	}, view)

	sub, err := ctrl.Submit(ctx, opts.Form)
	switch {
	case errors.Is(err, checkout.ErrNothingToPay):
		_ = out.Error("nothing_to_pay", "Nothing to pay in cart", nil)
		return WrapExitError(ExitFailure, "checkout stopped", err)
	case errors.Is(err, checkout.ErrInvalidForm):
		_ = out.Error("validation_failed", "Please correct the highlighted fields", sub.Result.Errors())
		if out.Format != "json" {
			writeFieldErrors(cmd.OutOrStdout(), sub.Result)
		}
		return WrapExitError(ExitFailure, "checkout form is invalid", err)
	case err != nil:
		return WrapExitError(ExitFailure, "checkout failed", err)
	}

	if err := sub.Session.Open(ctx); err != nil {
		return WrapExitError(ExitFailure, "failed to open payment", err)
	}
	// only a successful payment navigates to the summary
	if view.location != checkout.OrderSummaryPath {
		_ = out.Error("payment_failed", "Payment Failed! Please Try Again.", sub.Session.Options().OrderID)
		return NewExitError(ExitFailure, "payment failed")
	}

	intent, ok := ctrl.Summary(ctx)
	if !ok {
		return NewExitError(ExitFailure, "order was not recorded")
	}
	return out.Success(map[string]any{"order": intent, "alerts": view.alerts}, func(w io.Writer) {
		for _, msg := range view.alerts {
			fmt.Fprintln(w, msg)
		}
		writeOrder(w, intent)
	})
}

func writeFieldErrors(w io.Writer, res validation.Result) {
	for _, field := range validation.Fields {
		if msg := res[field]; msg != "" {
			fmt.Fprintf(w, "  %s: %s\n", field, msg)
		}
	}
}

func writeOrder(w io.Writer, intent checkout.OrderIntent) {
	fmt.Fprintf(w, "Order ID:   %s\nPayment ID: %s\n", intent.OrderID, intent.PaymentID)
}

// NewOrderCommand creates the order command, which prints the last placed order.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "order",
		Short: "Show the last placed order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rootOpts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := rootOpts.formatter(cmd)
			ctrl := checkout.New(checkout.Deps{Store: a.Store}, &checkoutView{out: out})
			intent, ok := ctrl.Summary(ctx)
			if !ok {
				_ = out.Error("no_order", "No order has been placed yet", nil)
				return NewExitError(ExitFailure, "no order")
			}
			return out.Success(intent, func(w io.Writer) { writeOrder(w, intent) })
		},
	}
}
