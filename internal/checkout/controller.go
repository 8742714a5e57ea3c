package checkout

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/imrishuroy/go-storefront/internal/aws"
	"github.com/imrishuroy/go-storefront/internal/cart"
	"github.com/imrishuroy/go-storefront/internal/payment"
	"github.com/imrishuroy/go-storefront/internal/storage"
	"github.com/imrishuroy/go-storefront/internal/validation"
)

// Deps groups the collaborators of a checkout controller.
type Deps struct {
	Store    *storage.Store
	Checker  *validation.Checker
	Gateway  payment.Gateway
	Cart     CartClearer  // optional
	Notifier Notifier     // optional
	Metrics  aws.Recorder // optional
	Policy   AmountPolicy
	Merchant Merchant
}

// Controller runs the checkout form: amount gate, validation, hand-off to the
// payment gateway and the gateway's callbacks.
type Controller struct {
	deps Deps
	view View
}

func New(deps Deps, view View) *Controller {
	if deps.Checker == nil {
		deps.Checker = validation.NewChecker()
	}
	if deps.Metrics == nil {
		deps.Metrics = aws.NopRecorder{}
	}
	if deps.Policy == "" {
		deps.Policy = PolicyWarn
	}
	if deps.Merchant.Currency == "" {
		deps.Merchant = DefaultMerchant()
	}
	return &Controller{deps: deps, view: view}
}

// Submit handles one form submission. Field messages are always published to
// the view. A valid form yields a prepared, not yet opened, payment session.
func (c *Controller) Submit(ctx context.Context, form validation.CheckoutForm) (*Submission, error) {
	amount := c.Payable(ctx)
	if amount == 0 {
		c.view.Alert("Nothing to pay in cart")
		if c.deps.Policy == PolicyBlock {
			return nil, ErrNothingToPay
		}
	}

	res := c.deps.Checker.Check(form)
	c.view.ShowFieldErrors(res)
	if !res.Valid() {
		c.deps.Metrics.Count(ctx, aws.MetricCheckoutReject)
		return &Submission{Result: res, Amount: amount}, ErrInvalidForm
	}

	form = form.Trimmed()
	if err := c.deps.Store.Set(ctx, UserInfoKey, form); err != nil {
		return nil, fmt.Errorf("persist user info: %w", err)
	}

	m := c.deps.Merchant
	req := payment.Request{
		Amount:      toMinorUnits(amount),
		Currency:    m.Currency,
		Name:        m.Name,
		Description: m.Description,
		Image:       m.Image,
		Prefill:     payment.Prefill{Name: form.FullName(), Contact: form.Phone},
		Notes:       m.Notes,
		ThemeColor:  m.ThemeColor,
	}
	session, err := c.deps.Gateway.Prepare(ctx, req, payment.Hooks{
		OnSuccess: func(ctx context.Context, resp payment.Response) {
			if err := c.PaymentSucceeded(ctx, resp); err != nil {
				log.Printf("[checkout] recording order %s: %v", resp.OrderID, err)
			}
		},
		OnFailure: c.PaymentFailed,
	})
	if err != nil {
		return nil, fmt.Errorf("prepare payment: %w", err)
	}
	return &Submission{Result: res, Amount: amount, Session: session}, nil
}

// Payable reads the amount payable recorded by the cart; a missing record is zero.
func (c *Controller) Payable(ctx context.Context) float64 {
	var records []cart.PriceRecord
	if !c.deps.Store.Get(ctx, cart.PriceKey, &records) || len(records) == 0 {
		return 0
	}
	return records[0].Amount
}

// PaymentSucceeded records the order, empties the cart and moves to the summary.
func (c *Controller) PaymentSucceeded(ctx context.Context, resp payment.Response) error {
	if resp.PaymentID == "" {
		return fmt.Errorf("payment callback without payment id for order %s", resp.OrderID)
	}

	intent := OrderIntent{PaymentID: resp.PaymentID, OrderID: resp.OrderID}
	if err := c.deps.Store.Set(ctx, OrderKey, []OrderIntent{intent}); err != nil {
		return fmt.Errorf("persist order: %w", err)
	}
	c.deps.Metrics.Count(ctx, aws.MetricPaymentSuccess)
	log.Printf("[checkout] order placed order=%s payment=%s", intent.OrderID, intent.PaymentID)

	if c.deps.Cart != nil {
		if err := c.deps.Cart.Clear(ctx); err != nil {
			log.Printf("[checkout] clearing cart after order %s: %v", intent.OrderID, err)
		}
	}
	if c.deps.Notifier != nil {
		if err := c.deps.Notifier.PublishOrder(ctx, intent.PaymentID, intent.OrderID); err != nil {
			log.Printf("[checkout] publishing order %s: %v", intent.OrderID, err)
		}
	}

	c.view.Navigate(OrderSummaryPath)
	return nil
}

// PaymentFailed only logs; the shopper re-submits the form to try again.
func (c *Controller) PaymentFailed(ctx context.Context, f payment.Failure) {
	c.deps.Metrics.Count(ctx, aws.MetricPaymentFailure)
	log.Printf("[checkout] Payment Failed! Please Try Again. order=%s code=%s reason=%s", f.OrderID, f.Code, f.Description)
}

// Summary returns the last placed order, if any.
func (c *Controller) Summary(ctx context.Context) (OrderIntent, bool) {
	var intents []OrderIntent
	if !c.deps.Store.Get(ctx, OrderKey, &intents) || len(intents) == 0 {
		return OrderIntent{}, false
	}
	return intents[0], true
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
