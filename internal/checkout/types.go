package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/imrishuroy/go-storefront/internal/payment"
	"github.com/imrishuroy/go-storefront/internal/validation"
)

// Store keys written by checkout.
const (
	UserInfoKey = "userInfo"
	OrderKey    = "orderDetails"
)

// OrderSummaryPath is where the shopper lands after a successful payment.
const OrderSummaryPath = "/orders/summary"

var (
	// ErrNothingToPay is returned under PolicyBlock when the amount payable is zero.
	ErrNothingToPay = errors.New("nothing to pay in cart")
	// ErrInvalidForm is returned when at least one field failed validation.
	ErrInvalidForm = errors.New("checkout form is invalid")
)

// OrderIntent is the record kept after a successful payment. It is stored as a
// one-element list.
type OrderIntent struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
}

// AmountPolicy decides what a zero amount payable does to a submission.
type AmountPolicy string

const (
	// PolicyWarn alerts and still hands off to the gateway.
	PolicyWarn AmountPolicy = "warn"
	// PolicyBlock alerts and stops the submission.
	PolicyBlock AmountPolicy = "block"
)

// ParsePolicy accepts "warn" or "block"; empty means warn.
func ParsePolicy(s string) (AmountPolicy, error) {
	switch AmountPolicy(s) {
	case "", PolicyWarn:
		return PolicyWarn, nil
	case PolicyBlock:
		return PolicyBlock, nil
	default:
		return "", fmt.Errorf("unknown zero amount policy %q", s)
	}
}

// Merchant is the descriptive metadata shown by the payment widget.
type Merchant struct {
	Name        string
	Description string
	Image       string
	Currency    string
	ThemeColor  string
	Notes       map[string]string
}

// DefaultMerchant is the test-mode widget configuration.
func DefaultMerchant() Merchant {
	return Merchant{
		Name:        "Acme Corp",
		Description: "Test Transaction",
		Currency:    "INR",
		ThemeColor:  "#3399cc",
		Notes:       map[string]string{"address": "Razorpay Corporate Office"},
	}
}

// View is the surface checkout publishes to.
type View interface {
	ShowFieldErrors(res validation.Result)
	Alert(msg string)
	Navigate(path string)
}

// Notifier is told about every placed order.
type Notifier interface {
	PublishOrder(ctx context.Context, paymentID, orderID string) error
}

// CartClearer empties the cart once an order is placed.
type CartClearer interface {
	Clear(ctx context.Context) error
}

// Submission is the outcome of a form submit. Session is nil unless the form was valid.
type Submission struct {
	Result  validation.Result
	Amount  float64
	Session payment.Session
}
