// Package payment models the third-party hosted checkout widget the storefront
// hands off to. No money moves in this module.
package payment

import (
	"context"
	"errors"
)

// ErrUnknownOrder is returned when a callback names an order with no pending session.
var ErrUnknownOrder = errors.New("payment: unknown gateway order")

// Prefill is shown pre-populated in the widget.
type Prefill struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// Request describes one charge. Amount is in minor currency units (paise for INR).
type Request struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Image       string            `json:"image,omitempty"`
	Prefill     Prefill           `json:"prefill"`
	Notes       map[string]string `json:"notes,omitempty"`
	ThemeColor  string            `json:"themeColor,omitempty"`
}

// Response is delivered to the success hook.
type Response struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Signature string `json:"signature,omitempty"`
}

// Failure is delivered to the failure hook.
type Failure struct {
	OrderID     string `json:"orderId"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Hooks receive the widget's asynchronous outcome.
type Hooks struct {
	OnSuccess func(ctx context.Context, resp Response)
	OnFailure func(ctx context.Context, failure Failure)
}

// Options is what a browser-side widget needs to render the session.
type Options struct {
	Key     string  `json:"key"`
	OrderID string  `json:"order_id"`
	Request Request `json:"request"`
}

// Session is a prepared checkout; Open is the explicit trigger bound to the pay control.
type Session interface {
	Options() Options
	Open(ctx context.Context) error
}

// Gateway prepares checkout sessions.
type Gateway interface {
	Prepare(ctx context.Context, req Request, hooks Hooks) (Session, error)
}
