package payment

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Hosted keeps prepared sessions until the widget reports back through
// Complete or Fail (the HTTP callback route).
type Hosted struct {
	key string

	mu      sync.Mutex
	pending map[string]*hostedSession
}

// NewHosted returns a gateway identified by the merchant key.
func NewHosted(key string) *Hosted {
	return &Hosted{key: key, pending: map[string]*hostedSession{}}
}

type hostedSession struct {
	gw     *Hosted
	opts   Options
	hooks  Hooks
	opened bool
}

func (h *Hosted) Prepare(ctx context.Context, req Request, hooks Hooks) (Session, error) {
	if req.Amount < 0 {
		return nil, fmt.Errorf("payment: negative amount %d", req.Amount)
	}
	s := &hostedSession{
		gw: h,
		opts: Options{
			Key:     h.key,
			OrderID: "order_" + uuid.NewString(),
			Request: req,
		},
		hooks: hooks,
	}
	h.mu.Lock()
	h.pending[s.opts.OrderID] = s
	h.mu.Unlock()
	return s, nil
}

// Complete delivers a successful payment for orderID to its success hook.
func (h *Hosted) Complete(ctx context.Context, orderID, paymentID, signature string) error {
	s, err := h.take(orderID)
	if err != nil {
		return err
	}
	if s.hooks.OnSuccess != nil {
		s.hooks.OnSuccess(ctx, Response{PaymentID: paymentID, OrderID: orderID, Signature: signature})
	}
	return nil
}

// Fail delivers a failed payment for orderID to its failure hook.
func (h *Hosted) Fail(ctx context.Context, orderID, code, description string) error {
	s, err := h.take(orderID)
	if err != nil {
		return err
	}
	if s.hooks.OnFailure != nil {
		s.hooks.OnFailure(ctx, Failure{OrderID: orderID, Code: code, Description: description})
	}
	return nil
}

// Pending reports whether orderID is awaiting a callback.
func (h *Hosted) Pending(orderID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.pending[orderID]
	return ok
}

func (h *Hosted) take(orderID string) (*hostedSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.pending[orderID]
	if !ok || !s.opened {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOrder, orderID)
	}
	delete(h.pending, orderID)
	return s, nil
}

func (s *hostedSession) Options() Options { return s.opts }

func (s *hostedSession) Open(ctx context.Context) error {
	s.gw.mu.Lock()
	defer s.gw.mu.Unlock()
	s.opened = true
	log.Printf("[payment] opened order=%s amount=%d %s", s.opts.OrderID, s.opts.Request.Amount, s.opts.Request.Currency)
	return nil
}
