package payment

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// Sandbox approves every payment as soon as the session is opened. Used by the
// CLI, which has no widget to complete the flow.
type Sandbox struct {
	Key string
	// Decline makes every session fail instead.
	Decline bool
}

func (s *Sandbox) Prepare(ctx context.Context, req Request, hooks Hooks) (Session, error) {
	return &sandboxSession{
		opts:    Options{Key: s.Key, OrderID: "order_" + uuid.NewString(), Request: req},
		hooks:   hooks,
		decline: s.Decline,
	}, nil
}

type sandboxSession struct {
	opts    Options
	hooks   Hooks
	decline bool
}

func (s *sandboxSession) Options() Options { return s.opts }

func (s *sandboxSession) Open(ctx context.Context) error {
	log.Printf("[payment] sandbox order=%s amount=%d", s.opts.OrderID, s.opts.Request.Amount)
	if s.decline {
		if s.hooks.OnFailure != nil {
			s.hooks.OnFailure(ctx, Failure{OrderID: s.opts.OrderID, Code: "BAD_REQUEST_ERROR", Description: "Payment declined in sandbox"})
		}
		return nil
	}
	if s.hooks.OnSuccess != nil {
		s.hooks.OnSuccess(ctx, Response{PaymentID: "pay_" + uuid.NewString(), OrderID: s.opts.OrderID})
	}
	return nil
}
