package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-storefront/internal/aws"
)

var errMalformed = errors.New("malformed order message")

// Processor consumes the placed-order messages the storefront publishes after
// a successful payment.
type Processor struct {
	metrics aws.Recorder
}

// NewProcessor creates a processor; a nil recorder drops metrics.
func NewProcessor(metrics aws.Recorder) *Processor {
	if metrics == nil {
		metrics = aws.NopRecorder{}
	}
	return &Processor{metrics: metrics}
}

// Handle processes an SQS batch. Failed messages are reported individually so
// only they are redelivered (and eventually dead-lettered).
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			log.Printf("[worker] message=%s: %v", rec.MessageId, err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg aws.OrderMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if !strings.HasPrefix(msg.PaymentID, "pay_") || msg.OrderID == "" {
		return fmt.Errorf("%w: payment=%q order=%q", errMalformed, msg.PaymentID, msg.OrderID)
	}
	if attr, ok := rec.MessageAttributes["order_id"]; ok && attr.StringValue != nil && *attr.StringValue != msg.OrderID {
		return fmt.Errorf("%w: attribute order_id=%s does not match body", errMalformed, *attr.StringValue)
	}

	log.Printf("[worker] confirmed order=%s payment=%s", msg.OrderID, msg.PaymentID)
	p.metrics.Count(ctx, aws.MetricOrderConfirmed)
	return nil
}
