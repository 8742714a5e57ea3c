package main

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-storefront/internal/aws"
)

type countingRecorder struct {
	counts map[string]int
}

func (r *countingRecorder) Count(_ context.Context, name string) {
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[name]++
}

func strPtr(s string) *string { return &s }

func TestProcessor_ConfirmsValidOrders(t *testing.T) {
	rec := &countingRecorder{}
	p := NewProcessor(rec)

	ev := events.SQSEvent{Records: []events.SQSMessage{
		{
			MessageId: "m1",
			Body:      `{"payment_id":"pay_1","order_id":"order_1"}`,
			MessageAttributes: map[string]events.SQSMessageAttribute{
				"order_id": {StringValue: strPtr("order_1"), DataType: "String"},
			},
		},
		{MessageId: "m2", Body: `{"payment_id":"pay_2","order_id":"order_2"}`},
	}}

	resp, err := p.Handle(context.Background(), ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.BatchItemFailures) != 0 {
		t.Fatalf("expected no failures, got %+v", resp.BatchItemFailures)
	}
	if rec.counts[aws.MetricOrderConfirmed] != 2 {
		t.Fatalf("expected 2 confirmations, got %v", rec.counts)
	}
}

func TestProcessor_ReportsOnlyBadMessages(t *testing.T) {
	p := NewProcessor(nil)

	ev := events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "ok", Body: `{"payment_id":"pay_1","order_id":"order_1"}`},
		{MessageId: "not-json", Body: `{`},
		{MessageId: "no-payment", Body: `{"order_id":"order_3"}`},
		{
			MessageId: "mismatch",
			Body:      `{"payment_id":"pay_4","order_id":"order_4"}`,
			MessageAttributes: map[string]events.SQSMessageAttribute{
				"order_id": {StringValue: strPtr("order_x"), DataType: "String"},
			},
		},
	}}

	resp, err := p.Handle(context.Background(), ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var failed []string
	for _, f := range resp.BatchItemFailures {
		failed = append(failed, f.ItemIdentifier)
	}
	if len(failed) != 3 || failed[0] != "not-json" || failed[1] != "no-payment" || failed[2] != "mismatch" {
		t.Fatalf("unexpected failures %v", failed)
	}
}
