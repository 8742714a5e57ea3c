package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type mockSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (m *mockSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.inputs = append(m.inputs, in)
	return &sqs.SendMessageOutput{}, nil
}

type mockCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, m.err
}

func TestPublishOrder(t *testing.T) {
	mock := &mockSQS{}
	p := NewPublisher(mock, "https://sqs.local/orders")

	if err := p.PublishOrder(context.Background(), "pay_1", "order_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.inputs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(mock.inputs))
	}
	in := mock.inputs[0]
	if *in.QueueUrl != "https://sqs.local/orders" {
		t.Fatalf("queue url mismatch: %s", *in.QueueUrl)
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(*in.MessageBody), &body); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if body["payment_id"] != "pay_1" || body["order_id"] != "order_1" {
		t.Fatalf("unexpected body: %v", body)
	}
	if got := *in.MessageAttributes["order_id"].StringValue; got != "order_1" {
		t.Fatalf("order_id attribute mismatch: %s", got)
	}
}

func TestPublishOrder_SendFailure(t *testing.T) {
	sendErr := errors.New("boom")
	p := NewPublisher(&mockSQS{err: sendErr}, "q")

	err := p.PublishOrder(context.Background(), "pay_1", "order_1")
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestCloudWatchRecorder_Count(t *testing.T) {
	mock := &mockCloudWatch{}
	r := NewCloudWatchRecorder(mock, "Storefront")

	r.Count(context.Background(), MetricCartAdd)

	if len(mock.inputs) != 1 {
		t.Fatalf("expected 1 put, got %d", len(mock.inputs))
	}
	in := mock.inputs[0]
	if *in.Namespace != "Storefront" {
		t.Fatalf("namespace mismatch: %s", *in.Namespace)
	}
	if *in.MetricData[0].MetricName != MetricCartAdd || *in.MetricData[0].Value != 1 {
		t.Fatalf("unexpected datum: %+v", in.MetricData[0])
	}
}

func TestCloudWatchRecorder_FailureIsSwallowed(t *testing.T) {
	r := NewCloudWatchRecorder(&mockCloudWatch{err: errors.New("throttled")}, "Storefront")
	// must not panic or block
	r.Count(context.Background(), MetricPaymentFailure)
}
