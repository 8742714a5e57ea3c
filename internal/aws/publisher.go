package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Publisher wraps an SQS client and a queue URL.
type Publisher struct {
	SQS      SQSAPI
	QueueURL string
}

// NewPublisher returns a Publisher bound to a queue URL.
func NewPublisher(sqsClient SQSAPI, queueURL string) *Publisher {
	return &Publisher{
		SQS:      sqsClient,
		QueueURL: queueURL,
	}
}

// OrderMessage is the body of a placed-order message.
type OrderMessage struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
}

// PublishOrder sends a placed order (payment id + gateway order id) to the queue.
// The ids are mirrored as message attributes so consumers can filter without decoding.
func (p *Publisher) PublishOrder(ctx context.Context, paymentID, orderID string) error {
	body, err := json.Marshal(OrderMessage{PaymentID: paymentID, OrderID: orderID})
	if err != nil {
		return fmt.Errorf("marshal order message: %w", err)
	}
	return p.send(ctx, string(body), map[string]string{
		"payment_id": paymentID,
		"order_id":   orderID,
	})
}

func (p *Publisher) send(ctx context.Context, messageBody string, attributes map[string]string) error {
	input := &sqs.SendMessageInput{
		QueueUrl:    &p.QueueURL,
		MessageBody: &messageBody,
	}
	if len(attributes) > 0 {
		msgAttrs := map[string]sqstypes.MessageAttributeValue{}
		for k, v := range attributes {
			// using string type for all attrs
			msgAttrs[k] = sqstypes.MessageAttributeValue{
				DataType:    awsString("String"),
				StringValue: awsString(v),
			}
		}
		input.MessageAttributes = msgAttrs
	}

	_, err := p.SQS.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// awsString helper
func awsString(s string) *string { return &s }
