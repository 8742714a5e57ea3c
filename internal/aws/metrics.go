package aws

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted by the storefront.
const (
	MetricCartAdd        = "CartAdd"
	MetricCatalogFailure = "CatalogFetchFailure"
	MetricCheckoutReject = "CheckoutRejected"
	MetricPaymentSuccess = "PaymentSucceeded"
	MetricPaymentFailure = "PaymentFailed"
	MetricOrderConfirmed = "OrderConfirmed"
)

// Recorder counts storefront events. Implementations must not block the caller on failure.
type Recorder interface {
	Count(ctx context.Context, name string)
}

// NopRecorder drops every metric.
type NopRecorder struct{}

func (NopRecorder) Count(context.Context, string) {}

// CloudWatchRecorder publishes each event as a single-count datum.
type CloudWatchRecorder struct {
	client    CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// NewCloudWatchRecorder returns a recorder writing into the given namespace.
func NewCloudWatchRecorder(client CloudWatchAPI, namespace string) *CloudWatchRecorder {
	return &CloudWatchRecorder{
		client:    client,
		namespace: namespace,
		nowFunc:   time.Now,
	}
}

// Count publishes one datum. Failures are logged only.
func (r *CloudWatchRecorder) Count(ctx context.Context, name string) {
	now := r.nowFunc()
	one := 1.0
	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &r.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString(name),
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitCount,
				Value:      &one,
			},
		},
	})
	if err != nil {
		log.Printf("[metrics] put %s: %v", name, err)
	}
}
