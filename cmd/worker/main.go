package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/go-storefront/internal/aws"
)

func main() {
	var metrics aws.Recorder = aws.NopRecorder{}
	if ns := os.Getenv("METRICS_NAMESPACE"); ns != "" {
		clients, err := aws.NewAWSClients(context.Background())
		if err != nil {
			log.Fatalf("failed to init aws clients: %v", err)
		}
		metrics = aws.NewCloudWatchRecorder(clients.CloudWatch, ns)
	}
	p := NewProcessor(metrics)

	// If RUN_LOCAL=true, process a single simulated message for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"payment_id":"pay_local","order_id":"order_local"}`
		}
		event := events.SQSEvent{Records: []events.SQSMessage{{MessageId: "local-1", Body: testBody}}}
		resp, err := p.Handle(context.Background(), event)
		if err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		if len(resp.BatchItemFailures) > 0 {
			log.Fatalf("local message rejected")
		}
		return
	}

	lambda.Start(p.Handle)
}
