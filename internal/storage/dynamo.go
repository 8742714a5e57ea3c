package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/go-storefront/internal/aws"
)

// dynamoEntry is the item shape in the store table.
type dynamoEntry struct {
	Key       string    `dynamodbav:"store_key"` // PK
	Value     string    `dynamodbav:"value"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

// DynamoDB stores each key as one item. Used when the API runs on Lambda,
// where the local filesystem does not persist.
type DynamoDB struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

func NewDynamoDB(client aws.DynamoDBAPI, tableName string) *DynamoDB {
	return &DynamoDB{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

func (d *DynamoDB) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := d.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &d.tableName,
		Key:       d.keyAttr(key),
	})
	if err != nil {
		return nil, classify("get item", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var e dynamoEntry
	if err := attributevalue.UnmarshalMap(out.Item, &e); err != nil {
		return nil, fmt.Errorf("unmarshal entry: %w", err)
	}
	return []byte(e.Value), nil
}

func (d *DynamoDB) Set(ctx context.Context, key string, value []byte) error {
	item, err := attributevalue.MarshalMap(dynamoEntry{
		Key:       key,
		Value:     string(value),
		UpdatedAt: d.nowFunc(),
	})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &d.tableName,
		Item:      item,
	})
	if err != nil {
		return classify("put item", err)
	}
	return nil
}

func (d *DynamoDB) Delete(ctx context.Context, key string) error {
	_, err := d.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &d.tableName,
		Key:       d.keyAttr(key),
	})
	if err != nil {
		return classify("delete item", err)
	}
	return nil
}

func (d *DynamoDB) keyAttr(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"store_key": &types.AttributeValueMemberS{Value: key},
	}
}

// classify keeps the service error code in the message so logs show
// throttling vs. missing-table without unwrapping.
func classify(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s (%s): %w", op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
