package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// simpleMock is a small in-memory stand-in for the store table keyed by store_key.
type simpleMock struct {
	mu       sync.Mutex
	table    map[string]map[string]types.AttributeValue
	putCalls int
	err      error
}

func newSimpleMock() *simpleMock {
	return &simpleMock{table: map[string]map[string]types.AttributeValue{}}
}

func (m *simpleMock) keyOf(key map[string]types.AttributeValue) (string, error) {
	attr, ok := key["store_key"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing key")
	}
	return attr.Value, nil
}

func (m *simpleMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	k, err := m.keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *simpleMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.err != nil {
		return nil, m.err
	}
	k, err := m.keyOf(params.Item)
	if err != nil {
		return nil, err
	}
	m.table[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *simpleMock) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := m.keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	delete(m.table, k)
	return &dyn.DeleteItemOutput{}, nil
}

func TestDynamoDB_SetGetDelete(t *testing.T) {
	mock := newSimpleMock()
	d := NewDynamoDB(mock, "storefront-store")
	ctx := context.Background()

	if _, err := d.Get(ctx, "orderDetails"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := d.Set(ctx, "orderDetails", []byte(`[{"paymentId":"pay_1","orderId":"order_1"}]`)); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	item := mock.table["orderDetails"]
	if item == nil {
		t.Fatalf("item not stored")
	}
	if _, ok := item["updated_at"]; !ok {
		t.Fatalf("updated_at missing in stored item")
	}

	got, err := d.Get(ctx, "orderDetails")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got) != `[{"paymentId":"pay_1","orderId":"order_1"}]` {
		t.Fatalf("unexpected value: %s", got)
	}

	if err := d.Delete(ctx, "orderDetails"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, ok := mock.table["orderDetails"]; ok {
		t.Fatalf("item not deleted")
	}
}

func TestDynamoDB_ErrorKeepsServiceCode(t *testing.T) {
	mock := newSimpleMock()
	mock.err = &types.ResourceNotFoundException{Message: strPtr("table missing")}
	d := NewDynamoDB(mock, "missing")

	err := d.Set(context.Background(), "cartProducts", []byte(`[]`))
	if err == nil {
		t.Fatalf("expected error")
	}
	var rnf *types.ResourceNotFoundException
	if !errors.As(err, &rnf) {
		t.Fatalf("expected ResourceNotFoundException in chain, got %v", err)
	}
}

func strPtr(s string) *string { return &s }
