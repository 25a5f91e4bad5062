package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"pix_checkout/internal/domain/entities"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo keeps items by id and understands just the expressions the
// repository sends.
type fakeDynamo struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	pageSize int
	tables   []string
	failWith error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func keyOf(key map[string]types.AttributeValue) string {
	if s, ok := key["id"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.tables = append(f.tables, aws.ToString(in.TableName))
	id := keyOf(in.Item)
	if _, exists := f.items[id]; exists {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	f.items[id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	item, ok := f.items[keyOf(in.Key)]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("missing")}
	}

	updated := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		updated[k] = v
	}
	for ref, attr := range in.ExpressionAttributeNames {
		switch ref {
		case "#id":
		case "#updated_at":
			updated[attr] = in.ExpressionAttributeValues[":updated_at"]
		default:
			updated[attr] = in.ExpressionAttributeValues[":value"]
		}
	}
	f.items[keyOf(in.Key)] = updated
	return &dynamodb.UpdateItemOutput{Attributes: updated}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}

	ids := make([]string, 0, len(f.items))
	for id := range f.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	start := 0
	if in.ExclusiveStartKey != nil {
		last := keyOf(in.ExclusiveStartKey)
		start = sort.SearchStrings(ids, last) + 1
	}
	end := len(ids)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}

	out := &dynamodb.ScanOutput{}
	for _, id := range ids[start:end] {
		out.Items = append(out.Items, f.items[id])
	}
	if end < len(ids) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: ids[end-1]}}
	}
	return out, nil
}

func sampleService(id string) entities.Service {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return entities.Service{
		ID:        id,
		Title:     "Emissão de RG",
		Price:     decimal.RequireFromString("49.90"),
		Tangible:  false,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestServiceDynamoRepository_CreateAndGet(t *testing.T) {
	t.Setenv("SERVICES_TABLE", "catalog-test")
	ddb := newFakeDynamo()
	repo := NewServiceDynamoRepository(ddb)

	created, err := repo.Create(context.Background(), sampleService("svc-1"))
	require.NoError(t, err)
	assert.Equal(t, "svc-1", created.ID)
	assert.Equal(t, []string{"catalog-test"}, ddb.tables)
	assert.Equal(t, "catalog-test", repo.TableName())

	price, ok := ddb.items["svc-1"]["price"].(*types.AttributeValueMemberS)
	require.True(t, ok, "price is stored as an exact decimal string")
	assert.Equal(t, "49.9", price.Value)

	got, err := repo.GetByID(context.Background(), "svc-1")
	require.NoError(t, err)
	assert.Equal(t, "Emissão de RG", got.Title)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("49.90")))
	assert.True(t, got.Active)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
}

func TestServiceDynamoRepository_CreateDuplicate(t *testing.T) {
	repo := NewServiceDynamoRepository(newFakeDynamo())
	_, err := repo.Create(context.Background(), sampleService("svc-1"))
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), sampleService("svc-1"))
	var cfe *types.ConditionalCheckFailedException
	assert.True(t, errors.As(err, &cfe))
}

func TestServiceDynamoRepository_GetMissing(t *testing.T) {
	repo := NewServiceDynamoRepository(newFakeDynamo())
	got, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, got.ID)
}

func TestServiceDynamoRepository_ListPaginates(t *testing.T) {
	ddb := newFakeDynamo()
	ddb.pageSize = 2
	repo := NewServiceDynamoRepository(ddb)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		_, err := repo.Create(context.Background(), sampleService(id))
		require.NoError(t, err)
	}

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, "e", list[4].ID)
}

func TestServiceDynamoRepository_UpdatePrice(t *testing.T) {
	repo := NewServiceDynamoRepository(newFakeDynamo())
	_, err := repo.Create(context.Background(), sampleService("svc-1"))
	require.NoError(t, err)

	updated, err := repo.UpdatePriceByID(context.Background(), "svc-1", decimal.RequireFromString("55.00"))
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(55)))
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
}

func TestServiceDynamoRepository_SetActive(t *testing.T) {
	repo := NewServiceDynamoRepository(newFakeDynamo())
	_, err := repo.Create(context.Background(), sampleService("svc-1"))
	require.NoError(t, err)

	updated, err := repo.SetActiveByID(context.Background(), "svc-1", false)
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, "Emissão de RG", updated.Title)
}

func TestServiceDynamoRepository_UpdateMissingReturnsZero(t *testing.T) {
	repo := NewServiceDynamoRepository(newFakeDynamo())
	updated, err := repo.SetActiveByID(context.Background(), "nope", false)
	require.NoError(t, err)
	assert.Empty(t, updated.ID)
}

func TestServiceDynamoRepository_PropagatesErrors(t *testing.T) {
	ddb := newFakeDynamo()
	ddb.failWith = errors.New("throttled")
	repo := NewServiceDynamoRepository(ddb)

	_, err := repo.GetByID(context.Background(), "svc-1")
	assert.EqualError(t, err, "throttled")
	_, err = repo.List(context.Background())
	assert.EqualError(t, err, "throttled")
	_, err = repo.UpdatePriceByID(context.Background(), "svc-1", decimal.NewFromInt(1))
	assert.EqualError(t, err, "throttled")
}
