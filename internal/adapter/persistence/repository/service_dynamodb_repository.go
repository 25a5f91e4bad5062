package repository

import (
	"context"
	"errors"
	"time"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

const defaultServicesTableName = "services"

// dynamoAPI is the subset of *dynamodb.Client the repository uses.
type dynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type serviceItem struct {
	ID        string `dynamodbav:"id"`
	Title     string `dynamodbav:"title"`
	Price     string `dynamodbav:"price"`
	Tangible  bool   `dynamodbav:"tangible"`
	Active    bool   `dynamodbav:"active"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// ServiceDynamoRepository persists catalog services in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//
// Prices are stored as exact decimal strings.
type ServiceDynamoRepository struct {
	ddb       dynamoAPI
	tableName string
}

var _ interfaces.IServiceRepository = (*ServiceDynamoRepository)(nil)

func NewServiceDynamoRepository(ddb dynamoAPI) *ServiceDynamoRepository {
	return &ServiceDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("SERVICES_TABLE", defaultServicesTableName),
	}
}

// TableName is the DynamoDB table backing the catalog.
func (r *ServiceDynamoRepository) TableName() string {
	return r.tableName
}

func (r *ServiceDynamoRepository) Create(ctx context.Context, s entities.Service) (entities.Service, error) {
	av, err := attributevalue.MarshalMap(toServiceItem(s))
	if err != nil {
		return entities.Service{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Service{}, err
	}
	return s, nil
}

// GetByID returns a zero Service when the id does not exist.
func (r *ServiceDynamoRepository) GetByID(ctx context.Context, id string) (entities.Service, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Service{}, err
	}
	if len(out.Item) == 0 {
		return entities.Service{}, nil
	}

	var it serviceItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Service{}, err
	}
	return fromServiceItem(it), nil
}

// List scans the whole table; the catalog is small.
func (r *ServiceDynamoRepository) List(ctx context.Context) ([]entities.Service, error) {
	var (
		services []entities.Service
		startKey map[string]types.AttributeValue
	)
	for {
		out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}

		var page []serviceItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		for _, it := range page {
			services = append(services, fromServiceItem(it))
		}

		if len(out.LastEvaluatedKey) == 0 {
			return services, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *ServiceDynamoRepository) UpdatePriceByID(ctx context.Context, id string, newPrice decimal.Decimal) (entities.Service, error) {
	return r.update(ctx, id, "#price", "price", &types.AttributeValueMemberS{Value: newPrice.String()})
}

func (r *ServiceDynamoRepository) SetActiveByID(ctx context.Context, id string, active bool) (entities.Service, error) {
	return r.update(ctx, id, "#active", "active", &types.AttributeValueMemberBOOL{Value: active})
}

// update sets one attribute plus updated_at. A missing id yields a zero
// Service and no error.
func (r *ServiceDynamoRepository) update(ctx context.Context, id, nameRef, attr string, value types.AttributeValue) (entities.Service, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(#id)"),
		UpdateExpression:    aws.String("SET " + nameRef + " = :value, #updated_at = :updated_at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":value":      value,
			":updated_at": &types.AttributeValueMemberS{Value: now},
		},
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			nameRef:       attr,
			"#updated_at": "updated_at",
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Service{}, nil
		}
		return entities.Service{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Service{}, nil
	}

	var it serviceItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Service{}, err
	}
	return fromServiceItem(it), nil
}

func toServiceItem(s entities.Service) serviceItem {
	return serviceItem{
		ID:        s.ID,
		Title:     s.Title,
		Price:     s.Price.String(),
		Tangible:  s.Tangible,
		Active:    s.Active,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromServiceItem(it serviceItem) entities.Service {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	price, _ := decimal.NewFromString(it.Price)
	return entities.Service{
		ID:        it.ID,
		Title:     it.Title,
		Price:     price,
		Tangible:  it.Tangible,
		Active:    it.Active,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}
