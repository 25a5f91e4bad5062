package database

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoConfig describes how to reach DynamoDB.
//
// Supported env vars:
//   - AWS_REGION (default: us-east-1)
//   - DYNAMODB_ENDPOINT (optional; e.g. http://localhost:8000 for DynamoDB Local)
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY (default "local", only used with DYNAMODB_ENDPOINT)
type DynamoConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

func NewDynamoConfigFromEnv() DynamoConfig {
	return DynamoConfig{
		Region:          getenvDefault("AWS_REGION", "us-east-1"),
		Endpoint:        strings.TrimSpace(os.Getenv("DYNAMODB_ENDPOINT")),
		AccessKeyID:     getenvDefault("AWS_ACCESS_KEY_ID", "local"),
		SecretAccessKey: getenvDefault("AWS_SECRET_ACCESS_KEY", "local"),
	}
}

// ConnectDynamoDB builds a client from the environment and exits on failure.
func ConnectDynamoDB() *dynamodb.Client {
	client, err := NewDynamoDBClient(context.Background(), NewDynamoConfigFromEnv())
	if err != nil {
		log.Fatalf("failed to create dynamodb client: %v", err)
	}
	return client
}

func NewDynamoDBClient(ctx context.Context, cfg DynamoConfig) (*dynamodb.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.Endpoint != "" {
		// DynamoDB Local ignores credentials but the SDK still signs requests.
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// tableAPI is the subset of *dynamodb.Client EnsureTable needs.
type tableAPI interface {
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// EnsureTable creates an on-demand table keyed by a string "id" when it does
// not exist yet. Meant for local development.
func EnsureTable(ctx context.Context, ddb tableAPI, name string) error {
	_, err := ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return err
	}

	log.Printf("[database] creating table name=%s", name)
	_, err = ddb.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(name),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		return nil
	}
	return err
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
