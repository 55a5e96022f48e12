// Package dynamodb 提供基于 DynamoDB 的用量记录与设置存储
package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"claude-review-dashboard/internal/config"
)

var tracer = otel.Tracer("dynamodb")

const driverName = config.DriverDynamoDB

// API 仓储使用到的 DynamoDB 操作
type API interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Client DynamoDB 客户端
type Client struct {
	api           API
	usageTable    string
	settingsTable string
}

// NewClient 基于 AWS 配置创建客户端
func NewClient(awsCfg aws.Config, cfg *config.DynamoDBConfig) *Client {
	var opts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	return NewClientWithAPI(dynamodb.NewFromConfig(awsCfg, opts...), cfg)
}

// NewClientWithAPI 使用自定义 API 实现创建客户端
func NewClientWithAPI(api API, cfg *config.DynamoDBConfig) *Client {
	return &Client{
		api:           api,
		usageTable:    cfg.UsageTable,
		settingsTable: cfg.SettingsTable,
	}
}

// Ping 检查用量表可访问
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "dynamodb.Ping",
		trace.WithAttributes(attribute.String("dynamodb.table", c.usageTable)))
	defer span.End()

	out, err := c.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.usageTable),
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("describe table %s: %w", c.usageTable, err)
	}
	if out.Table != nil && out.Table.TableStatus != types.TableStatusActive && out.Table.TableStatus != types.TableStatusUpdating {
		return fmt.Errorf("table %s is %s", c.usageTable, out.Table.TableStatus)
	}
	return nil
}

// isTableMissing 表不存在
func isTableMissing(err error) bool {
	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return true
	}
	// DynamoDB Local 等返回的通用 API 错误
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ResourceNotFoundException"
}
