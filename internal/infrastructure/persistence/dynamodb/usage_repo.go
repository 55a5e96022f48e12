package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/domain/repository"
	"claude-review-dashboard/pkg/metrics"
)

// DynamoDB BatchWriteItem 单次最多 25 条
const maxBatchWrite = 25

// UsageRepository 用量记录仓储实现
type UsageRepository struct {
	client *Client
}

var _ repository.UsageRecordRepository = (*UsageRepository)(nil)

// NewUsageRepository 创建用量记录仓储
func NewUsageRepository(client *Client) *UsageRepository {
	return &UsageRepository{client: client}
}

// Scan 分页扫描整张用量表，表不存在时返回空切片
func (r *UsageRepository) Scan(ctx context.Context) ([]*entity.UsageRecord, error) {
	ctx, span := tracer.Start(ctx, "dynamodb.Scan",
		trace.WithAttributes(attribute.String("dynamodb.table", r.client.usageTable)))
	defer span.End()

	start := time.Now()
	records := make([]*entity.UsageRecord, 0)

	paginator := dynamodb.NewScanPaginator(r.client.api, &dynamodb.ScanInput{
		TableName: aws.String(r.client.usageTable),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isTableMissing(err) {
				break
			}
			span.RecordError(err)
			metrics.UsageScanDuration.WithLabelValues(driverName, "error").Observe(time.Since(start).Seconds())
			return nil, fmt.Errorf("scan %s: %w", r.client.usageTable, err)
		}
		for _, it := range page.Items {
			records = append(records, decodeUsageRecord(it))
		}
	}

	metrics.UsageScanDuration.WithLabelValues(driverName, "ok").Observe(time.Since(start).Seconds())
	metrics.UsageScanRecords.WithLabelValues(driverName).Observe(float64(len(records)))
	span.SetAttributes(attribute.Int("dynamodb.items", len(records)))
	return records, nil
}

// Put 写入单条记录
func (r *UsageRepository) Put(ctx context.Context, record *entity.UsageRecord) error {
	ctx, span := tracer.Start(ctx, "dynamodb.PutItem",
		trace.WithAttributes(attribute.String("dynamodb.table", r.client.usageTable)))
	defer span.End()

	it, err := encodeUsageRecord(record)
	if err != nil {
		return fmt.Errorf("marshal usage record %s: %w", record.ReviewID, err)
	}

	if _, err := r.client.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.client.usageTable),
		Item:      it,
	}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("put usage record %s: %w", record.ReviewID, err)
	}
	return nil
}

// BatchPut 按 25 条一批写入；存在未处理条目时返回错误，不做重试
func (r *UsageRepository) BatchPut(ctx context.Context, records []*entity.UsageRecord) error {
	ctx, span := tracer.Start(ctx, "dynamodb.BatchWriteItem",
		trace.WithAttributes(
			attribute.String("dynamodb.table", r.client.usageTable),
			attribute.Int("dynamodb.items", len(records)),
		))
	defer span.End()

	for start := 0; start < len(records); start += maxBatchWrite {
		end := min(start+maxBatchWrite, len(records))

		requests := make([]types.WriteRequest, 0, end-start)
		for _, record := range records[start:end] {
			it, err := encodeUsageRecord(record)
			if err != nil {
				return fmt.Errorf("marshal usage record %s: %w", record.ReviewID, err)
			}
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: it},
			})
		}

		out, err := r.client.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				r.client.usageTable: requests,
			},
		})
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("batch write %s: %w", r.client.usageTable, err)
		}
		if n := len(out.UnprocessedItems[r.client.usageTable]); n > 0 {
			return fmt.Errorf("batch write %s: %d items unprocessed", r.client.usageTable, n)
		}
	}
	return nil
}

// HasAny 读取一条记录判断表是否为空
func (r *UsageRepository) HasAny(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "dynamodb.HasAny")
	defer span.End()

	out, err := r.client.api.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.client.usageTable),
		Limit:     aws.Int32(1),
	})
	if err != nil {
		if isTableMissing(err) {
			return false, nil
		}
		span.RecordError(err)
		return false, fmt.Errorf("scan %s: %w", r.client.usageTable, err)
	}
	return len(out.Items) > 0, nil
}
