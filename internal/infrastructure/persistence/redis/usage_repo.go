package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/domain/repository"
	"claude-review-dashboard/pkg/logger"
	"claude-review-dashboard/pkg/metrics"
)

const scanBatch = 500

// UsageRepository 以哈希保存用量记录，field 为 review_id，value 为 JSON
type UsageRepository struct {
	client *Client
}

var _ repository.UsageRecordRepository = (*UsageRepository)(nil)

// NewUsageRepository 创建用量记录仓储
func NewUsageRepository(client *Client) *UsageRepository {
	return &UsageRepository{client: client}
}

func (r *UsageRepository) hashKey() string {
	return r.client.key("usage")
}

// Scan 以 HSCAN 遍历全部记录；按 field 去重，非 JSON 条目跳过
func (r *UsageRepository) Scan(ctx context.Context) ([]*entity.UsageRecord, error) {
	key := r.hashKey()
	ctx, span := tracer.Start(ctx, "redis.HScan",
		trace.WithAttributes(attribute.String("redis.key", key)))
	defer span.End()

	start := time.Now()
	records := make([]*entity.UsageRecord, 0)

	seen := make(map[string]struct{})
	var cursor uint64
	for {
		kvs, next, err := r.client.rdb.HScan(ctx, key, cursor, "*", scanBatch).Result()
		if err != nil {
			span.RecordError(err)
			metrics.UsageScanDuration.WithLabelValues(driverName, "error").Observe(time.Since(start).Seconds())
			return nil, fmt.Errorf("hscan %s: %w", key, err)
		}
		records = appendPage(ctx, records, kvs, seen)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	metrics.UsageScanDuration.WithLabelValues(driverName, "ok").Observe(time.Since(start).Seconds())
	metrics.UsageScanRecords.WithLabelValues(driverName).Observe(float64(len(records)))
	return records, nil
}

// appendPage 解析一页 HSCAN 结果；HSCAN 在 rehash 期间可能重复返回同一 field，按 seen 去重
func appendPage(ctx context.Context, records []*entity.UsageRecord, kvs []string, seen map[string]struct{}) []*entity.UsageRecord {
	// kvs 依次为 field, value
	for i := 0; i+1 < len(kvs); i += 2 {
		field := kvs[i]
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}

		rec, err := decodeUsageRecord(field, kvs[i+1])
		if err != nil {
			logger.Warn(ctx, "skipping malformed usage record", "review_id", field, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

// Put 写入单条记录
func (r *UsageRepository) Put(ctx context.Context, record *entity.UsageRecord) error {
	return r.BatchPut(ctx, []*entity.UsageRecord{record})
}

// BatchPut 通过 pipeline 批量写入
func (r *UsageRepository) BatchPut(ctx context.Context, records []*entity.UsageRecord) error {
	key := r.hashKey()
	ctx, span := tracer.Start(ctx, "redis.HSet",
		trace.WithAttributes(
			attribute.String("redis.key", key),
			attribute.Int("redis.items", len(records)),
		))
	defer span.End()

	if len(records) == 0 {
		return nil
	}

	pipe := r.client.rdb.Pipeline()
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal usage record %s: %w", rec.ReviewID, err)
		}
		pipe.HSet(ctx, key, rec.ReviewID, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// HasAny 哈希是否非空
func (r *UsageRepository) HasAny(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "redis.HLen")
	defer span.End()

	n, err := r.client.rdb.HLen(ctx, r.hashKey()).Result()
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	return n > 0, nil
}
