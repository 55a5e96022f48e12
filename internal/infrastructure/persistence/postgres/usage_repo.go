package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/domain/repository"
	"claude-review-dashboard/pkg/metrics"
)

const insertBatchSize = 100

// UsageRepository 用量记录仓储实现
type UsageRepository struct {
	client *Client
}

var _ repository.UsageRecordRepository = (*UsageRepository)(nil)

// NewUsageRepository 创建用量记录仓储
func NewUsageRepository(client *Client) *UsageRepository {
	return &UsageRepository{client: client}
}

// Scan 读取全部用量记录
func (r *UsageRepository) Scan(ctx context.Context) ([]*entity.UsageRecord, error) {
	ctx, span := tracer.Start(ctx, "postgres.UsageRepository.Scan")
	defer span.End()

	start := time.Now()
	records := make([]*entity.UsageRecord, 0)
	if err := r.client.db.WithContext(ctx).Find(&records).Error; err != nil {
		span.RecordError(err)
		metrics.UsageScanDuration.WithLabelValues(driverName, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to scan usage records: %w", err)
	}
	for _, rec := range records {
		rec.ApplyDefaults()
	}

	metrics.UsageScanDuration.WithLabelValues(driverName, "ok").Observe(time.Since(start).Seconds())
	metrics.UsageScanRecords.WithLabelValues(driverName).Observe(float64(len(records)))
	return records, nil
}

// Put 写入单条记录，review_id 冲突时覆盖
func (r *UsageRepository) Put(ctx context.Context, record *entity.UsageRecord) error {
	ctx, span := tracer.Start(ctx, "postgres.UsageRepository.Put")
	defer span.End()

	if err := r.client.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(record).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to put usage record %s: %w", record.ReviewID, err)
	}
	return nil
}

// BatchPut 分批写入
func (r *UsageRepository) BatchPut(ctx context.Context, records []*entity.UsageRecord) error {
	ctx, span := tracer.Start(ctx, "postgres.UsageRepository.BatchPut")
	defer span.End()

	if len(records) == 0 {
		return nil
	}
	if err := r.client.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(records, insertBatchSize).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to batch put usage records: %w", err)
	}
	return nil
}

// HasAny 表中是否存在记录
func (r *UsageRepository) HasAny(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.UsageRepository.HasAny")
	defer span.End()

	var exists bool
	if err := r.client.db.WithContext(ctx).
		Raw("SELECT EXISTS (SELECT 1 FROM usage_records)").
		Scan(&exists).Error; err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check usage records: %w", err)
	}
	return exists, nil
}
