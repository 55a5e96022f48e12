// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"errors"

	"claude-review-dashboard/internal/domain/entity"
)

// ErrNotFound 记录或表不存在
var ErrNotFound = errors.New("repository: not found")

// UsageRecordRepository 评审用量记录仓储
type UsageRecordRepository interface {
	// Scan 返回全部记录，表为空或不存在时返回空切片
	Scan(ctx context.Context) ([]*entity.UsageRecord, error)
	Put(ctx context.Context, record *entity.UsageRecord) error
	BatchPut(ctx context.Context, records []*entity.UsageRecord) error
	// HasAny 表中是否已有任一记录
	HasAny(ctx context.Context) (bool, error)
}

// SettingsRepository 组织设置单例仓储
type SettingsRepository interface {
	// Get 读取单例记录，不存在时返回 ErrNotFound
	Get(ctx context.Context) (*entity.PartialSettings, error)
	// Put 整体替换单例记录
	Put(ctx context.Context, settings *entity.OrganizationSettings) error
}

// HealthChecker 存储健康检查
type HealthChecker interface {
	Ping(ctx context.Context) error
}
