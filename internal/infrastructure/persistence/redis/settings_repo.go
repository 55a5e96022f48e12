package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/domain/repository"
)

// SettingsRepository 设置单例保存在 <prefix>:settings:global
type SettingsRepository struct {
	client *Client
}

var _ repository.SettingsRepository = (*SettingsRepository)(nil)

// NewSettingsRepository 创建设置仓储
func NewSettingsRepository(client *Client) *SettingsRepository {
	return &SettingsRepository{client: client}
}

func (r *SettingsRepository) settingsKey() string {
	return r.client.key("settings", entity.SettingsKey)
}

// Get 读取单例，键不存在时返回 repository.ErrNotFound
func (r *SettingsRepository) Get(ctx context.Context) (*entity.PartialSettings, error) {
	ctx, span := tracer.Start(ctx, "redis.Get")
	defer span.End()

	data, err := r.client.rdb.Get(ctx, r.settingsKey()).Bytes()
	if err != nil {
		if IsNil(err) {
			return nil, repository.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("get settings: %w", err)
	}

	var p entity.PartialSettings
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &p, nil
}

// Put 整体替换单例
func (r *SettingsRepository) Put(ctx context.Context, settings *entity.OrganizationSettings) error {
	ctx, span := tracer.Start(ctx, "redis.Set")
	defer span.End()

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := r.client.rdb.Set(ctx, r.settingsKey(), data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}
