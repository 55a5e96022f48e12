// Package persistence 按配置组装存储后端
package persistence

import (
	"context"
	"fmt"

	"claude-review-dashboard/internal/config"
	"claude-review-dashboard/internal/domain/repository"
	"claude-review-dashboard/internal/infrastructure/cloud"
	"claude-review-dashboard/internal/infrastructure/persistence/dynamodb"
	"claude-review-dashboard/internal/infrastructure/persistence/postgres"
	"claude-review-dashboard/internal/infrastructure/persistence/redis"
	"claude-review-dashboard/pkg/logger"
)

// Storage 当前驱动下的仓储集合
type Storage struct {
	Driver   string
	Usage    repository.UsageRecordRepository
	Settings repository.SettingsRepository
	Health   repository.HealthChecker
	// Redis 非 redis 驱动时为 nil
	Redis *redis.Client

	closers []func() error
}

// Close 释放底层连接
func (s *Storage) Close() error {
	var firstErr error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open 按 storage.driver 打开存储
func Open(ctx context.Context, cfg *config.Config) (*Storage, error) {
	logger.Info(ctx, "opening storage", "driver", cfg.Storage.Driver)

	switch cfg.Storage.Driver {
	case config.DriverDynamoDB:
		awsCfg, err := cloud.LoadAWSConfig(ctx, cfg.AWS)
		if err != nil {
			return nil, err
		}
		client := dynamodb.NewClient(awsCfg, &cfg.Storage.DynamoDB)
		return &Storage{
			Driver:   config.DriverDynamoDB,
			Usage:    dynamodb.NewUsageRepository(client),
			Settings: dynamodb.NewSettingsRepository(client),
			Health:   client,
		}, nil

	case config.DriverRedis:
		client, err := redis.NewClient(&cfg.Storage.Redis)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Driver:   config.DriverRedis,
			Usage:    redis.NewUsageRepository(client),
			Settings: redis.NewSettingsRepository(client),
			Health:   client,
			Redis:    client,
			closers:  []func() error{client.Close},
		}, nil

	case config.DriverPostgres:
		client, err := postgres.NewClient(&cfg.Storage.Postgres)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Driver:   config.DriverPostgres,
			Usage:    postgres.NewUsageRepository(client),
			Settings: postgres.NewSettingsRepository(client),
			Health:   client,
			closers:  []func() error{client.Close},
		}, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
