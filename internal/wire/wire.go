//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"claude-review-dashboard/internal/application/importer"
	"claude-review-dashboard/internal/application/settings"
	"claude-review-dashboard/internal/application/usage"
	"claude-review-dashboard/internal/config"
	"claude-review-dashboard/internal/infrastructure/persistence"
	"claude-review-dashboard/internal/interfaces/http/handler"
	"claude-review-dashboard/internal/interfaces/http/router"
)

// StorageSet 存储提供者集合
var StorageSet = wire.NewSet(
	ProvideStorage,
	ProvideUsageRepository,
	ProvideSettingsRepository,
)

// ImportSet 导入提供者集合
var ImportSet = wire.NewSet(
	ProvideSecretProvider,
	ProvideGitHubRunner,
	ProvideHistoricalSeeder,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideRateLimiter,
	ProvideSessionManager,
	ProvideAllowList,
	ProvideIdentityProvider,
	usage.NewService,
	settings.NewResolver,
	ProvideHealthHandler,
	ProvideAuthHandler,
	handler.NewUsageHandler,
	handler.NewSettingsHandler,
	handler.NewImportHandler,
	wire.Bind(new(handler.ImportRunner), new(*importer.GitHubRunner)),
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		StorageSet,
		ImportSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeStorage 仅初始化存储（用于 bootstrap）
func InitializeStorage(ctx context.Context, cfg *config.Config) (*persistence.Storage, func(), error) {
	wire.Build(ProvideStorage)
	return nil, nil, nil
}

// InitializeImportTools 初始化导入命令依赖
func InitializeImportTools(ctx context.Context, cfg *config.Config) (*ImportTools, func(), error) {
	wire.Build(
		StorageSet,
		ImportSet,
		settings.NewResolver,
		wire.Struct(new(ImportTools), "*"),
	)
	return nil, nil, nil
}
