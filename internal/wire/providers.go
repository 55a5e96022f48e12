package wire

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"

	"claude-review-dashboard/internal/application/importer"
	"claude-review-dashboard/internal/application/settings"
	"claude-review-dashboard/internal/config"
	"claude-review-dashboard/internal/domain/repository"
	"claude-review-dashboard/internal/domain/service"
	"claude-review-dashboard/internal/infrastructure/cloud"
	"claude-review-dashboard/internal/infrastructure/github"
	"claude-review-dashboard/internal/infrastructure/persistence"
	"claude-review-dashboard/internal/infrastructure/persistence/redis"
	"claude-review-dashboard/internal/infrastructure/secrets"
	"claude-review-dashboard/internal/interfaces/http/handler"
	"claude-review-dashboard/internal/interfaces/http/middleware"
	"claude-review-dashboard/pkg/logger"
	"claude-review-dashboard/pkg/utils"
)

// 密钥缓存时间
const secretCacheTTL = 5 * time.Minute

// ImportTools usage-import 命令使用的依赖
type ImportTools struct {
	Storage  *persistence.Storage
	Seeder   *importer.HistoricalSeeder
	Runner   *importer.GitHubRunner
	Settings *settings.Resolver
}

// ProvideStorage 按配置打开存储后端
func ProvideStorage(ctx context.Context, cfg *config.Config) (*persistence.Storage, func(), error) {
	s, err := persistence.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := s.Close(); err != nil {
			logger.Error(ctx, "failed to close storage", err)
		}
	}
	return s, cleanup, nil
}

// ProvideUsageRepository 用量记录仓储
func ProvideUsageRepository(s *persistence.Storage) repository.UsageRecordRepository {
	return s.Usage
}

// ProvideSettingsRepository 设置仓储
func ProvideSettingsRepository(s *persistence.Storage) repository.SettingsRepository {
	return s.Settings
}

// ProvideRateLimiter 限流器；未启用或 Redis 不可达时返回 nil，不阻塞启动
func ProvideRateLimiter(ctx context.Context, cfg *config.Config, s *persistence.Storage) (middleware.RateLimiter, func(), error) {
	noop := func() {}
	if !cfg.Security.RateLimit.Enabled {
		return nil, noop, nil
	}
	if s.Redis != nil {
		return redis.NewRateLimiter(s.Redis), noop, nil
	}

	client, err := redis.NewClient(&cfg.Storage.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, rate limiting disabled", "error", err.Error())
		return nil, noop, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return redis.NewRateLimiter(client), cleanup, nil
}

// ProvideSecretProvider AWS Secrets Manager 读取器
func ProvideSecretProvider(ctx context.Context, cfg *config.Config) (service.SecretProvider, error) {
	awsCfg, err := cloud.LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}
	return secrets.NewManager(awsCfg, secretCacheTTL), nil
}

func githubHTTPClient(cfg *config.Config) *http.Client {
	timeout := cfg.GitHub.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// ProvideIdentityProvider 使用调用方令牌查询 GitHub 用户
func ProvideIdentityProvider(cfg *config.Config) service.IdentityProvider {
	return github.NewClient("", githubHTTPClient(cfg))
}

// ProvideGitHubRunner 每次导入时解析令牌并构建 GitHub 客户端
func ProvideGitHubRunner(cfg *config.Config, secretProvider service.SecretProvider, usageRepo repository.UsageRecordRepository) *importer.GitHubRunner {
	httpClient := githubHTTPClient(cfg)
	factory := func(ctx context.Context) (service.WorkflowSource, error) {
		token, err := github.ResolveToken(ctx, cfg.GitHub, secretProvider)
		if err != nil {
			return nil, err
		}
		return github.NewClient(token, httpClient), nil
	}
	return importer.NewGitHubRunner(factory, usageRepo, importer.GitHubImporterOptions{
		Repositories:    cfg.GitHub.Repositories,
		RunsPerWorkflow: cfg.GitHub.RunsPerWorkflow,
		Concurrency:     cfg.GitHub.Concurrency,
	})
}

// ProvideHistoricalSeeder 历史数据回填器；importer.seed 非 0 时结果可复现
func ProvideHistoricalSeeder(cfg *config.Config, usageRepo repository.UsageRecordRepository) *importer.HistoricalSeeder {
	var rnd *rand.Rand
	if seed := cfg.Importer.Seed; seed != 0 {
		rnd = rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1))
	}
	return importer.NewHistoricalSeeder(usageRepo, importer.SeederOptions{
		Organization: cfg.GitHub.Organization,
		BatchSize:    cfg.Importer.BatchSize,
		TTL:          time.Duration(cfg.Importer.TTLDays) * 24 * time.Hour,
	}, rnd)
}

// ProvideSessionManager 会话 Token 管理器
func ProvideSessionManager(cfg *config.Config) *utils.SessionManager {
	return utils.NewSessionManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer)
}

// ProvideAllowList 看板用户白名单
func ProvideAllowList(cfg *config.Config) utils.AllowList {
	return utils.NewAllowList(cfg.Security.Auth.AllowedUsers)
}

// ProvideHealthHandler 健康检查处理器
func ProvideHealthHandler(cfg *config.Config, s *persistence.Storage) *handler.HealthHandler {
	return handler.NewHealthHandler(cfg.App.Env, cfg.App.Version, map[string]repository.HealthChecker{
		s.Driver: s.Health,
	})
}

// ProvideAuthHandler GitHub 登录处理器
func ProvideAuthHandler(cfg *config.Config, identity service.IdentityProvider, sessions *utils.SessionManager, allowed utils.AllowList) *handler.AuthHandler {
	return handler.NewAuthHandler(identity, sessions, allowed, cfg.Security.JWT.Expiration)
}
