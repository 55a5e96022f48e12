// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"claude-review-dashboard/internal/config"
	"claude-review-dashboard/internal/interfaces/http/dto"
	"claude-review-dashboard/internal/interfaces/http/handler"
	"claude-review-dashboard/internal/interfaces/http/middleware"
	apperrors "claude-review-dashboard/pkg/errors"
	"claude-review-dashboard/pkg/utils"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Health   *handler.HealthHandler
	Usage    *handler.UsageHandler
	Settings *handler.SettingsHandler
	Auth     *handler.AuthHandler
	Import   *handler.ImportHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	sessions *utils.SessionManager
	limiter  middleware.RateLimiter
}

// New 创建路由器；limiter 为 nil 时不限流
func New(cfg *config.Config, handlers Handlers, sessions *utils.SessionManager, limiter middleware.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	r := &Router{
		engine:   engine,
		cfg:      cfg,
		handlers: handlers,
		sessions: sessions,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	r.engine.Use(middleware.Audit(middleware.AuditConfig{
		Enabled:   true,
		SkipPaths: middleware.DefaultAuditSkipPaths,
	}))

	r.engine.NoRoute(func(c *gin.Context) {
		dto.Error(c, apperrors.ErrNotFound)
	})
	r.engine.NoMethod(func(c *gin.Context) {
		dto.Error(c, apperrors.ErrMethodNotAllowed)
	})
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	h := r.handlers

	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	api := r.engine.Group("/api")
	api.Use(middleware.Auth(middleware.AuthConfig{
		Enabled:      r.cfg.Security.Auth.Enabled,
		Sessions:     r.sessions,
		AllowedUsers: utils.NewAllowList(r.cfg.Security.Auth.AllowedUsers),
		SkipPaths:    middleware.DefaultSkipPaths,
	}))
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerMinute: r.cfg.Security.RateLimit.RequestsPerMinute,
	}, r.limiter))
	{
		api.POST("/auth/github", h.Auth.GitHub)

		api.GET("/costs", h.Usage.Costs)
		api.GET("/repositories", h.Usage.Repositories)
		api.GET("/reviews", h.Usage.Reviews)

		api.GET("/settings", h.Settings.Get)
		api.PATCH("/settings", h.Settings.Update)
		api.PUT("/settings", h.Settings.Update)

		api.POST("/import", h.Import.Import)
	}
}
