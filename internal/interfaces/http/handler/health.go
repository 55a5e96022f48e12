// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"claude-review-dashboard/internal/domain/repository"
	"claude-review-dashboard/internal/interfaces/http/dto"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	env     string
	version string
	checks  map[string]repository.HealthChecker
	now     func() time.Time
}

// NewHealthHandler 创建健康检查处理器；checks 为就绪检查的依赖，键为名称
func NewHealthHandler(env, version string, checks map[string]repository.HealthChecker) *HealthHandler {
	return &HealthHandler{
		env:     env,
		version: version,
		checks:  checks,
		now:     time.Now,
	}
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	dto.Success(c, dto.HealthResponse{
		Status:      "healthy",
		Timestamp:   h.now().UTC().Format(time.RFC3339),
		Environment: h.env,
		Version:     h.version,
	})
}

// Live 存活检查接口
func (h *HealthHandler) Live(c *gin.Context) {
	h.Health(c)
}

// Ready 就绪检查接口，任一依赖不可用时返回 503
// @Summary 就绪检查
// @Tags System
// @Produce json
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := readinessResponse{
		Status: "ok",
		Checks: make(map[string]*readinessCheck, len(h.checks)),
	}
	for name, checker := range h.checks {
		start := time.Now()
		err := checker.Ping(ctx)
		check := &readinessCheck{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
		if err != nil {
			check.Status = "error"
			check.Error = err.Error()
			resp.Status = "not_ready"
		}
		resp.Checks[name] = check
	}

	if resp.Status != "ok" {
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
