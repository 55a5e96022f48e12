package dto

import (
	"time"

	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/domain/service"
)

// AuthResponse GitHub 登录成功后的会话令牌
type AuthResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	User      *service.GitHubUser `json:"user"`
}

// SettingsUpdateResponse 设置更新结果
type SettingsUpdateResponse struct {
	Message  string                       `json:"message"`
	Settings *entity.OrganizationSettings `json:"settings"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	Version     string `json:"version,omitempty"`
}
