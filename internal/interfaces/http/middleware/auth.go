// Package middleware 提供 HTTP 中间件
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"claude-review-dashboard/internal/interfaces/http/dto"
	apperrors "claude-review-dashboard/pkg/errors"
	"claude-review-dashboard/pkg/logger"
	"claude-review-dashboard/pkg/utils"
)

// UserContextKey gin.Context 中保存当前登录用户名的键
const UserContextKey = "user"

// AuthConfig 认证配置
type AuthConfig struct {
	// Enabled 是否启用认证
	Enabled bool
	// Sessions 会话 Token 解析器
	Sessions *utils.SessionManager
	// AllowedUsers 允许访问看板的 GitHub 用户
	AllowedUsers utils.AllowList
	// SkipPaths 跳过认证的路径前缀
	SkipPaths []string
}

// Auth 认证中间件
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		for _, path := range cfg.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		token, ok := utils.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			dto.Abort(c, apperrors.ErrUnauthorized)
			return
		}

		claims, err := cfg.Sessions.Parse(token)
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				dto.Abort(c, apperrors.ErrTokenExpired)
				return
			}
			dto.Abort(c, apperrors.ErrTokenInvalid)
			return
		}

		// 白名单可能在 Token 签发后收紧
		if !cfg.AllowedUsers.Allowed(claims.Login) {
			logger.Warn(c.Request.Context(), "session user not allowed", "login", claims.Login)
			dto.Abort(c, apperrors.ErrUserNotAllowed)
			return
		}

		c.Set(UserContextKey, claims.Login)
		ctx := logger.WithContext(c.Request.Context(), logger.UserKey, claims.Login)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// DefaultSkipPaths 默认跳过认证的路径
var DefaultSkipPaths = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
	"/api/auth/",
}
