package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"claude-review-dashboard/internal/domain/service"
	"claude-review-dashboard/internal/interfaces/http/dto"
	apperrors "claude-review-dashboard/pkg/errors"
	"claude-review-dashboard/pkg/logger"
	"claude-review-dashboard/pkg/metrics"
	"claude-review-dashboard/pkg/utils"
)

// AuthHandler GitHub 登录处理器
type AuthHandler struct {
	identity service.IdentityProvider
	sessions *utils.SessionManager
	allowed  utils.AllowList
	ttl      time.Duration
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(identity service.IdentityProvider, sessions *utils.SessionManager, allowed utils.AllowList, ttl time.Duration) *AuthHandler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthHandler{
		identity: identity,
		sessions: sessions,
		allowed:  allowed,
		ttl:      ttl,
	}
}

type githubTokenRequest struct {
	Token string `json:"token"`
}

// GitHub 用 GitHub 访问令牌换取看板会话 Token
// @Summary GitHub 登录
// @Tags Auth
// @Produce json
// @Param Authorization header string true "Bearer <GitHub token>"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/auth/github [post]
func (h *AuthHandler) GitHub(c *gin.Context) {
	ctx := c.Request.Context()

	token, ok := utils.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		var req githubTokenRequest
		if c.Request.ContentLength > 0 && c.ShouldBindJSON(&req) == nil && req.Token != "" {
			token, ok = req.Token, true
		}
	}
	if !ok {
		metrics.AuthAttemptsTotal.WithLabelValues("missing_token").Inc()
		dto.Error(c, apperrors.ErrTokenMissing)
		return
	}

	user, err := h.identity.CurrentUser(ctx, token)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("invalid_token").Inc()
		logger.Warn(ctx, "github token rejected", "error", err)
		dto.Error(c, apperrors.ErrTokenInvalid.WithDetail("GitHub rejected the token"))
		return
	}

	if !h.allowed.Allowed(user.Login) {
		metrics.AuthAttemptsTotal.WithLabelValues("forbidden").Inc()
		logger.Warn(ctx, "github user not allowed", "login", user.Login)
		dto.Error(c, apperrors.ErrUserNotAllowed)
		return
	}

	session, expiresAt, err := h.sessions.Issue(user.Login, user.Name, user.AvatarURL, h.ttl)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("error").Inc()
		logger.Error(ctx, "failed to issue session token", err)
		dto.Error(c, apperrors.ErrInternalError)
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("ok").Inc()
	logger.Info(ctx, "github login", "login", user.Login)
	dto.Success(c, dto.AuthResponse{
		Token:     session,
		ExpiresAt: expiresAt,
		User:      user,
	})
}
