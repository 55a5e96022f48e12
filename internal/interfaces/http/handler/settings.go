package handler

import (
	"github.com/gin-gonic/gin"

	"claude-review-dashboard/internal/application/settings"
	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/interfaces/http/dto"
	apperrors "claude-review-dashboard/pkg/errors"
)

// SettingsHandler 组织设置读写
type SettingsHandler struct {
	resolver *settings.Resolver
}

// NewSettingsHandler 创建设置处理器
func NewSettingsHandler(resolver *settings.Resolver) *SettingsHandler {
	return &SettingsHandler{resolver: resolver}
}

// Get 读取设置，未保存过时返回默认值
// @Summary 读取设置
// @Tags Settings
// @Produce json
// @Success 200 {object} entity.OrganizationSettings
// @Router /api/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.resolver.Get(c.Request.Context())
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, s)
}

// Update 以请求体替换设置，缺失字段取默认值
// @Summary 更新设置
// @Tags Settings
// @Accept json
// @Produce json
// @Param body body entity.PartialSettings true "设置"
// @Success 200 {object} dto.SettingsUpdateResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/settings [patch]
func (h *SettingsHandler) Update(c *gin.Context) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		dto.Error(c, apperrors.ErrInvalidSettings.WithDetail("request body is required"))
		return
	}

	var partial entity.PartialSettings
	if err := c.ShouldBindJSON(&partial); err != nil {
		dto.Error(c, apperrors.ErrInvalidSettings.WithDetail("invalid JSON body: "+err.Error()))
		return
	}

	updated, err := h.resolver.Update(c.Request.Context(), &partial)
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.SettingsUpdateResponse{
		Message:  "Settings updated successfully",
		Settings: updated,
	})
}
