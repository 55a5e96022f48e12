package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"claude-review-dashboard/internal/application/importer"
	"claude-review-dashboard/internal/interfaces/http/dto"
	"claude-review-dashboard/pkg/logger"
)

// ImportRunner 执行一次用量导入
type ImportRunner interface {
	Import(ctx context.Context) (*importer.ImportReport, error)
}

// ImportHandler 触发 GitHub 工作流导入
type ImportHandler struct {
	runner ImportRunner
}

// NewImportHandler 创建导入处理器
func NewImportHandler(runner ImportRunner) *ImportHandler {
	return &ImportHandler{runner: runner}
}

// Import 导入已配置仓库的 Claude 评审运行记录
// @Summary 导入 GitHub 数据
// @Tags Import
// @Produce json
// @Success 200 {object} importer.ImportReport
// @Router /api/import [post]
func (h *ImportHandler) Import(c *gin.Context) {
	report, err := h.runner.Import(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "import failed", err)
		dto.Error(c, err)
		return
	}
	dto.Success(c, report)
}
