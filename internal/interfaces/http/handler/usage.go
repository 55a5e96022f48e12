package handler

import (
	"github.com/gin-gonic/gin"

	"claude-review-dashboard/internal/application/usage"
	"claude-review-dashboard/internal/interfaces/http/dto"
)

// UsageHandler 成本与评审记录查询
type UsageHandler struct {
	svc *usage.Service
}

// NewUsageHandler 创建用量处理器
func NewUsageHandler(svc *usage.Service) *UsageHandler {
	return &UsageHandler{svc: svc}
}

// Costs 成本汇总
// @Summary 成本汇总
// @Tags Usage
// @Produce json
// @Param start query string false "起始日期 YYYY-MM-DD"
// @Param end query string false "结束日期 YYYY-MM-DD"
// @Success 200 {object} entity.CostSummary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/costs [get]
func (h *UsageHandler) Costs(c *gin.Context) {
	q, err := dto.BindDateRange(c)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}
	dateRange, err := usage.ParseDateRange(q.Start, q.End)
	if err != nil {
		dto.Error(c, err)
		return
	}

	summary, err := h.svc.CostSummary(c.Request.Context(), dateRange)
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, summary)
}

// Repositories 按仓库汇总
// @Summary 仓库汇总
// @Tags Usage
// @Produce json
// @Success 200 {array} entity.RepositorySummary
// @Router /api/repositories [get]
func (h *UsageHandler) Repositories(c *gin.Context) {
	q, err := dto.BindDateRange(c)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}
	dateRange, err := usage.ParseDateRange(q.Start, q.End)
	if err != nil {
		dto.Error(c, err)
		return
	}

	summaries, err := h.svc.Repositories(c.Request.Context(), dateRange)
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, summaries)
}

// Reviews 最近的评审记录
// @Summary 最近评审
// @Tags Usage
// @Produce json
// @Param limit query int false "返回条数"
// @Router /api/reviews [get]
func (h *UsageHandler) Reviews(c *gin.Context) {
	reviews, err := h.svc.RecentReviews(c.Request.Context(), dto.BindLimit(c, usage.DefaultReviewLimit))
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, reviews)
}
