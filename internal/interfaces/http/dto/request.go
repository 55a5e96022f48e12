package dto

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// DateRangeQuery 可选的起止日期 (YYYY-MM-DD)
type DateRangeQuery struct {
	Start string `form:"start"`
	End   string `form:"end"`
}

// BindDateRange 从查询参数绑定日期范围，格式校验由调用方完成
func BindDateRange(c *gin.Context) (DateRangeQuery, error) {
	var q DateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return DateRangeQuery{}, err
	}
	q.Start = strings.TrimSpace(q.Start)
	q.End = strings.TrimSpace(q.End)
	return q, nil
}

// BindLimit 解析 limit 查询参数，缺失或非法时返回默认值
func BindLimit(c *gin.Context, defaultVal int) int {
	return parseIntWithDefault(c.Query("limit"), defaultVal)
}

// parseIntWithDefault 解析整数，失败时返回默认值
func parseIntWithDefault(s string, defaultVal int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
