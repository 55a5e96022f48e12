// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "claude-review-dashboard/pkg/errors"
)

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Error   string              `json:"error"`
	Code    apperrors.ErrorCode `json:"code"`
	Detail  string              `json:"detail,omitempty"`
	TraceID string              `json:"trace_id,omitempty"`
}

// Success 直接返回负载本身，不包裹信封
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error 按 AppError 的状态码返回错误
func Error(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Detail:  appErr.Detail,
		TraceID: c.GetString("trace_id"),
	})
}

// Abort 返回错误并终止后续处理，供中间件使用
func Abort(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, ErrorResponse{
		Error:   err.Message,
		Code:    err.Code,
		Detail:  err.Detail,
		TraceID: c.GetString("trace_id"),
	})
}

// BadRequest 返回 400 错误
func BadRequest(c *gin.Context, detail string) {
	Error(c, apperrors.ErrInvalidParam.WithDetail(detail))
}
