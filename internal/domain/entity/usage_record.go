// Package entity 定义领域实体
package entity

import (
	"fmt"
	"strings"
	"time"
)

// 评审类型 (开放枚举，未知值原样保留)
const (
	ReviewTypeStandard    = "standard"
	ReviewTypeIncremental = "incremental"
	ReviewTypeSecurity    = "security"
)

// UnknownRepository 缺失仓库字段时的占位名称
const UnknownRepository = "unknown"

// 每千 token 单价 (USD)
const (
	InputRatePer1K  = 0.015
	OutputRatePer1K = 0.075
)

// DayLayout 日期桶使用的日历日格式
const DayLayout = "2006-01-02"

// UsageRecord 一次完成的自动代码评审的用量记录
type UsageRecord struct {
	ReviewID        string         `json:"review_id" gorm:"type:varchar(128);primaryKey" dynamodbav:"review_id"`
	Timestamp       string         `json:"timestamp" gorm:"type:varchar(40);index" dynamodbav:"timestamp"`
	Repository      string         `json:"repository" gorm:"type:varchar(255);index;not null" dynamodbav:"repository"`
	ReviewType      string         `json:"review_type" gorm:"type:varchar(50);not null" dynamodbav:"review_type"`
	PRNumber        int            `json:"pr_number,omitempty" gorm:"default:0" dynamodbav:"pr_number,omitempty"`
	Organization    string         `json:"organization,omitempty" gorm:"type:varchar(255)" dynamodbav:"organization,omitempty"`
	Model           string         `json:"model,omitempty" gorm:"type:varchar(100)" dynamodbav:"model,omitempty"`
	Month           string         `json:"month,omitempty" gorm:"type:varchar(7);index" dynamodbav:"month,omitempty"`
	InputTokens     int64          `json:"input_tokens" gorm:"not null;default:0" dynamodbav:"input_tokens"`
	OutputTokens    int64          `json:"output_tokens" gorm:"not null;default:0" dynamodbav:"output_tokens"`
	TotalCost       float64        `json:"total_cost" gorm:"not null;default:0" dynamodbav:"total_cost"`
	DurationSeconds float64        `json:"duration_seconds" gorm:"not null;default:0" dynamodbav:"duration_seconds"`
	Metadata        map[string]any `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json" dynamodbav:"metadata,omitempty"`
	TTL             int64          `json:"ttl,omitempty" gorm:"default:0" dynamodbav:"ttl,omitempty"`
}

// TableName 指定表名
func (UsageRecord) TableName() string {
	return "usage_records"
}

// CalculateCost 按 token 数计算费用
func CalculateCost(inputTokens, outputTokens int64) float64 {
	return float64(inputTokens)/1000*InputRatePer1K + float64(outputTokens)/1000*OutputRatePer1K
}

// Day 返回时间戳的日期部分 ("T" 之前的文本)
func (r *UsageRecord) Day() string {
	day, _, _ := strings.Cut(r.Timestamp, "T")
	return day
}

// CalendarDay 返回可解析为日历日的日期部分，无法解析时返回 false
func (r *UsageRecord) CalendarDay() (string, bool) {
	day := r.Day()
	if _, err := time.Parse(DayLayout, day); err != nil {
		return "", false
	}
	return day, true
}

// ApplyDefaults 补齐反序列化后缺失的字段
func (r *UsageRecord) ApplyDefaults() {
	if r.Repository == "" {
		r.Repository = UnknownRepository
	}
	if r.ReviewType == "" {
		r.ReviewType = ReviewTypeStandard
	}
}

// Validate 校验写入前的记录不变量
func (r *UsageRecord) Validate() error {
	if r.ReviewID == "" {
		return fmt.Errorf("review_id is required")
	}
	if r.Repository == "" {
		return fmt.Errorf("repository is required")
	}
	if _, ok := r.CalendarDay(); !ok {
		return fmt.Errorf("timestamp %q is not a calendar date", r.Timestamp)
	}
	if r.TotalCost < 0 {
		return fmt.Errorf("total_cost must be non-negative, got %v", r.TotalCost)
	}
	if r.InputTokens < 0 || r.OutputTokens < 0 {
		return fmt.Errorf("token counts must be non-negative")
	}
	if r.DurationSeconds < 0 {
		return fmt.Errorf("duration_seconds must be non-negative")
	}
	return nil
}
