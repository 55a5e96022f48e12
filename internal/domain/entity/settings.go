package entity

// SettingsKey 组织设置单例记录的固定主键
const SettingsKey = "global"

// AlertThresholds 告警阈值
type AlertThresholds struct {
	Daily   float64 `json:"daily" dynamodbav:"daily"`
	Weekly  float64 `json:"weekly" dynamodbav:"weekly"`
	Monthly float64 `json:"monthly" dynamodbav:"monthly"`
}

// OrganizationSettings 组织级单例配置
type OrganizationSettings struct {
	MonthlyBudget       float64         `json:"monthly_budget"`
	PerRepoDaily        float64         `json:"per_repo_daily"`
	PerPRMaximum        float64         `json:"per_pr_maximum"`
	DefaultReviewType   string          `json:"default_review_type"`
	AutoIncremental     bool            `json:"auto_incremental"`
	SkipPatterns        []string        `json:"skip_patterns"`
	NotificationWebhook string          `json:"notification_webhook,omitempty"`
	AuthorizedUsers     []string        `json:"authorized_users,omitempty"`
	AlertThresholds     AlertThresholds `json:"alert_thresholds"`
	UpdatedAt           string          `json:"updated_at,omitempty"`
}

// PartialAlertThresholds 可选的告警阈值
type PartialAlertThresholds struct {
	Daily   *float64 `json:"daily,omitempty"`
	Weekly  *float64 `json:"weekly,omitempty"`
	Monthly *float64 `json:"monthly,omitempty"`
}

// PartialSettings 字段全部可选的设置，用于更新请求和存储中的松散记录
//
// 切片字段以 nil 表示缺失，空切片表示显式清空。
type PartialSettings struct {
	MonthlyBudget       *float64                `json:"monthly_budget,omitempty"`
	PerRepoDaily        *float64                `json:"per_repo_daily,omitempty"`
	PerPRMaximum        *float64                `json:"per_pr_maximum,omitempty"`
	DefaultReviewType   *string                 `json:"default_review_type,omitempty"`
	AutoIncremental     *bool                   `json:"auto_incremental,omitempty"`
	SkipPatterns        []string                `json:"skip_patterns,omitempty"`
	NotificationWebhook *string                 `json:"notification_webhook,omitempty"`
	AuthorizedUsers     []string                `json:"authorized_users,omitempty"`
	AlertThresholds     *PartialAlertThresholds `json:"alert_thresholds,omitempty"`
	UpdatedAt           *string                 `json:"updated_at,omitempty"`
}

// ToPartial 将完整设置转换为可选字段形式
func (s *OrganizationSettings) ToPartial() *PartialSettings {
	p := &PartialSettings{
		MonthlyBudget:     ptr(s.MonthlyBudget),
		PerRepoDaily:      ptr(s.PerRepoDaily),
		PerPRMaximum:      ptr(s.PerPRMaximum),
		DefaultReviewType: ptr(s.DefaultReviewType),
		AutoIncremental:   ptr(s.AutoIncremental),
		SkipPatterns:      append([]string{}, s.SkipPatterns...),
		AlertThresholds: &PartialAlertThresholds{
			Daily:   ptr(s.AlertThresholds.Daily),
			Weekly:  ptr(s.AlertThresholds.Weekly),
			Monthly: ptr(s.AlertThresholds.Monthly),
		},
	}
	if s.NotificationWebhook != "" {
		p.NotificationWebhook = ptr(s.NotificationWebhook)
	}
	if len(s.AuthorizedUsers) > 0 {
		p.AuthorizedUsers = append([]string{}, s.AuthorizedUsers...)
	}
	if s.UpdatedAt != "" {
		p.UpdatedAt = ptr(s.UpdatedAt)
	}
	return p
}

func ptr[T any](v T) *T {
	return &v
}
