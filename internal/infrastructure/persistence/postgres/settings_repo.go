package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/domain/repository"
)

// settingsRow 设置单例的表结构；列可为空，读取时缺失列交由默认值补齐
type settingsRow struct {
	SettingID           string         `gorm:"column:setting_id;type:varchar(32);primaryKey"`
	MonthlyBudget       *float64       `gorm:"column:monthly_budget"`
	PerRepoDaily        *float64       `gorm:"column:per_repo_daily"`
	PerPRMaximum        *float64       `gorm:"column:per_pr_maximum"`
	DefaultReviewType   *string        `gorm:"column:default_review_type;type:varchar(50)"`
	AutoIncremental     *bool          `gorm:"column:auto_incremental"`
	SkipPatterns        pq.StringArray `gorm:"column:skip_patterns;type:text[]"`
	NotificationWebhook *string        `gorm:"column:notification_webhook;type:text"`
	AuthorizedUsers     pq.StringArray `gorm:"column:authorized_users;type:text[]"`
	AlertDaily          *float64       `gorm:"column:alert_daily"`
	AlertWeekly         *float64       `gorm:"column:alert_weekly"`
	AlertMonthly        *float64       `gorm:"column:alert_monthly"`
	LastUpdated         *string        `gorm:"column:updated_at;type:varchar(40)"`
}

func (settingsRow) TableName() string {
	return "organization_settings"
}

func (row *settingsRow) toPartial() *entity.PartialSettings {
	p := &entity.PartialSettings{
		MonthlyBudget:       row.MonthlyBudget,
		PerRepoDaily:        row.PerRepoDaily,
		PerPRMaximum:        row.PerPRMaximum,
		DefaultReviewType:   row.DefaultReviewType,
		AutoIncremental:     row.AutoIncremental,
		NotificationWebhook: row.NotificationWebhook,
		UpdatedAt:           row.LastUpdated,
	}
	// NULL 视为缺失，'{}' 视为显式空列表
	if row.SkipPatterns != nil {
		p.SkipPatterns = []string(row.SkipPatterns)
	}
	if row.AuthorizedUsers != nil {
		p.AuthorizedUsers = []string(row.AuthorizedUsers)
	}
	if row.AlertDaily != nil || row.AlertWeekly != nil || row.AlertMonthly != nil {
		p.AlertThresholds = &entity.PartialAlertThresholds{
			Daily:   row.AlertDaily,
			Weekly:  row.AlertWeekly,
			Monthly: row.AlertMonthly,
		}
	}
	return p
}

func newSettingsRow(s *entity.OrganizationSettings) *settingsRow {
	row := &settingsRow{
		SettingID:         entity.SettingsKey,
		MonthlyBudget:     &s.MonthlyBudget,
		PerRepoDaily:      &s.PerRepoDaily,
		PerPRMaximum:      &s.PerPRMaximum,
		DefaultReviewType: &s.DefaultReviewType,
		AutoIncremental:   &s.AutoIncremental,
		SkipPatterns:      pq.StringArray(append([]string{}, s.SkipPatterns...)),
		AlertDaily:        &s.AlertThresholds.Daily,
		AlertWeekly:       &s.AlertThresholds.Weekly,
		AlertMonthly:      &s.AlertThresholds.Monthly,
	}
	if s.NotificationWebhook != "" {
		row.NotificationWebhook = &s.NotificationWebhook
	}
	if len(s.AuthorizedUsers) > 0 {
		row.AuthorizedUsers = pq.StringArray(s.AuthorizedUsers)
	}
	if s.UpdatedAt != "" {
		row.LastUpdated = &s.UpdatedAt
	}
	return row
}

// SettingsRepository 设置单例仓储实现
type SettingsRepository struct {
	client *Client
}

var _ repository.SettingsRepository = (*SettingsRepository)(nil)

// NewSettingsRepository 创建设置仓储
func NewSettingsRepository(client *Client) *SettingsRepository {
	return &SettingsRepository{client: client}
}

// Get 读取单例，不存在时返回 repository.ErrNotFound
func (r *SettingsRepository) Get(ctx context.Context) (*entity.PartialSettings, error) {
	ctx, span := tracer.Start(ctx, "postgres.SettingsRepository.Get")
	defer span.End()

	var row settingsRow
	err := r.client.db.WithContext(ctx).
		Where("setting_id = ?", entity.SettingsKey).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return row.toPartial(), nil
}

// Put 整体替换单例
func (r *SettingsRepository) Put(ctx context.Context, settings *entity.OrganizationSettings) error {
	ctx, span := tracer.Start(ctx, "postgres.SettingsRepository.Put")
	defer span.End()

	if err := r.client.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(newSettingsRow(settings)).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to put settings: %w", err)
	}
	return nil
}
