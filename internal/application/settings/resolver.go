// Package settings 提供组织设置的读取与整体替换
package settings

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/domain/repository"
	apperrors "claude-review-dashboard/pkg/errors"
	"claude-review-dashboard/pkg/logger"
	"claude-review-dashboard/pkg/metrics"
	"claude-review-dashboard/pkg/tracer"
)

// Defaults 返回默认设置表
func Defaults() entity.OrganizationSettings {
	return entity.OrganizationSettings{
		MonthlyBudget:     5000,
		PerRepoDaily:      100,
		PerPRMaximum:      20,
		DefaultReviewType: entity.ReviewTypeStandard,
		AutoIncremental:   true,
		SkipPatterns:      []string{"*.lock", "*.generated.*", "dist/*", "build/*"},
		AlertThresholds: entity.AlertThresholds{
			Daily:   200,
			Weekly:  1000,
			Monthly: 2000,
		},
	}
}

// Resolver 组织设置解析器
type Resolver struct {
	repo repository.SettingsRepository
	now  func() time.Time
}

// NewResolver 创建设置解析器
func NewResolver(repo repository.SettingsRepository) *Resolver {
	return &Resolver{
		repo: repo,
		now:  time.Now,
	}
}

// Get 读取设置，存储中不存在时返回默认值
func (r *Resolver) Get(ctx context.Context) (*entity.OrganizationSettings, error) {
	ctx, span := tracer.Start(ctx, "settings.Get")
	defer span.End()

	stored, err := r.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			d := Defaults()
			return &d, nil
		}
		logger.Error(ctx, "failed to read settings", err)
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "Failed to fetch settings")
	}

	resolved := ResolveStored(stored)
	return &resolved, nil
}

// Update 校验后按默认表逐字段补齐，并整体写入新的单例记录
func (r *Resolver) Update(ctx context.Context, partial *entity.PartialSettings) (*entity.OrganizationSettings, error) {
	ctx, span := tracer.Start(ctx, "settings.Update")
	defer span.End()

	if partial == nil {
		partial = &entity.PartialSettings{}
	}
	if err := Validate(partial); err != nil {
		metrics.SettingsUpdatesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	resolved := Resolve(partial)
	resolved.UpdatedAt = r.now().UTC().Format(time.RFC3339Nano)

	if err := r.repo.Put(ctx, &resolved); err != nil {
		metrics.SettingsUpdatesTotal.WithLabelValues("error").Inc()
		logger.Error(ctx, "failed to persist settings", err)
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "Failed to update settings")
	}

	metrics.SettingsUpdatesTotal.WithLabelValues("ok").Inc()
	logger.Info(ctx, "settings updated",
		"monthly_budget", resolved.MonthlyBudget,
		"default_review_type", resolved.DefaultReviewType,
	)
	return &resolved, nil
}

// Resolve 将可选字段逐一对照默认表补齐。
// 数值缺失或为 0 时取默认值；auto_incremental 仅在显式为 false 时关闭；
// 显式的空 skip_patterns 保留。
func Resolve(p *entity.PartialSettings) entity.OrganizationSettings {
	return resolve(p, number)
}

// ResolveStored 读取路径的补齐：已存储的 0 原样保留，仅缺失字段取默认值
func ResolveStored(p *entity.PartialSettings) entity.OrganizationSettings {
	return resolve(p, storedNumber)
}

func resolve(p *entity.PartialSettings, amount func(*float64, float64) float64) entity.OrganizationSettings {
	d := Defaults()
	if p == nil {
		return d
	}

	out := entity.OrganizationSettings{
		MonthlyBudget:     amount(p.MonthlyBudget, d.MonthlyBudget),
		PerRepoDaily:      amount(p.PerRepoDaily, d.PerRepoDaily),
		PerPRMaximum:      amount(p.PerPRMaximum, d.PerPRMaximum),
		DefaultReviewType: text(p.DefaultReviewType, d.DefaultReviewType),
		AutoIncremental:   p.AutoIncremental == nil || *p.AutoIncremental,
		SkipPatterns:      d.SkipPatterns,
		AlertThresholds:   d.AlertThresholds,
	}

	if p.SkipPatterns != nil {
		out.SkipPatterns = append([]string{}, p.SkipPatterns...)
	}
	if p.NotificationWebhook != nil {
		out.NotificationWebhook = strings.TrimSpace(*p.NotificationWebhook)
	}
	if len(p.AuthorizedUsers) > 0 {
		out.AuthorizedUsers = append([]string{}, p.AuthorizedUsers...)
	}
	if t := p.AlertThresholds; t != nil {
		out.AlertThresholds = entity.AlertThresholds{
			Daily:   amount(t.Daily, d.AlertThresholds.Daily),
			Weekly:  amount(t.Weekly, d.AlertThresholds.Weekly),
			Monthly: amount(t.Monthly, d.AlertThresholds.Monthly),
		}
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = *p.UpdatedAt
	}
	return out
}

// Validate 校验更新请求，任何错误都不会产生写入
func Validate(p *entity.PartialSettings) error {
	amounts := []namedAmount{
		{"monthly_budget", p.MonthlyBudget},
		{"per_repo_daily", p.PerRepoDaily},
		{"per_pr_maximum", p.PerPRMaximum},
	}
	if t := p.AlertThresholds; t != nil {
		amounts = append(amounts,
			namedAmount{"alert_thresholds.daily", t.Daily},
			namedAmount{"alert_thresholds.weekly", t.Weekly},
			namedAmount{"alert_thresholds.monthly", t.Monthly},
		)
	}
	for _, a := range amounts {
		if a.value != nil && *a.value < 0 {
			return invalid("%s must not be negative", a.name)
		}
	}

	if p.DefaultReviewType != nil && strings.TrimSpace(*p.DefaultReviewType) == "" {
		return invalid("default_review_type must not be blank")
	}
	if err := validateList("skip_patterns", p.SkipPatterns); err != nil {
		return err
	}
	if err := validateList("authorized_users", p.AuthorizedUsers); err != nil {
		return err
	}

	if p.NotificationWebhook != nil {
		if hook := strings.TrimSpace(*p.NotificationWebhook); hook != "" {
			u, err := url.Parse(hook)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return invalid("notification_webhook must be an absolute http(s) URL")
			}
		}
	}
	return nil
}

// validateList 列表项不能为空白，也不能重复（DynamoDB 字符串集合不允许重复元素）
func validateList(name string, values []string) error {
	seen := make(map[string]int, len(values))
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			return invalid("%s[%d] must not be blank", name, i)
		}
		if first, ok := seen[v]; ok {
			return invalid("%s[%d] duplicates %s[%d] (%q)", name, i, name, first, v)
		}
		seen[v] = i
	}
	return nil
}

type namedAmount struct {
	name  string
	value *float64
}

func invalid(format string, args ...any) error {
	return apperrors.ErrInvalidSettings.WithDetail(fmt.Sprintf(format, args...))
}

func number(v *float64, def float64) float64 {
	if v == nil || *v == 0 {
		return def
	}
	return *v
}

func storedNumber(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func text(v *string, def string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return def
	}
	return *v
}
