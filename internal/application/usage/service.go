package usage

import (
	"context"
	"sort"
	"strings"
	"time"

	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/domain/repository"
	apperrors "claude-review-dashboard/pkg/errors"
	"claude-review-dashboard/pkg/logger"
	"claude-review-dashboard/pkg/tracer"
)

// 最近评审列表的条数限制
const (
	DefaultReviewLimit = 100
	MaxReviewLimit     = 1000
)

// Service 评审用量查询服务，每次调用执行一次全表扫描并在内存中聚合
type Service struct {
	records repository.UsageRecordRepository
}

// NewService 创建用量查询服务
func NewService(records repository.UsageRecordRepository) *Service {
	return &Service{records: records}
}

// ParseDateRange 校验并构造日期区间
func ParseDateRange(start, end string) (entity.DateRange, error) {
	r := entity.DateRange{
		Start: strings.TrimSpace(start),
		End:   strings.TrimSpace(end),
	}
	for _, bound := range []string{r.Start, r.End} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse(entity.DayLayout, bound); err != nil {
			return entity.DateRange{}, apperrors.Newf(apperrors.CodeInvalidDateRange, "Invalid date range",
				"%q is not a YYYY-MM-DD date", bound)
		}
	}
	if r.Start != "" && r.End != "" && r.Start > r.End {
		return entity.DateRange{}, apperrors.Newf(apperrors.CodeInvalidDateRange, "Invalid date range",
			"start %s is after end %s", r.Start, r.End)
	}
	return r, nil
}

// CostSummary 返回区间内的费用汇总
func (s *Service) CostSummary(ctx context.Context, dateRange entity.DateRange) (*entity.CostSummary, error) {
	ctx, span := tracer.Start(ctx, "usage.CostSummary")
	defer span.End()

	records, err := s.scan(ctx, "Failed to fetch cost data")
	if err != nil {
		return nil, err
	}

	summary := Aggregate(records, dateRange)
	logger.Debug(ctx, "cost summary computed",
		"records", len(records),
		"reviews", summary.TotalReviews,
		"start", dateRange.Start,
		"end", dateRange.End,
	)
	return &summary, nil
}

// Repositories 返回区间内的仓库汇总
func (s *Service) Repositories(ctx context.Context, dateRange entity.DateRange) ([]entity.RepositorySummary, error) {
	ctx, span := tracer.Start(ctx, "usage.Repositories")
	defer span.End()

	records, err := s.scan(ctx, "Failed to fetch repository data")
	if err != nil {
		return nil, err
	}
	return SummarizeRepositories(records, dateRange), nil
}

// RecentReviews 返回按时间倒序的最近评审记录
func (s *Service) RecentReviews(ctx context.Context, limit int) ([]*entity.UsageRecord, error) {
	ctx, span := tracer.Start(ctx, "usage.RecentReviews")
	defer span.End()

	if limit <= 0 {
		limit = DefaultReviewLimit
	}
	if limit > MaxReviewLimit {
		limit = MaxReviewLimit
	}

	records, err := s.scan(ctx, "Failed to fetch reviews")
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *Service) scan(ctx context.Context, failure string) ([]*entity.UsageRecord, error) {
	records, err := s.records.Scan(ctx)
	if err != nil {
		logger.Error(ctx, "usage scan failed", err)
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, failure)
	}
	if records == nil {
		records = []*entity.UsageRecord{}
	}
	return records, nil
}
