package usage

import (
	"sort"

	"claude-review-dashboard/internal/domain/entity"
)

// SummarizeRepositories 按仓库汇总评审记录，按总费用降序排列
func SummarizeRepositories(records []*entity.UsageRecord, dateRange entity.DateRange) []entity.RepositorySummary {
	byRepo := make(map[string]*entity.RepositorySummary)

	for _, r := range records {
		if r == nil || !inRange(r, dateRange) {
			continue
		}

		s, ok := byRepo[r.Repository]
		if !ok {
			s = &entity.RepositorySummary{
				Name:        r.Repository,
				ReviewTypes: make(map[string]int),
			}
			byRepo[r.Repository] = s
		}

		s.TotalReviews++
		s.TotalCost += r.TotalCost
		s.ReviewTypes[r.ReviewType]++

		// ISO-8601 UTC 时间戳可直接按字典序比较
		if r.Timestamp != "" {
			if s.FirstReview == "" || r.Timestamp < s.FirstReview {
				s.FirstReview = r.Timestamp
			}
			if s.LastReview == "" || r.Timestamp > s.LastReview {
				s.LastReview = r.Timestamp
			}
		}
	}

	out := make([]entity.RepositorySummary, 0, len(byRepo))
	for _, s := range byRepo {
		if s.TotalReviews > 0 {
			s.AverageCost = s.TotalCost / float64(s.TotalReviews)
		}
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCost != out[j].TotalCost {
			return out[i].TotalCost > out[j].TotalCost
		}
		return out[i].Name < out[j].Name
	})
	return out
}
