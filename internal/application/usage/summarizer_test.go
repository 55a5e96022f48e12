package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claude-review-dashboard/internal/domain/entity"
)

func TestSummarizeRepositories(t *testing.T) {
	records := []*entity.UsageRecord{
		rec("api", "standard", "2025-01-03T10:00:00Z", 2),
		rec("api", "security", "2025-01-01T10:00:00Z", 4),
		rec("web", "standard", "2025-01-02T10:00:00Z", 10),
		rec("cli", "incremental", "2025-01-02T10:00:00Z", 6),
		rec("api", "standard", "", 0),
	}

	summaries := SummarizeRepositories(records, entity.DateRange{})
	require.Len(t, summaries, 3)

	assert.Equal(t, "web", summaries[0].Name)
	assert.Equal(t, "api", summaries[1].Name)
	assert.Equal(t, "cli", summaries[2].Name)

	api := summaries[1]
	assert.Equal(t, 3, api.TotalReviews)
	assert.Equal(t, 6.0, api.TotalCost)
	assert.Equal(t, 2.0, api.AverageCost)
	assert.Equal(t, "2025-01-01T10:00:00Z", api.FirstReview)
	assert.Equal(t, "2025-01-03T10:00:00Z", api.LastReview)
	assert.Equal(t, map[string]int{"standard": 2, "security": 1}, api.ReviewTypes)

	for _, s := range summaries {
		assert.LessOrEqual(t, s.FirstReview, s.LastReview)
	}
}

func TestSummarizeRepositories_TieBreakByName(t *testing.T) {
	records := []*entity.UsageRecord{
		rec("zeta", "standard", "2025-01-01", 5),
		rec("alpha", "standard", "2025-01-01", 5),
	}

	summaries := SummarizeRepositories(records, entity.DateRange{})
	require.Len(t, summaries, 2)
	assert.Equal(t, "alpha", summaries[0].Name)
	assert.Equal(t, "zeta", summaries[1].Name)
}

func TestSummarizeRepositories_ZeroCostAverage(t *testing.T) {
	records := []*entity.UsageRecord{rec("free", "standard", "2025-01-01", 0)}

	summaries := SummarizeRepositories(records, entity.DateRange{})
	require.Len(t, summaries, 1)
	assert.Equal(t, 0.0, summaries[0].AverageCost)
	assert.Equal(t, 1, summaries[0].TotalReviews)
}

func TestSummarizeRepositories_DateFilter(t *testing.T) {
	records := []*entity.UsageRecord{
		rec("api", "standard", "2025-01-01T10:00:00Z", 1),
		rec("api", "standard", "2025-02-01T10:00:00Z", 2),
		rec("web", "standard", "2025-03-01T10:00:00Z", 3),
	}

	summaries := SummarizeRepositories(records, entity.DateRange{Start: "2025-01-15", End: "2025-02-15"})
	require.Len(t, summaries, 1)
	assert.Equal(t, "api", summaries[0].Name)
	assert.Equal(t, 1, summaries[0].TotalReviews)
	assert.Equal(t, "2025-02-01T10:00:00Z", summaries[0].FirstReview)
	assert.Equal(t, "2025-02-01T10:00:00Z", summaries[0].LastReview)
}

func TestSummarizeRepositories_Empty(t *testing.T) {
	summaries := SummarizeRepositories(nil, entity.DateRange{})
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}
