// Package usage 提供评审用量的聚合与查询能力
package usage

import (
	"sort"
	"time"

	"claude-review-dashboard/internal/domain/entity"
)

// Aggregate 单次遍历生成费用汇总。
// 日期过滤作用于全部输出；日期桶在首末日之间逐日补零。
func Aggregate(records []*entity.UsageRecord, dateRange entity.DateRange) entity.CostSummary {
	summary := entity.CostSummary{
		CostByRepository: make(map[string]float64),
		CostByType:       make(map[string]float64),
		CostByDay:        []entity.DailyCostBucket{},
	}
	byDay := make(map[string]*entity.DailyCostBucket)

	for _, r := range records {
		if r == nil || !inRange(r, dateRange) {
			continue
		}

		summary.TotalCost += r.TotalCost
		summary.TotalReviews++
		summary.TotalInputTokens += r.InputTokens
		summary.TotalOutputTokens += r.OutputTokens
		summary.CostByRepository[r.Repository] += r.TotalCost
		summary.CostByType[r.ReviewType] += r.TotalCost

		day, ok := r.CalendarDay()
		if !ok {
			continue
		}
		b, exists := byDay[day]
		if !exists {
			b = &entity.DailyCostBucket{Date: day}
			byDay[day] = b
		}
		b.Cost += r.TotalCost
		b.Count++
	}

	if summary.TotalReviews > 0 {
		summary.AverageCostPerReview = summary.TotalCost / float64(summary.TotalReviews)
	}
	summary.CostByDay = fillDays(byDay)

	return summary
}

// inRange 记录是否通过日期过滤；设置边界时日期部分缺失的记录被排除
func inRange(r *entity.UsageRecord, dateRange entity.DateRange) bool {
	if !dateRange.Bounded() {
		return true
	}
	day := r.Day()
	if day == "" {
		return false
	}
	return dateRange.Contains(day)
}

// fillDays 按日期升序输出桶，并在首末日之间补齐缺失日期
func fillDays(byDay map[string]*entity.DailyCostBucket) []entity.DailyCostBucket {
	out := []entity.DailyCostBucket{}
	if len(byDay) == 0 {
		return out
	}

	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// 键在写入前已校验为合法日历日
	first, _ := time.Parse(entity.DayLayout, keys[0])
	last, _ := time.Parse(entity.DayLayout, keys[len(keys)-1])

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(entity.DayLayout)
		if b, ok := byDay[key]; ok {
			out = append(out, *b)
			continue
		}
		out = append(out, entity.DailyCostBucket{Date: key})
	}
	return out
}
