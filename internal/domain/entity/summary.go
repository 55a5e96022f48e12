package entity

// DateRange 闭区间日期过滤条件，空字符串表示该侧不设限
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Bounded 是否设置了任一边界
func (r DateRange) Bounded() bool {
	return r.Start != "" || r.End != ""
}

// Contains 判断日历日是否落在区间内 (按字典序比较)
func (r DateRange) Contains(day string) bool {
	if r.Start != "" && day < r.Start {
		return false
	}
	if r.End != "" && day > r.End {
		return false
	}
	return true
}

// DailyCostBucket 按日聚合的费用
type DailyCostBucket struct {
	Date  string  `json:"date"`
	Cost  float64 `json:"cost"`
	Count int     `json:"count"`
}

// CostSummary 费用汇总
type CostSummary struct {
	TotalCost            float64            `json:"total_cost"`
	TotalReviews         int                `json:"total_reviews"`
	AverageCostPerReview float64            `json:"average_cost_per_review"`
	TotalInputTokens     int64              `json:"total_input_tokens"`
	TotalOutputTokens    int64              `json:"total_output_tokens"`
	CostByRepository     map[string]float64 `json:"cost_by_repository"`
	CostByType           map[string]float64 `json:"cost_by_type"`
	CostByDay            []DailyCostBucket  `json:"cost_by_day"`
}

// RepositorySummary 单个仓库的评审汇总
type RepositorySummary struct {
	Name         string         `json:"name"`
	TotalReviews int            `json:"total_reviews"`
	TotalCost    float64        `json:"total_cost"`
	AverageCost  float64        `json:"average_cost"`
	FirstReview  string         `json:"first_review"`
	LastReview   string         `json:"last_review"`
	ReviewTypes  map[string]int `json:"review_types"`
}
