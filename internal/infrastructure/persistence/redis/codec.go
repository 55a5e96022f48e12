package redis

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"claude-review-dashboard/internal/domain/entity"
)

// decodeUsageRecord 宽松解析哈希中的 JSON 记录：数值字符串转数值，类型不符的字段取零值后补默认。
// 只有整体不是 JSON 对象时才返回错误
func decodeUsageRecord(field, raw string) (*entity.UsageRecord, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}

	r := &entity.UsageRecord{
		ReviewID:        str(m["review_id"]),
		Timestamp:       str(m["timestamp"]),
		Repository:      str(m["repository"]),
		ReviewType:      str(m["review_type"]),
		PRNumber:        int(num(m["pr_number"])),
		Organization:    str(m["organization"]),
		Model:           str(m["model"]),
		Month:           str(m["month"]),
		InputTokens:     int64(num(m["input_tokens"])),
		OutputTokens:    int64(num(m["output_tokens"])),
		TotalCost:       num(m["total_cost"]),
		DurationSeconds: num(m["duration_seconds"]),
		Metadata:        metadata(m["metadata"]),
		TTL:             int64(num(m["ttl"])),
	}
	if r.ReviewID == "" {
		r.ReviewID = field
	}
	r.ApplyDefaults()
	return r, nil
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	return ""
}

func num(v any) float64 {
	var raw string
	switch t := v.(type) {
	case json.Number:
		raw = t.String()
	case string:
		raw = t
	default:
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return f
}

// metadata 兼容对象与 JSON 字符串两种写法
func metadata(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(t), &out); err == nil {
			return out
		}
	}
	return nil
}
