package dynamodb

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"claude-review-dashboard/internal/domain/entity"
)

type item = map[string]types.AttributeValue

const settingsKeyAttr = "setting_id"

// decodeUsageRecord 宽松解析用量记录：数值字符串转数值，缺失字段取零值后补默认
func decodeUsageRecord(it item) *entity.UsageRecord {
	r := &entity.UsageRecord{
		ReviewID:        str(it["review_id"]),
		Timestamp:       str(it["timestamp"]),
		Repository:      str(it["repository"]),
		ReviewType:      str(it["review_type"]),
		PRNumber:        int(num(it["pr_number"])),
		Organization:    str(it["organization"]),
		Model:           str(it["model"]),
		Month:           str(it["month"]),
		InputTokens:     int64(num(it["input_tokens"])),
		OutputTokens:    int64(num(it["output_tokens"])),
		TotalCost:       num(it["total_cost"]),
		DurationSeconds: num(it["duration_seconds"]),
		Metadata:        metadata(it["metadata"]),
		TTL:             int64(num(it["ttl"])),
	}
	r.ApplyDefaults()
	return r
}

func encodeUsageRecord(r *entity.UsageRecord) (item, error) {
	return attributevalue.MarshalMap(r)
}

// decodeSettings 解析设置单例；兼容扁平 alert_* 字段与嵌套 alert_thresholds
func decodeSettings(it item) *entity.PartialSettings {
	p := &entity.PartialSettings{
		MonthlyBudget:       numPtr(it["monthly_budget"]),
		PerRepoDaily:        numPtr(it["per_repo_daily"]),
		PerPRMaximum:        numPtr(it["per_pr_maximum"]),
		DefaultReviewType:   strPtr(it["default_review_type"]),
		AutoIncremental:     boolPtr(it["auto_incremental"]),
		SkipPatterns:        strList(it["skip_patterns"]),
		NotificationWebhook: strPtr(it["notification_webhook"]),
		AuthorizedUsers:     strList(it["authorized_users"]),
		UpdatedAt:           strPtr(it["updated_at"]),
	}

	thresholds := &entity.PartialAlertThresholds{
		Daily:   numPtr(it["alert_daily"]),
		Weekly:  numPtr(it["alert_weekly"]),
		Monthly: numPtr(it["alert_monthly"]),
	}
	if nested, ok := it["alert_thresholds"].(*types.AttributeValueMemberM); ok {
		if thresholds.Daily == nil {
			thresholds.Daily = numPtr(nested.Value["daily"])
		}
		if thresholds.Weekly == nil {
			thresholds.Weekly = numPtr(nested.Value["weekly"])
		}
		if thresholds.Monthly == nil {
			thresholds.Monthly = numPtr(nested.Value["monthly"])
		}
	}
	if thresholds.Daily != nil || thresholds.Weekly != nil || thresholds.Monthly != nil {
		p.AlertThresholds = thresholds
	}
	return p
}

// encodeSettings 以扁平字段写入设置单例
func encodeSettings(s *entity.OrganizationSettings) item {
	it := item{
		settingsKeyAttr:       &types.AttributeValueMemberS{Value: entity.SettingsKey},
		"monthly_budget":      numAttr(s.MonthlyBudget),
		"per_repo_daily":      numAttr(s.PerRepoDaily),
		"per_pr_maximum":      numAttr(s.PerPRMaximum),
		"default_review_type": &types.AttributeValueMemberS{Value: s.DefaultReviewType},
		"auto_incremental":    &types.AttributeValueMemberBOOL{Value: s.AutoIncremental},
		"skip_patterns":       listAttr(s.SkipPatterns),
		"alert_daily":         numAttr(s.AlertThresholds.Daily),
		"alert_weekly":        numAttr(s.AlertThresholds.Weekly),
		"alert_monthly":       numAttr(s.AlertThresholds.Monthly),
	}
	if s.NotificationWebhook != "" {
		it["notification_webhook"] = &types.AttributeValueMemberS{Value: s.NotificationWebhook}
	}
	if len(s.AuthorizedUsers) > 0 {
		it["authorized_users"] = listAttr(s.AuthorizedUsers)
	}
	if s.UpdatedAt != "" {
		it["updated_at"] = &types.AttributeValueMemberS{Value: s.UpdatedAt}
	}
	return it
}

func str(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	}
	return ""
}

func strPtr(av types.AttributeValue) *string {
	switch av.(type) {
	case *types.AttributeValueMemberS, *types.AttributeValueMemberN:
		s := str(av)
		return &s
	}
	return nil
}

func num(av types.AttributeValue) float64 {
	if p := numPtr(av); p != nil {
		return *p
	}
	return 0
}

func numPtr(av types.AttributeValue) *float64 {
	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	default:
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil
	}
	return &f
}

func boolPtr(av types.AttributeValue) *bool {
	switch v := av.(type) {
	case *types.AttributeValueMemberBOOL:
		b := v.Value
		return &b
	case *types.AttributeValueMemberS:
		if b, err := strconv.ParseBool(v.Value); err == nil {
			return &b
		}
	}
	return nil
}

// strList 字符串集合或字符串列表转切片；空列表返回非 nil 空切片
func strList(av types.AttributeValue) []string {
	switch v := av.(type) {
	case *types.AttributeValueMemberSS:
		return append([]string{}, v.Value...)
	case *types.AttributeValueMemberL:
		out := make([]string, 0, len(v.Value))
		for _, e := range v.Value {
			if s, ok := e.(*types.AttributeValueMemberS); ok {
				out = append(out, s.Value)
			}
		}
		return out
	}
	return nil
}

func metadata(av types.AttributeValue) map[string]any {
	switch v := av.(type) {
	case *types.AttributeValueMemberM:
		var out map[string]any
		if err := attributevalue.UnmarshalMap(v.Value, &out); err == nil {
			return out
		}
	case *types.AttributeValueMemberS:
		var out map[string]any
		if err := json.Unmarshal([]byte(v.Value), &out); err == nil {
			return out
		}
	}
	return nil
}

func numAttr(f float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(f, 'f', -1, 64)}
}

// listAttr 非空时写字符串集合；DynamoDB 不允许空集合，空切片写为空列表
func listAttr(values []string) types.AttributeValue {
	if len(values) == 0 {
		return &types.AttributeValueMemberL{Value: []types.AttributeValue{}}
	}
	return &types.AttributeValueMemberSS{Value: append([]string{}, values...)}
}
