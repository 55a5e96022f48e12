package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claude-review-dashboard/internal/config"
	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/domain/repository"
)

// fakeAPI 内存中的两张表，Scan 每页返回 pageSize 条
type fakeAPI struct {
	tables   map[string]map[string]item
	missing  map[string]bool
	pageSize int
	scanErr  error
	batches  int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		tables: map[string]map[string]item{
			"usage":    {},
			"settings": {},
		},
		missing:  map[string]bool{},
		pageSize: 2,
	}
}

func (f *fakeAPI) table(name string) (map[string]item, error) {
	if f.missing[name] {
		return nil, &types.ResourceNotFoundException{Message: aws.String("Requested resource not found")}
	}
	return f.tables[name], nil
}

func keyOf(it item) string {
	if v, ok := it["review_id"].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	if v, ok := it[settingsKeyAttr].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (f *fakeAPI) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	tbl, err := f.table(aws.ToString(in.TableName))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(tbl))
	for k := range tbl {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	after := ""
	if in.ExclusiveStartKey != nil {
		after = keyOf(in.ExclusiveStartKey)
	}
	limit := f.pageSize
	if in.Limit != nil {
		limit = int(*in.Limit)
	}

	out := &dynamodb.ScanOutput{}
	for _, k := range keys {
		if after != "" && k <= after {
			continue
		}
		if len(out.Items) == limit {
			last := out.Items[len(out.Items)-1]
			out.LastEvaluatedKey = item{"review_id": last["review_id"]}
			break
		}
		out.Items = append(out.Items, tbl[k])
	}
	return out, nil
}

func (f *fakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	tbl, err := f.table(aws.ToString(in.TableName))
	if err != nil {
		return nil, err
	}
	return &dynamodb.GetItemOutput{Item: tbl[keyOf(in.Key)]}, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	tbl, err := f.table(aws.ToString(in.TableName))
	if err != nil {
		return nil, err
	}
	tbl[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.batches++
	for name, reqs := range in.RequestItems {
		if len(reqs) > maxBatchWrite {
			return nil, fmt.Errorf("ValidationException: too many items")
		}
		tbl, err := f.table(name)
		if err != nil {
			return nil, err
		}
		for _, req := range reqs {
			tbl[keyOf(req.PutRequest.Item)] = req.PutRequest.Item
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func (f *fakeAPI) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if _, err := f.table(aws.ToString(in.TableName)); err != nil {
		return nil, err
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: types.TableStatusActive}}, nil
}

func newTestClient(api *fakeAPI) *Client {
	return NewClientWithAPI(api, &config.DynamoDBConfig{UsageTable: "usage", SettingsTable: "settings"})
}

func TestUsageRepository_PutAndScan(t *testing.T) {
	api := newFakeAPI()
	repo := NewUsageRepository(newTestClient(api))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Put(ctx, &entity.UsageRecord{
			ReviewID:     fmt.Sprintf("r-%d", i),
			Timestamp:    fmt.Sprintf("2025-01-0%dT12:00:00Z", i+1),
			Repository:   "api",
			ReviewType:   entity.ReviewTypeSecurity,
			InputTokens:  1000,
			OutputTokens: 100,
			TotalCost:    0.0225,
			Metadata:     map[string]any{"imported": true},
		}))
	}

	records, err := repo.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, records, 5, "all pages are read")
	assert.Equal(t, "r-0", records[0].ReviewID)
	assert.Equal(t, int64(1000), records[0].InputTokens)
	assert.Equal(t, 0.0225, records[0].TotalCost)
	assert.Equal(t, true, records[0].Metadata["imported"])

	has, err := repo.HasAny(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestUsageRepository_LooselyTypedItems(t *testing.T) {
	api := newFakeAPI()
	api.tables["usage"]["legacy"] = item{
		"review_id":        &types.AttributeValueMemberS{Value: "legacy"},
		"timestamp":        &types.AttributeValueMemberS{Value: "2025-01-02T00:00:00Z"},
		"input_tokens":     &types.AttributeValueMemberS{Value: "1500"},
		"output_tokens":    &types.AttributeValueMemberN{Value: "250"},
		"total_cost":       &types.AttributeValueMemberS{Value: "0.0413"},
		"duration_seconds": &types.AttributeValueMemberS{Value: "not-a-number"},
		"pr_number":        &types.AttributeValueMemberN{Value: "42"},
		"metadata":         &types.AttributeValueMemberS{Value: `{"workflow_name":"Claude Review","imported":true}`},
	}

	records, err := NewUsageRepository(newTestClient(api)).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, entity.UnknownRepository, r.Repository)
	assert.Equal(t, entity.ReviewTypeStandard, r.ReviewType)
	assert.Equal(t, int64(1500), r.InputTokens)
	assert.Equal(t, int64(250), r.OutputTokens)
	assert.Equal(t, 0.0413, r.TotalCost)
	assert.Zero(t, r.DurationSeconds)
	assert.Equal(t, 42, r.PRNumber)
	assert.Equal(t, "Claude Review", r.Metadata["workflow_name"])
}

func TestUsageRepository_MissingTable(t *testing.T) {
	api := newFakeAPI()
	api.missing["usage"] = true
	repo := NewUsageRepository(newTestClient(api))

	records, err := repo.Scan(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	has, err := repo.HasAny(context.Background())
	require.NoError(t, err)
	assert.False(t, has)

	assert.Error(t, newTestClient(api).Ping(context.Background()))
}

func TestUsageRepository_ScanError(t *testing.T) {
	api := newFakeAPI()
	api.scanErr = fmt.Errorf("AccessDeniedException")

	_, err := NewUsageRepository(newTestClient(api)).Scan(context.Background())
	assert.Error(t, err)
}

func TestUsageRepository_BatchPutChunks(t *testing.T) {
	api := newFakeAPI()
	repo := NewUsageRepository(newTestClient(api))

	records := make([]*entity.UsageRecord, 0, 60)
	for i := 0; i < 60; i++ {
		records = append(records, &entity.UsageRecord{
			ReviewID:   fmt.Sprintf("b-%02d", i),
			Timestamp:  "2025-01-01T12:00:00Z",
			Repository: "api",
			ReviewType: entity.ReviewTypeStandard,
		})
	}

	require.NoError(t, repo.BatchPut(context.Background(), records))
	assert.Equal(t, 3, api.batches)
	assert.Len(t, api.tables["usage"], 60)
}

func TestSettingsRepository_NotFound(t *testing.T) {
	api := newFakeAPI()
	repo := NewSettingsRepository(newTestClient(api))

	_, err := repo.Get(context.Background())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	api.missing["settings"] = true
	_, err = repo.Get(context.Background())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSettingsRepository_RoundTrip(t *testing.T) {
	api := newFakeAPI()
	repo := NewSettingsRepository(newTestClient(api))
	ctx := context.Background()

	in := &entity.OrganizationSettings{
		MonthlyBudget:       7000,
		PerRepoDaily:        100,
		PerPRMaximum:        20,
		DefaultReviewType:   "standard",
		AutoIncremental:     false,
		SkipPatterns:        []string{},
		NotificationWebhook: "https://hooks.example.com/x",
		AuthorizedUsers:     []string{"aspenas"},
		AlertThresholds:     entity.AlertThresholds{Daily: 200, Weekly: 1000, Monthly: 2000},
		UpdatedAt:           "2025-06-01T08:30:00Z",
	}
	require.NoError(t, repo.Put(ctx, in))

	stored := api.tables["settings"][entity.SettingsKey]
	assert.IsType(t, &types.AttributeValueMemberL{}, stored["skip_patterns"], "empty sets are not allowed in DynamoDB")
	assert.IsType(t, &types.AttributeValueMemberN{}, stored["alert_daily"])

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7000.0, *got.MonthlyBudget)
	assert.False(t, *got.AutoIncremental)
	require.NotNil(t, got.SkipPatterns)
	assert.Empty(t, got.SkipPatterns)
	assert.Equal(t, []string{"aspenas"}, got.AuthorizedUsers)
	assert.Equal(t, "https://hooks.example.com/x", *got.NotificationWebhook)
	require.NotNil(t, got.AlertThresholds)
	assert.Equal(t, 1000.0, *got.AlertThresholds.Weekly)
	assert.Equal(t, "2025-06-01T08:30:00Z", *got.UpdatedAt)
}

func TestDecodeSettings_NestedThresholdsAndStrings(t *testing.T) {
	p := decodeSettings(item{
		settingsKeyAttr:    &types.AttributeValueMemberS{Value: "global"},
		"monthly_budget":   &types.AttributeValueMemberS{Value: "6500"},
		"auto_incremental": &types.AttributeValueMemberS{Value: "false"},
		"skip_patterns":    &types.AttributeValueMemberSS{Value: []string{"*.md"}},
		"alert_thresholds": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"daily":   &types.AttributeValueMemberN{Value: "300"},
			"monthly": &types.AttributeValueMemberN{Value: "4000"},
		}},
	})

	assert.Equal(t, 6500.0, *p.MonthlyBudget)
	assert.False(t, *p.AutoIncremental)
	assert.Equal(t, []string{"*.md"}, p.SkipPatterns)
	assert.Nil(t, p.PerRepoDaily)
	require.NotNil(t, p.AlertThresholds)
	assert.Equal(t, 300.0, *p.AlertThresholds.Daily)
	assert.Nil(t, p.AlertThresholds.Weekly)
	assert.Equal(t, 4000.0, *p.AlertThresholds.Monthly)
}

func TestIsTableMissing(t *testing.T) {
	assert.True(t, isTableMissing(&types.ResourceNotFoundException{Message: aws.String("gone")}))
	assert.True(t, isTableMissing(fmt.Errorf("scan: %w", &smithy.GenericAPIError{Code: "ResourceNotFoundException"})))
	assert.False(t, isTableMissing(&smithy.GenericAPIError{Code: "AccessDeniedException"}))
	assert.False(t, isTableMissing(fmt.Errorf("timeout")))
}
