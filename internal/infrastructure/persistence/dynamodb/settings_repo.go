package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/domain/repository"
)

// SettingsRepository 设置单例仓储实现，主键 setting_id=global
type SettingsRepository struct {
	client *Client
}

var _ repository.SettingsRepository = (*SettingsRepository)(nil)

// NewSettingsRepository 创建设置仓储
func NewSettingsRepository(client *Client) *SettingsRepository {
	return &SettingsRepository{client: client}
}

// Get 读取单例；记录或表不存在时返回 repository.ErrNotFound
func (r *SettingsRepository) Get(ctx context.Context) (*entity.PartialSettings, error) {
	ctx, span := tracer.Start(ctx, "dynamodb.GetItem")
	defer span.End()

	out, err := r.client.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.client.settingsTable),
		Key: map[string]types.AttributeValue{
			settingsKeyAttr: &types.AttributeValueMemberS{Value: entity.SettingsKey},
		},
	})
	if err != nil {
		if isTableMissing(err) {
			return nil, repository.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, repository.ErrNotFound
	}
	return decodeSettings(out.Item), nil
}

// Put 整体替换单例
func (r *SettingsRepository) Put(ctx context.Context, settings *entity.OrganizationSettings) error {
	ctx, span := tracer.Start(ctx, "dynamodb.PutItem")
	defer span.End()

	if _, err := r.client.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.client.settingsTable),
		Item:      encodeSettings(settings),
	}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}
