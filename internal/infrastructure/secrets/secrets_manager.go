// Package secrets 提供 AWS Secrets Manager 密钥读取
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"claude-review-dashboard/pkg/logger"
	"claude-review-dashboard/pkg/tracer"
)

// API Secrets Manager 客户端接口
type API interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Manager 带缓存的密钥读取器
type Manager struct {
	api API
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// NewManager 基于 AWS 配置创建密钥读取器
func NewManager(awsCfg aws.Config, ttl time.Duration) *Manager {
	return NewManagerWithAPI(secretsmanager.NewFromConfig(awsCfg), ttl)
}

// NewManagerWithAPI 使用自定义客户端创建密钥读取器
func NewManagerWithAPI(api API, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Manager{
		api:   api,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cacheEntry),
	}
}

// GetSecret 读取字符串密钥。
// JSON 对象形式的密钥取 token 或 value 字段，其余情况返回原始字符串。
func (m *Manager) GetSecret(ctx context.Context, id string) (string, error) {
	m.mu.RLock()
	entry, ok := m.cache[id]
	m.mu.RUnlock()
	if ok && m.now().Before(entry.expiresAt) {
		return entry.value, nil
	}

	ctx, span := tracer.Start(ctx, "secrets.GetSecret")
	defer span.End()

	out, err := m.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to get secret %s: %w", mask(id), err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", mask(id))
	}

	value := extract(*out.SecretString)
	if value == "" {
		return "", fmt.Errorf("secret %s is empty", mask(id))
	}

	m.mu.Lock()
	m.cache[id] = cacheEntry{value: value, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()

	logger.Debug(ctx, "secret fetched", "secret_id", mask(id))
	return value, nil
}

func extract(raw string) string {
	raw = strings.TrimSpace(raw)
	var fields map[string]string
	if err := json.Unmarshal([]byte(raw), &fields); err == nil {
		for _, key := range []string{"token", "value"} {
			if v := strings.TrimSpace(fields[key]); v != "" {
				return v
			}
		}
		return ""
	}
	return raw
}

// mask 日志中只保留密钥 ID 的末尾
func mask(id string) string {
	if len(id) <= 8 {
		return id
	}
	return "..." + id[len(id)-8:]
}
