package persistence

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claude-review-dashboard/internal/config"
	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/domain/repository"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "sqlite"}}

	_, err := Open(context.Background(), cfg)
	assert.ErrorContains(t, err, "unsupported storage driver")
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := &config.Config{Storage: config.StorageConfig{
		Driver: config.DriverRedis,
		Redis:  config.RedisConfig{Host: mr.Host(), Port: port, KeyPrefix: "dash"},
	}}

	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Equal(t, config.DriverRedis, s.Driver)
	require.NotNil(t, s.Redis)
	require.NoError(t, s.Health.Ping(context.Background()))

	_, err = s.Settings.Get(context.Background())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.Usage.Put(context.Background(), &entity.UsageRecord{
		ReviewID:   "r-1",
		Timestamp:  "2025-01-01T12:00:00Z",
		Repository: "api",
		ReviewType: entity.ReviewTypeStandard,
	}))
	has, err := s.Usage.HasAny(context.Background())
	require.NoError(t, err)
	assert.True(t, has)
	assert.True(t, mr.Exists("dash:usage"))
}

func TestOpen_RedisUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	mr.Close()

	cfg := &config.Config{Storage: config.StorageConfig{
		Driver: config.DriverRedis,
		Redis:  config.RedisConfig{Host: mr.Host(), Port: port},
	}}

	_, err = Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestStorage_CloseReturnsFirstError(t *testing.T) {
	calls := 0
	s := &Storage{closers: []func() error{
		func() error { calls++; return errors.New("first") },
		func() error { calls++; return errors.New("second") },
	}}

	assert.EqualError(t, s.Close(), "first")
	assert.Equal(t, 2, calls)
}
