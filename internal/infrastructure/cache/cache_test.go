package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/domain/maintenance"
	"cmms/internal/shared/logger"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

type countingDirectory struct {
	names map[uint]string
	calls int
}

func (d *countingDirectory) DisplayName(_ context.Context, userID uint) (string, error) {
	d.calls++
	name, ok := d.names[userID]
	if !ok {
		return "", maintenance.ErrUserNotFound
	}
	return name, nil
}

func TestUserNameCache_ReadThrough(t *testing.T) {
	mr, client := setupTestRedis(t)
	dir := &countingDirectory{names: map[uint]string{7: "Ana"}}
	cache := NewUserNameCache(client, dir, 30*time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	name, err := cache.DisplayName(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ana", name)

	name, err = cache.DisplayName(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ana", name)
	assert.Equal(t, 1, dir.calls)

	ttl := mr.TTL("cmms:user:name:7")
	assert.GreaterOrEqual(t, ttl, 30*time.Minute)
	assert.Less(t, ttl, 35*time.Minute)

	require.NoError(t, cache.Invalidate(ctx, 7))
	_, err = cache.DisplayName(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, dir.calls)
}

func TestUserNameCache_NotFoundIsNotCached(t *testing.T) {
	mr, client := setupTestRedis(t)
	dir := &countingDirectory{names: map[uint]string{}}
	cache := NewUserNameCache(client, dir, time.Minute, logger.NewNopLogger())

	_, err := cache.DisplayName(context.Background(), 9)
	assert.ErrorIs(t, err, maintenance.ErrUserNotFound)
	assert.False(t, mr.Exists("cmms:user:name:9"))
}

func TestUserNameCache_FallsThroughWhenRedisIsDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	dir := &countingDirectory{names: map[uint]string{7: "Ana"}}
	cache := NewUserNameCache(client, dir, time.Minute, logger.NewNopLogger())
	mr.Close()

	name, err := cache.DisplayName(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Ana", name)
}

func TestRedisRunLogStore(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisRunLogStore(client, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Save(ctx, &dto.GenerationResult{
			RunID:        fmt.Sprintf("run-%d", i),
			Trigger:      dto.TriggerScheduled,
			State:        dto.RunStateCompleted,
			CreatedCount: i,
			StartedAt:    time.Date(2025, time.October, 1, i, 0, 0, 0, time.UTC),
		}))
	}

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-4", runs[0].RunID)
	assert.Equal(t, 4, runs[0].CreatedCount)
	assert.Equal(t, "run-2", runs[2].RunID)

	runs, err = store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	runs, err = store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
