package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"cmms/internal/domain/maintenance"
	"cmms/internal/shared/logger"
)

const (
	userNameKeyPrefix = "cmms:user:name:"
	userNameTTLJitter = 5 * time.Minute // spreads expiry of names cached by the same run
)

// UserNameCache decorates a UserDirectory with a Redis read-through cache.
// Generation runs resolve the same responsible users over and over, so
// names are kept for ttl (+ jitter). Cache failures fall through to the
// directory.
type UserNameCache struct {
	client *redis.Client
	next   maintenance.UserDirectory
	ttl    time.Duration
	logger logger.Interface
}

func NewUserNameCache(client *redis.Client, next maintenance.UserDirectory, ttl time.Duration, logger logger.Interface) *UserNameCache {
	return &UserNameCache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *UserNameCache) key(userID uint) string {
	return fmt.Sprintf("%s%d", userNameKeyPrefix, userID)
}

func (c *UserNameCache) DisplayName(ctx context.Context, userID uint) (string, error) {
	key := c.key(userID)

	name, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return name, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Warnw("user name cache read failed", "user_id", userID, "error", err)
	}

	name, err = c.next.DisplayName(ctx, userID)
	if err != nil {
		return "", err
	}

	ttl := c.ttl + rand.N(userNameTTLJitter)
	if err := c.client.Set(ctx, key, name, ttl).Err(); err != nil {
		c.logger.Warnw("user name cache write failed", "user_id", userID, "error", err)
	}
	return name, nil
}

// Invalidate drops a cached name, e.g. after the user was renamed.
func (c *UserNameCache) Invalidate(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate user name: %w", err)
	}
	return nil
}
