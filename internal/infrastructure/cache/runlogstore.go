package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"cmms/internal/application/preventive/dto"
)

const runLogKey = "cmms:generation:runs"

// RedisRunLogStore keeps the newest generation runs in a capped Redis list,
// newest first.
type RedisRunLogStore struct {
	client  *redis.Client
	key     string
	maxSize int
}

func NewRedisRunLogStore(client *redis.Client, maxSize int) *RedisRunLogStore {
	return &RedisRunLogStore{
		client:  client,
		key:     runLogKey,
		maxSize: maxSize,
	}
}

func (s *RedisRunLogStore) Save(ctx context.Context, result *dto.GenerationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal generation run: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, data)
	if s.maxSize > 0 {
		pipe.LTrim(ctx, s.key, 0, int64(s.maxSize-1))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store generation run: %w", err)
	}
	return nil
}

func (s *RedisRunLogStore) Recent(ctx context.Context, limit int) ([]*dto.GenerationResult, error) {
	if limit <= 0 {
		return []*dto.GenerationResult{}, nil
	}

	raw, err := s.client.LRange(ctx, s.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read generation runs: %w", err)
	}

	out := make([]*dto.GenerationResult, 0, len(raw))
	for _, item := range raw {
		var result dto.GenerationResult
		if err := json.Unmarshal([]byte(item), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal generation run: %w", err)
		}
		out = append(out, &result)
	}
	return out, nil
}
