// internal/health/cache.go
package health

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "startup-scoring/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, startupID string) (*Score, bool, error)
	Set(ctx context.Context, startupID string, score *Score) error
}

// RedisCache keeps the latest computed score per startup for ttl.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(startupID string) string {
	return "health:score:" + startupID
}

func (c *RedisCache) Get(ctx context.Context, startupID string) (*Score, bool, error) {
	val, err := c.client.Get(ctx, cacheKey(startupID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.NewCacheUnavailableError(err)
	}

	var score Score
	if err := json.Unmarshal([]byte(val), &score); err != nil {
		// treat a corrupt entry as a miss
		return nil, false, nil
	}
	return &score, true, nil
}

func (c *RedisCache) Set(ctx context.Context, startupID string, score *Score) error {
	data, err := json.Marshal(score)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := c.client.Set(ctx, cacheKey(startupID), data, c.ttl).Err(); err != nil {
		return apperrors.NewCacheUnavailableError(err)
	}
	return nil
}
