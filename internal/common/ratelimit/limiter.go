// internal/common/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a fixed-window request counter shared through Redis.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewLimiter(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:",
	}
}

// Allow counts one request for key in the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l.limit <= 0 {
		return Decision{Allowed: true, Limit: l.limit}, nil
	}

	redisKey := l.prefix + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	d := Decision{Limit: l.limit, Remaining: l.limit - int(count)}
	if d.Remaining >= 0 {
		d.Allowed = true
		return d, nil
	}

	d.Remaining = 0
	ttl, err := l.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl < 0 {
		// key lost its expiry; put it back so the window can close
		l.client.Expire(ctx, redisKey, l.window)
		ttl = l.window
	}
	d.RetryAfter = ttl
	return d, nil
}

// Key builds the per-caller, per-function key.
func Key(userID, function string) string {
	return function + ":" + userID
}
