package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLimiter(client, limit, window), mr
}

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := l.Allow(ctx, Key("user-1", "compute-score"))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := l.Allow(ctx, Key("user-1", "compute-score"))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, time.Minute, d.RetryAfter)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	d, err := l.Allow(ctx, Key("user-1", "health-scorer"))
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = l.Allow(ctx, Key("user-2", "health-scorer"))
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = l.Allow(ctx, Key("user-1", "workflow-trigger"))
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLimiter_WindowResets(t *testing.T) {
	l, mr := newTestLimiter(t, 1, 10*time.Second)
	ctx := context.Background()

	_, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	d, _ := l.Allow(ctx, "k")
	assert.False(t, d.Allowed)

	mr.FastForward(11 * time.Second)

	d, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l, mr := newTestLimiter(t, 0, time.Minute)
	d, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.False(t, mr.Exists("ratelimit:k"))
}

func TestLimiter_RedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	l := NewLimiter(client, 5, time.Minute)

	_, err = l.Allow(context.Background(), "k")
	assert.Error(t, err)
}
