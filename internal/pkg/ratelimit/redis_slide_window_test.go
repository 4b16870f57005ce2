package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, interval time.Duration, rate int) (*RedisSlidingWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
	})
	return NewRedisSlidingWindowLimiter(rdb, interval, rate), mr
}

func TestRedisSlidingWindowLimiter_Limit(t *testing.T) {
	t.Parallel()

	limiter, _ := newLimiter(t, time.Minute, 3)
	ctx := t.Context()
	for i := 0; i < 3; i++ {
		limited, err := limiter.Limit(ctx, "account:1")
		require.NoError(t, err)
		assert.False(t, limited)
	}
	limited, err := limiter.Limit(ctx, "account:1")
	require.NoError(t, err)
	assert.True(t, limited)

	// 不同的 key 互不影响
	limited, err = limiter.Limit(ctx, "account:2")
	require.NoError(t, err)
	assert.False(t, limited)
}

func TestRedisSlidingWindowLimiter_WindowSlides(t *testing.T) {
	t.Parallel()

	limiter, _ := newLimiter(t, 50*time.Millisecond, 1)
	ctx := t.Context()
	limited, err := limiter.Limit(ctx, "account:1")
	require.NoError(t, err)
	assert.False(t, limited)

	limited, err = limiter.Limit(ctx, "account:1")
	require.NoError(t, err)
	assert.True(t, limited)

	time.Sleep(80 * time.Millisecond)
	limited, err = limiter.Limit(ctx, "account:1")
	require.NoError(t, err)
	assert.False(t, limited)
}

func TestRedisSlidingWindowLimiter_Error(t *testing.T) {
	t.Parallel()

	limiter, mr := newLimiter(t, time.Minute, 1)
	mr.SetError("mock error")
	_, err := limiter.Limit(t.Context(), "account:1")
	assert.Error(t, err)
}
