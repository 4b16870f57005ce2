package ratelimit

import (
	"context"
	_ "embed"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	//go:embed lua/slide_window.lua
	slidingWindowScript string

	_ Limiter = (*RedisSlidingWindowLimiter)(nil)
)

// RedisSlidingWindowLimiter 基于 Redis zset 的滑动窗口，多个实例共享同一个窗口
type RedisSlidingWindowLimiter struct {
	cmd       redis.Cmdable
	interval  time.Duration
	rate      int
	keyPrefix string
	seq       atomic.Int64
}

func NewRedisSlidingWindowLimiter(cmd redis.Cmdable, interval time.Duration, rate int) *RedisSlidingWindowLimiter {
	return &RedisSlidingWindowLimiter{
		cmd:       cmd,
		interval:  interval,
		rate:      rate,
		keyPrefix: "email:ratelimit:",
	}
}

func (r *RedisSlidingWindowLimiter) Limit(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	// 同一毫秒内的请求也要算成不同的成员
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + strconv.FormatInt(r.seq.Add(1), 10)
	return r.cmd.Eval(ctx, slidingWindowScript,
		[]string{r.keyPrefix + key},
		r.interval.Milliseconds(),
		r.rate,
		now.UnixMilli(),
		member,
	).Bool()
}
