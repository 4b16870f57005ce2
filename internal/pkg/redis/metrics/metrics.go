package metrics

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Hook 统计 Redis 命令的次数和耗时。redis.Nil 不算失败，
// 额度计数器读不到 key 是正常情况
type Hook struct {
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
	dials    *prometheus.CounterVec
}

func NewHook(reg prometheus.Registerer) *Hook {
	h := &Hook{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "email_redis_commands_total",
			Help: "Redis 命令执行次数",
		}, []string{"command", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "email_redis_command_duration_seconds",
			Help:    "Redis 命令耗时（秒），管道按一次计算",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10),
		}, []string{"command"}),
		dials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "email_redis_dials_total",
			Help: "Redis 建立连接次数",
		}, []string{"status"}),
	}
	reg.MustRegister(h.commands, h.duration, h.dials)
	return h
}

func (h *Hook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(cmd.Name(), start, err)
		return err
	}
}

func (h *Hook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		if err == nil {
			for _, cmd := range cmds {
				if cmd.Err() != nil && !errors.Is(cmd.Err(), redis.Nil) {
					err = cmd.Err()
					break
				}
			}
		}
		h.observe("pipeline", start, err)
		return err
	}
}

func (h *Hook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		h.dials.WithLabelValues(statusOf(err)).Inc()
		return conn, err
	}
}

func (h *Hook) observe(name string, start time.Time, err error) {
	h.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	h.commands.WithLabelValues(name, statusOf(err)).Inc()
}

func statusOf(err error) string {
	if err != nil && !errors.Is(err, redis.Nil) {
		return "error"
	}
	return "success"
}
