package metrics

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHook(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
	})
	hook := NewHook(prometheus.NewRegistry())
	rdb.AddHook(hook)

	ctx := t.Context()
	require.NoError(t, rdb.Set(ctx, "k", "1", 0).Err())
	// key 不存在不算失败
	assert.ErrorIs(t, rdb.Get(ctx, "missing").Err(), redis.Nil)
	_, err := rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, "k")
		p.Incr(ctx, "k")
		return nil
	})
	require.NoError(t, err)
	mr.SetError("mock error")
	assert.Error(t, rdb.Get(ctx, "k").Err())

	assert.InDelta(t, 1, testutil.ToFloat64(hook.commands.WithLabelValues("set", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(hook.commands.WithLabelValues("get", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(hook.commands.WithLabelValues("pipeline", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(hook.commands.WithLabelValues("get", "error")), 0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(hook.dials.WithLabelValues("success")), float64(1))
}
