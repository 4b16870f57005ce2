package dispatch

import (
	"context"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/gotomicro/ego/core/elog"
	"github.com/sony/gobreaker"
)

type BreakerConfig struct {
	Name        string        `yaml:"name"`
	MaxRequests uint32        `yaml:"maxRequests"`
	Interval    time.Duration `yaml:"interval"`
	Timeout     time.Duration `yaml:"timeout"`
	// 至少这么多请求之后才会按失败率熔断
	MinRequests  uint32  `yaml:"minRequests"`
	FailureRatio float64 `yaml:"failureRatio"`
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:         "email-dispatch",
		MaxRequests:  5,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

// BreakerClient 投递服务持续不可用的时候快速失败，失败会返回 gobreaker.ErrOpenState
type BreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker
}

func NewBreakerClient(client Client, cfg BreakerConfig) *BreakerClient {
	logger := elog.DefaultLogger
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("投递服务熔断状态变化",
				elog.String("name", name),
				elog.String("from", from.String()),
				elog.String("to", to.String()))
		},
	})
	return &BreakerClient{client: client, cb: cb}
}

func (b *BreakerClient) Schedule(ctx context.Context, req domain.DispatchRequest) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.client.Schedule(ctx, req)
	})
	return err
}

func (b *BreakerClient) SendNow(ctx context.Context, entry domain.QueueEntry) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.client.SendNow(ctx, entry)
	})
	return err
}
