package entry

import (
	"context"
	"errors"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsService 为状态机添加指标收集的装饰器
type MetricsService struct {
	Service
	opDuration  *prometheus.SummaryVec
	statusTotal *prometheus.CounterVec
}

func NewMetricsService(svc Service) *MetricsService {
	opDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "email_entry_op_duration_seconds",
			Help:       "队列条目操作耗时统计（秒）",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
			MaxAge:     time.Minute * 5,
		},
		[]string{"op", "result"},
	)
	statusTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_entry_status_total",
			Help: "操作完成后队列条目所处状态的统计",
		},
		[]string{"op", "status"},
	)
	return &MetricsService{
		Service:     svc,
		opDuration:  register(opDuration),
		statusTotal: register(statusTotal),
	}
}

func (m *MetricsService) HandleDelivery(ctx context.Context, res domain.DeliveryResult) (domain.QueueEntry, error) {
	return m.observe("handle_delivery", func() (domain.QueueEntry, error) {
		return m.Service.HandleDelivery(ctx, res)
	})
}

func (m *MetricsService) SendNow(ctx context.Context, id int64) (domain.QueueEntry, error) {
	return m.observe("send_now", func() (domain.QueueEntry, error) {
		return m.Service.SendNow(ctx, id)
	})
}

func (m *MetricsService) Resend(ctx context.Context, id int64) (domain.QueueEntry, error) {
	return m.observe("resend", func() (domain.QueueEntry, error) {
		return m.Service.Resend(ctx, id)
	})
}

func (m *MetricsService) observe(op string, fn func() (domain.QueueEntry, error)) (domain.QueueEntry, error) {
	start := time.Now()
	e, err := fn()
	result := "success"
	if err != nil {
		result = "error"
	} else {
		m.statusTotal.WithLabelValues(op, string(e.Status)).Inc()
	}
	m.opDuration.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
	return e, err
}

// register 同名指标已经注册过就复用已有的
func register[T prometheus.Collector](c T) T {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
