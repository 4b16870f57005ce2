package ioc

import (
	"context"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/event/delivery"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/event/removal"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/retry"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/dispatch"
	"github.com/ecodeclub/mq-api"
	"github.com/ecodeclub/mq-api/kafka"
	"github.com/gotomicro/ego/core/econf"
	"github.com/gotomicro/ego/core/elog"
)

func InitMQ() mq.MQ {
	type Topic struct {
		Name       string `yaml:"name"`
		Partitions int    `yaml:"partitions"`
	}
	type Config struct {
		Network      string   `yaml:"network"`
		Addresses    []string `yaml:"addresses"`
		// 只有在 Kafka 里还没有这些 topic 的时候才需要打开
		CreateTopics bool     `yaml:"createTopics"`
		Topics       []Topic  `yaml:"topics"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("mq", &cfg); err != nil {
		panic(err)
	}
	q, err := kafka.NewMQ(cfg.Network, cfg.Addresses)
	if err != nil {
		panic(err)
	}
	if !cfg.CreateTopics {
		return q
	}
	if len(cfg.Topics) == 0 {
		for _, name := range []string{dispatch.ScheduleTopic, dispatch.SendNowTopic, delivery.TopicName, removal.TopicName} {
			cfg.Topics = append(cfg.Topics, Topic{Name: name, Partitions: 1})
		}
	}
	// Kafka 刚启动的时候可能还连不上
	strategy, err := retry.NewRetry(retry.Config{
		Type:          "fixed",
		FixedInterval: &retry.FixedIntervalConfig{MaxRetries: 10, Interval: 1000},
	})
	if err != nil {
		panic(err)
	}
	for _, t := range cfg.Topics {
		for {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err = q.CreateTopic(ctx, t.Name, t.Partitions)
			cancel()
			if err == nil {
				break
			}
			next, ok := strategy.Next()
			if !ok {
				panic(err)
			}
			elog.DefaultLogger.Warn("创建 topic 失败，稍后重试",
				elog.String("topic", t.Name),
				elog.FieldErr(err))
			time.Sleep(next)
		}
	}
	return q
}
