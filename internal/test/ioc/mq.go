package ioc

import (
	"context"
	"testing"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/event/delivery"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/event/removal"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/dispatch"
	"github.com/ecodeclub/mq-api"
	"github.com/ecodeclub/mq-api/memory"
)

// InitMQ 用内存实现替换 Kafka，方便测试
func InitMQ(t testing.TB) mq.MQ {
	topics := []string{
		dispatch.ScheduleTopic,
		dispatch.SendNowTopic,
		delivery.TopicName,
		removal.TopicName,
	}
	q := memory.NewMQ()
	for _, name := range topics {
		if err := q.CreateTopic(context.Background(), name, 1); err != nil {
			t.Fatalf("创建 topic 失败: %v", err)
		}
	}
	return q
}
