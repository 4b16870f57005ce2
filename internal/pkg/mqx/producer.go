package mqx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ecodeclub/mq-api"
)

// GeneralProducer 把事件序列化成 JSON 之后发到固定的 topic
type GeneralProducer[T any] struct {
	producer mq.Producer
	topic    string
}

func NewGeneralProducer[T any](q mq.MQ, topic string) (*GeneralProducer[T], error) {
	p, err := q.Producer(topic)
	if err != nil {
		return nil, fmt.Errorf("创建生产者失败 topic %s: %w", topic, err)
	}
	return &GeneralProducer[T]{producer: p, topic: topic}, nil
}

func (p *GeneralProducer[T]) Produce(ctx context.Context, evt T) error {
	val, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = p.producer.Produce(ctx, &mq.Message{Topic: p.topic, Value: val})
	return err
}
