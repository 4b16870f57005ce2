package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/entry"
	"github.com/ecodeclub/mq-api"
	"github.com/gotomicro/ego/core/elog"
)

type ResultConsumer struct {
	svc      entry.Service
	consumer mq.Consumer
	msgCh    <-chan *mq.Message

	batchSize    int
	batchTimeout time.Duration

	// 处理一批结果的超时时间，不受停机信号影响
	handleTimeout time.Duration
	logger        *elog.Component
}

func NewResultConsumer(svc entry.Service, q mq.MQ) (*ResultConsumer, error) {
	const groupID = "email_scheduler"
	consumer, err := q.Consumer(TopicName, groupID)
	if err != nil {
		return nil, err
	}
	return &ResultConsumer{
		svc:          svc,
		consumer:     consumer,
		batchSize:     50,
		batchTimeout:  3 * time.Second,
		handleTimeout: 10 * time.Second,
		logger:        elog.DefaultLogger,
	}, nil
}

func (c *ResultConsumer) Start(ctx context.Context) {
	go func() {
		for ctx.Err() == nil {
			er := c.Consume(ctx)
			if er != nil {
				c.logger.Error("消费发送结果事件失败", elog.FieldErr(er))
			}
		}
	}()
}

func (c *ResultConsumer) Consume(ctx context.Context) error {
	if c.msgCh == nil {
		msgCh, err := c.consumer.ConsumeChan(ctx)
		if err != nil {
			return fmt.Errorf("获取消息失败: %w", err)
		}
		c.msgCh = msgCh
	}

	timer := time.NewTimer(c.batchTimeout)
	defer timer.Stop()

	results := make([]domain.DeliveryResult, 0, c.batchSize)
CollectBatch:
	for {
		select {
		case msg, ok := <-c.msgCh:
			if !ok {
				break CollectBatch
			}
			var evt ResultEvent
			if err := json.Unmarshal(msg.Value, &evt); err != nil {
				c.logger.Warn("解析消息失败",
					elog.FieldErr(err),
					elog.Any("msg", msg.Value))
				continue
			}
			results = append(results, domain.DeliveryResult{
				EntryID:      evt.EntryID,
				Success:      evt.Success,
				ErrorMessage: evt.ErrorMessage,
			})
			if len(results) == c.batchSize {
				break CollectBatch
			}
		case <-timer.C:
			break CollectBatch
		case <-ctx.Done():
			break CollectBatch
		}
	}

	// 停机时 ctx 已经被取消，已经取出来的结果还是要落库，否则条目会一直停在 scheduled
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.handleTimeout)
	defer cancel()
	for _, res := range results {
		_, err := c.svc.HandleDelivery(hctx, res)
		switch {
		case err == nil:
		case errors.Is(err, errs.ErrEntryNotFound), errors.Is(err, errs.ErrInvalidTransition):
			// 重试也不会成功，丢弃
			c.logger.Warn("丢弃无法处理的发送结果",
				elog.Int64("entryID", res.EntryID),
				elog.FieldErr(err))
		default:
			c.logger.Error("处理发送结果失败",
				elog.Int64("entryID", res.EntryID),
				elog.Any("result", res),
				elog.FieldErr(err))
		}
	}
	return nil
}
