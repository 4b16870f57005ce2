package removal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/reconcile"
	"github.com/ecodeclub/mq-api"
	"github.com/gotomicro/ego/core/elog"
)

type Consumer struct {
	svc      reconcile.Service
	consumer mq.Consumer
	logger   *elog.Component
}

func NewConsumer(svc reconcile.Service, q mq.MQ) (*Consumer, error) {
	const groupID = "email_scheduler"
	consumer, err := q.Consumer(TopicName, groupID)
	if err != nil {
		return nil, err
	}
	return &Consumer{
		svc:      svc,
		consumer: consumer,
		logger:   elog.DefaultLogger,
	}, nil
}

func (c *Consumer) Start(ctx context.Context) {
	go func() {
		for ctx.Err() == nil {
			er := c.Consume(ctx)
			if er != nil {
				c.logger.Error("消费收件人移除事件失败", elog.FieldErr(er))
			}
		}
	}()
}

// Consume 同一个活动的移除必须串行，所以一条一条处理
func (c *Consumer) Consume(ctx context.Context) error {
	msg, err := c.consumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("获取消息失败: %w", err)
	}

	var evt RecipientRemovedEvent
	if err = json.Unmarshal(msg.Value, &evt); err != nil {
		c.logger.Warn("解析消息失败",
			elog.FieldErr(err),
			elog.Any("msg", msg.Value))
		return nil
	}

	res, err := c.svc.RemoveRecipient(ctx, evt.CampaignID, evt.Email)
	switch {
	case err == nil:
		c.logger.Info("收件人已移除",
			elog.Int64("campaignID", evt.CampaignID),
			elog.String("email", evt.Email),
			elog.String("reason", evt.Reason),
			elog.Int64("owner", res.Owner))
		return nil
	case errors.Is(err, errs.ErrRecipientNotFound):
		// 重复的事件
		c.logger.Info("收件人已经不在活动里",
			elog.Int64("campaignID", evt.CampaignID),
			elog.String("email", evt.Email))
		return nil
	default:
		return fmt.Errorf("移除收件人失败 campaignID %d: %w", evt.CampaignID, err)
	}
}
