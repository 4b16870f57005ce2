package dispatch

import (
	"context"
	"fmt"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/mqx"
	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/mq-api"
)

const defaultBatchSize = 200

// MQClient 通过消息队列把请求交给投递服务
type MQClient struct {
	scheduleProducer *mqx.GeneralProducer[ScheduleEvent]
	sendNowProducer  *mqx.GeneralProducer[SendNowEvent]
	batchSize        int
}

func NewMQClient(q mq.MQ) (*MQClient, error) {
	sp, err := mqx.NewGeneralProducer[ScheduleEvent](q, ScheduleTopic)
	if err != nil {
		return nil, err
	}
	np, err := mqx.NewGeneralProducer[SendNowEvent](q, SendNowTopic)
	if err != nil {
		return nil, err
	}
	return &MQClient{
		scheduleProducer: sp,
		sendNowProducer:  np,
		batchSize:        defaultBatchSize,
	}, nil
}

func (c *MQClient) Schedule(ctx context.Context, req domain.DispatchRequest) error {
	total := len(req.Entries)
	for offset := 0; offset < total; offset += c.batchSize {
		end := min(offset+c.batchSize, total)
		evt := ScheduleEvent{
			TaskID:      req.TaskID,
			ScheduledAt: req.ScheduledAt,
			SendRate:    req.SendRate,
			Offset:      offset,
			Total:       total,
			Entries: slice.Map(req.Entries[offset:end], func(_ int, src domain.QueueEntry) EntryMessage {
				return newEntryMessage(src)
			}),
		}
		if err := c.scheduleProducer.Produce(ctx, evt); err != nil {
			return fmt.Errorf("发送任务调度消息失败 taskID %d offset %d: %w", req.TaskID, offset, err)
		}
	}
	return nil
}

func (c *MQClient) SendNow(ctx context.Context, entry domain.QueueEntry) error {
	return c.sendNowProducer.Produce(ctx, SendNowEvent{Entry: newEntryMessage(entry)})
}
