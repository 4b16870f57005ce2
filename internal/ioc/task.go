package ioc

import (
	"context"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/event/delivery"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/event/removal"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/entry"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/reconcile"
	"github.com/ecodeclub/mq-api"
)

// Task 随应用一起启动的后台任务，ctx 取消后退出
type Task interface {
	Start(ctx context.Context)
}

func InitDeliveryConsumer(svc entry.Service, q mq.MQ) *delivery.ResultConsumer {
	c, err := delivery.NewResultConsumer(svc, q)
	if err != nil {
		panic(err)
	}
	return c
}

func InitRemovalConsumer(svc reconcile.Service, q mq.MQ) *removal.Consumer {
	c, err := removal.NewConsumer(svc, q)
	if err != nil {
		panic(err)
	}
	return c
}

func InitTasks(c1 *delivery.ResultConsumer, c2 *removal.Consumer) []Task {
	return []Task{c1, c2}
}
