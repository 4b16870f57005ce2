package main

import (
	"context"

	"github.com/chimalongy/emailsenderserverless-sub001/cmd/platform/ioc"
	"github.com/gotomicro/ego"
	"github.com/gotomicro/ego/core/elog"
	"github.com/gotomicro/ego/server/egovernor"
)

func main() {
	// 消费者这些后台任务在应用退出时一起停掉
	ctx, cancel := context.WithCancel(context.Background())
	egoApp := ego.New(ego.WithBeforeStopClean(func() error {
		cancel()
		return nil
	}))

	app := ioc.InitApp()
	for _, t := range app.Tasks {
		t.Start(ctx)
	}

	if err := egoApp.
		Serve(
			app.Web,
			// 暴露 /metrics
			egovernor.Load("server.governor").Build(),
		).
		Cron(app.Crons...).
		Run(); err != nil {
		elog.Panic("startup", elog.FieldErr(err))
	}
}
