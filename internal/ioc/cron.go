package ioc

import (
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/task"
	"github.com/gotomicro/ego/core/econf"
	"github.com/gotomicro/ego/task/ecron"
	"github.com/meoying/dlock-go"
)

func InitCompletionCron(
	campaignRepo repository.CampaignRepository,
	taskRepo repository.TaskRepository,
	entryRepo repository.QueueEntryRepository,
	dclient dlock.Client,
) *task.CompletionCron {
	idle := econf.GetDuration("cron.campaignCompletion.idle")
	if idle <= 0 {
		idle = 72 * time.Hour
	}
	return task.NewCompletionCron(campaignRepo, taskRepo, entryRepo, dclient, idle)
}

func Crons(c *task.CompletionCron) []ecron.Ecron {
	c1 := ecron.Load("cron.campaignCompletion").Build(ecron.WithJob(c.Do))
	return []ecron.Ecron{c1}
}
