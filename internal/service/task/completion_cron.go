package task

import (
	"context"
	"errors"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/lockx"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository"
	"github.com/gotomicro/ego/core/elog"
	"github.com/meoying/dlock-go"
)

const completionLockKey = "email:lock:cron:campaign_completion"

// CompletionCron 把已经没有待发送条目、并且闲置了一段时间的活动标记为 completed
type CompletionCron struct {
	campaignRepo repository.CampaignRepository
	taskRepo     repository.TaskRepository
	entryRepo    repository.QueueEntryRepository
	guard        *lockx.Guard
	// 最后一个任务创建之后至少过了这么久，给跟进邮件留时间
	idle      time.Duration
	batchSize int
	logger    *elog.Component
}

func NewCompletionCron(
	campaignRepo repository.CampaignRepository,
	taskRepo repository.TaskRepository,
	entryRepo repository.QueueEntryRepository,
	dclient dlock.Client,
	idle time.Duration,
) *CompletionCron {
	return &CompletionCron{
		campaignRepo: campaignRepo,
		taskRepo:     taskRepo,
		entryRepo:    entryRepo,
		guard:        lockx.NewGuard(dclient, time.Minute, time.Second),
		idle:         idle,
		batchSize:    10,
		logger:       elog.DefaultLogger,
	}
}

func (c *CompletionCron) Do(ctx context.Context) error {
	err := c.guard.Do(ctx, completionLockKey, c.run)
	if errors.Is(err, lockx.ErrLockNotAcquired) {
		// 别的实例正在执行
		c.logger.Info("没有抢到活动完成任务的锁，跳过本轮")
		return nil
	}
	return err
}

func (c *CompletionCron) run(ctx context.Context) error {
	offset := 0
	for {
		cnt, completed, err := c.oneLoop(ctx, offset)
		if err != nil {
			c.logger.Error("查找进行中的活动失败", elog.FieldErr(err))
			return err
		}
		if cnt < c.batchSize {
			return nil
		}
		// 已经完成的活动不会再出现在下一页
		offset += cnt - completed
	}
}

func (c *CompletionCron) oneLoop(ctx context.Context, offset int) (int, int, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*15)
	defer cancel()
	cs, err := c.campaignRepo.FindByStatus(ctx, domain.CampaignStatusActive, offset, c.batchSize)
	if err != nil {
		return 0, 0, err
	}
	completed := 0
	for _, cp := range cs {
		done, err := c.tryComplete(ctx, cp)
		if err != nil {
			c.logger.Warn("检查活动是否完成失败",
				elog.Int64("campaignID", cp.ID),
				elog.FieldErr(err))
			continue
		}
		if done {
			completed++
		}
	}
	return len(cs), completed, nil
}

func (c *CompletionCron) tryComplete(ctx context.Context, cp domain.Campaign) (bool, error) {
	tasks, err := c.taskRepo.ListByCampaign(ctx, cp.ID)
	if err != nil {
		return false, err
	}
	var latest int64
	for _, t := range tasks {
		latest = max(latest, t.Ctime)
	}
	if time.Since(time.UnixMilli(latest)) < c.idle {
		return false, nil
	}
	cnt, err := c.entryRepo.CountByCampaignAndStatus(ctx, cp.ID, domain.EntryStatusPending, domain.EntryStatusScheduled)
	if err != nil || cnt > 0 {
		return false, err
	}
	if err = c.campaignRepo.CASStatus(ctx, cp.ID, domain.CampaignStatusActive, domain.CampaignStatusCompleted); err != nil {
		return false, err
	}
	c.logger.Info("活动已完成", elog.Int64("campaignID", cp.ID))
	return true, nil
}
