package delivery_test

import (
	"context"
	"testing"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/event/delivery"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/event/removal"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/mqx"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/retry"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository"
	cacheredis "github.com/chimalongy/emailsenderserverless-sub001/internal/repository/cache/redis"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository/dao"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/allocation"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/campaign"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/dispatch"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/entry"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/ledger"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/reconcile"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/task"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/test/ioc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventFlow 任务交给投递服务之后，投递结果和收件人移除都通过消息回到系统里
func TestEventFlow(t *testing.T) {
	db := ioc.InitDBAndTables(t)
	rdb := ioc.InitRedis(t)
	dclient := ioc.InitDistributedLock(rdb)
	q := ioc.InitMQ(t)

	client, err := dispatch.NewMQClient(q)
	require.NoError(t, err)
	accountRepo := repository.NewAccountRepository(dao.NewAccountDAO(db), cacheredis.NewSentCounter(rdb))
	campaignRepo := repository.NewCampaignRepository(dao.NewCampaignDAO(db))
	entryRepo := repository.NewQueueEntryRepository(dao.NewQueueEntryDAO(db))
	taskRepo := repository.NewTaskRepository(dao.NewTaskDAO(db))
	ledgerSvc := ledger.NewService(accountRepo)
	validator := allocation.NewValidator()
	campaignSvc := campaign.NewService(campaignRepo, taskRepo, ledgerSvc,
		allocation.NewPlanner(allocation.NewStrategies(), validator), validator,
		dclient, retry.DefaultConfig())
	entrySvc := entry.NewService(entryRepo, taskRepo, campaignRepo, ledgerSvc, client, dclient)
	taskSvc := task.NewService(taskRepo,
		campaignRepo, entryRepo, entrySvc, client, ioc.InitIDGenerator())
	reconcileSvc := reconcile.NewService(campaignRepo, dclient, retry.DefaultConfig())

	ctx, cancel := context.WithCancel(t.Context())
	t.Cleanup(cancel)
	resultConsumer, err := delivery.NewResultConsumer(entrySvc, q)
	require.NoError(t, err)
	resultConsumer.Start(ctx)
	removalConsumer, err := removal.NewConsumer(reconcileSvc, q)
	require.NoError(t, err)
	removalConsumer.Start(ctx)

	acc, err := ledgerSvc.CreateAccount(ctx, domain.Account{Email: "sender@example.com", DailyLimit: 10, Active: true})
	require.NoError(t, err)
	c, err := campaignSvc.Create(ctx, domain.Campaign{
		Name:       "flow",
		Recipients: []string{"r1@example.com", "r2@example.com", "r3@example.com"},
	})
	require.NoError(t, err)
	_, err = campaignSvc.CommitAllocation(ctx, c.ID, domain.Allocation{{AccountID: acc.ID, Count: 3}})
	require.NoError(t, err)
	tk, err := taskSvc.CreateTask(ctx, domain.Task{
		CampaignID:  c.ID,
		Subject:     "hello",
		ScheduledAt: time.Now().Add(time.Hour).UnixMilli(),
		SendRate:    10,
		Type:        domain.TaskTypeNew,
	})
	require.NoError(t, err)
	require.Equal(t, domain.TaskStatusScheduled, tk.Status)
	entries, err := entrySvc.ListByTask(ctx, tk.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "r2@example.com", entries[1].Recipient)

	resultProducer, err := mqx.NewGeneralProducer[delivery.ResultEvent](q, delivery.TopicName)
	require.NoError(t, err)
	require.NoError(t, resultProducer.Produce(ctx, delivery.ResultEvent{EntryID: entries[0].ID, Success: true}))
	require.NoError(t, resultProducer.Produce(ctx, delivery.ResultEvent{EntryID: entries[1].ID, ErrorMessage: "550 mailbox unavailable"}))

	require.Eventually(t, func() bool {
		e0, er := entrySvc.Get(ctx, entries[0].ID)
		if er != nil || e0.Status != domain.EntryStatusSent {
			return false
		}
		e1, er := entrySvc.Get(ctx, entries[1].ID)
		return er == nil && e1.Status == domain.EntryStatusFailed
	}, 10*time.Second, 100*time.Millisecond)

	snapshot, err := ledgerSvc.Snapshot(ctx, []int64{acc.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot[0].SentToday)

	removalProducer, err := mqx.NewGeneralProducer[removal.RecipientRemovedEvent](q, removal.TopicName)
	require.NoError(t, err)
	// 退信信号里的地址大小写、空白和创建活动时不一样
	require.NoError(t, removalProducer.Produce(ctx, removal.RecipientRemovedEvent{
		CampaignID: c.ID,
		Email:      "  R2@Example.COM ",
		Reason:     "hard_bounce",
	}))
	require.Eventually(t, func() bool {
		cur, er := campaignSvc.Get(ctx, c.ID)
		return er == nil && cur.Allocation.Total() == 2 && !cur.HasRecipient("r2@example.com")
	}, 5*time.Second, 50*time.Millisecond)
	cur, err := campaignSvc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"r2@example.com"}, cur.DeletedRecipients)

	// 发送失败的条目对应的收件人已经移除，不能再重发
	_, err = entrySvc.Resend(ctx, entries[1].ID)
	assert.ErrorIs(t, err, errs.ErrRecipientRemoved)
	e1, err := entrySvc.Get(ctx, entries[1].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryStatusFailed, e1.Status)
}
