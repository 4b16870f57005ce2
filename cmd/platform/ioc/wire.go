//go:build wireinject

package ioc

import (
	"github.com/chimalongy/emailsenderserverless-sub001/internal/ioc"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/ratelimit"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository/cache"
	cacheredis "github.com/chimalongy/emailsenderserverless-sub001/internal/repository/cache/redis"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository/dao"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/allocation"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/campaign"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/dispatch"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/entry"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/ledger"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/reconcile"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/task"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/web"
	"github.com/google/wire"
	"github.com/meoying/dlock-go"
)

var (
	BaseSet = wire.NewSet(
		ioc.InitDB,
		ioc.InitRedisClient,
		ioc.InitRedisCmd,
		ioc.InitDistributedLock,
		ioc.InitIDGenerator,
		ioc.InitMQ,
		ioc.InitRetryConfig,

		cacheredis.NewSentCounter,
		wire.Bind(new(cache.SentCounter), new(*cacheredis.SentCounter)),
	)
	ledgerSvcSet = wire.NewSet(
		ledger.NewService,
		repository.NewAccountRepository,
		dao.NewAccountDAO,
	)
	campaignSvcSet = wire.NewSet(
		campaign.NewService,
		allocation.NewStrategies,
		allocation.NewValidator,
		allocation.NewPlanner,
		repository.NewCampaignRepository,
		dao.NewCampaignDAO,
	)
	taskSvcSet = wire.NewSet(
		task.NewService,
		repository.NewTaskRepository,
		dao.NewTaskDAO,
		ioc.InitCompletionCron,
	)
	entrySvcSet = wire.NewSet(
		newEntryService,
		repository.NewQueueEntryRepository,
		dao.NewQueueEntryDAO,
		ioc.InitDispatchClient,
		ioc.InitManualSendLimiter,
	)
)

func newEntryService(
	repo repository.QueueEntryRepository,
	taskRepo repository.TaskRepository,
	campaignRepo repository.CampaignRepository,
	ledgerSvc ledger.Service,
	client dispatch.Client,
	dclient dlock.Client,
	limiter ratelimit.Limiter,
) entry.Service {
	svc := entry.NewService(repo, taskRepo, campaignRepo, ledgerSvc, client, dclient)
	return entry.NewMetricsService(entry.NewLimitedService(svc, limiter))
}

func InitApp() *ioc.App {
	wire.Build(
		// 基础设施
		BaseSet,

		// --- 服务构建 ---
		ledgerSvcSet,
		campaignSvcSet,
		taskSvcSet,
		entrySvcSet,
		reconcile.NewService,

		// 事件消费者
		ioc.InitDeliveryConsumer,
		ioc.InitRemovalConsumer,
		ioc.InitTasks,

		// 定时任务
		ioc.Crons,

		// HTTP 服务器
		web.NewHandler,
		ioc.InitGinServer,
		wire.Struct(new(ioc.App), "*"),
	)
	return new(ioc.App)
}
