package campaign

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/lockx"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/retry"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/allocation"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/ledger"
	"github.com/gotomicro/ego/core/elog"
	"github.com/meoying/dlock-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	lockExpiration  = 30 * time.Second
	lockWaitTimeout = 3 * time.Second
)

// LockKey 分配提交和收件人移除共用这把锁
func LockKey(campaignID int64) string {
	return fmt.Sprintf("email:lock:campaign:%d", campaignID)
}

// PlanRequest 计算分配计划
type PlanRequest struct {
	CampaignID int64
	Strategy   domain.AllocationStrategy
	// AccountIDs 目标账号，为空表示所有启用的账号
	AccountIDs []int64
	Manual     domain.Allocation
	// Incremental 在已有分配的基础上追加，否则从零开始重新分配
	Incremental bool
}

type Service interface {
	Create(ctx context.Context, c domain.Campaign) (domain.Campaign, error)
	Get(ctx context.Context, id int64) (domain.Campaign, error)
	// Plan 只计算不落库
	Plan(ctx context.Context, req PlanRequest) (domain.AllocationPlan, error)
	// CommitAllocation 用最新的额度快照重新校验之后保存分配结果，并预占账号额度。
	// 活动一旦创建了发送任务，分配就固定下来，返回 errs.ErrAllocationFrozen
	CommitAllocation(ctx context.Context, id int64, alloc domain.Allocation) (domain.Campaign, error)
	UpdateStatus(ctx context.Context, id int64, status domain.CampaignStatus) error
}

type service struct {
	repo      repository.CampaignRepository
	taskRepo  repository.TaskRepository
	ledger    ledger.Service
	planner   allocation.Planner
	validator *allocation.Validator
	guard     *lockx.Guard
	retryCfg  retry.Config
	tracer    trace.Tracer
	logger    *elog.Component
}

func NewService(
	repo repository.CampaignRepository,
	taskRepo repository.TaskRepository,
	ledgerSvc ledger.Service,
	planner allocation.Planner,
	validator *allocation.Validator,
	dclient dlock.Client,
	retryCfg retry.Config,
) Service {
	return &service{
		repo:      repo,
		taskRepo:  taskRepo,
		ledger:    ledgerSvc,
		planner:   planner,
		validator: validator,
		guard:     lockx.NewGuard(dclient, lockExpiration, lockWaitTimeout),
		retryCfg:  retryCfg,
		tracer:    otel.Tracer("email-scheduler/campaign"),
		logger:    elog.DefaultLogger,
	}
}

func (s *service) Create(ctx context.Context, c domain.Campaign) (domain.Campaign, error) {
	if err := c.Validate(); err != nil {
		return domain.Campaign{}, err
	}
	c.Status = domain.CampaignStatusDraft
	c.Allocation = domain.Allocation{}
	c.DeletedRecipients = []string{}
	return s.repo.Create(ctx, c)
}

func (s *service) Get(ctx context.Context, id int64) (domain.Campaign, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Plan(ctx context.Context, req PlanRequest) (domain.AllocationPlan, error) {
	ctx, span := s.tracer.Start(ctx, "Campaign.Plan",
		trace.WithAttributes(
			attribute.String("campaign.id", strconv.FormatInt(req.CampaignID, 10)),
			attribute.String("allocation.strategy", string(req.Strategy)),
		))
	defer span.End()

	plan, err := s.plan(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.AllocationPlan{}, err
	}
	span.SetAttributes(attribute.Int("allocation.shortfall", plan.Shortfall))
	if plan.Shortfall > 0 {
		s.logger.Warn("可用额度不足，分配计划有缺口",
			elog.Int64("campaignID", req.CampaignID),
			elog.String("strategy", string(req.Strategy)),
			elog.Int("requested", plan.Requested),
			elog.Int("allocated", plan.Allocated),
			elog.Int("shortfall", plan.Shortfall))
	}
	return plan, nil
}

func (s *service) plan(ctx context.Context, req PlanRequest) (domain.AllocationPlan, error) {
	if !req.Strategy.IsValid() {
		return domain.AllocationPlan{}, fmt.Errorf("%w: 无效的分配策略 %q", errs.ErrInvalidParameter, req.Strategy)
	}
	c, err := s.repo.GetByID(ctx, req.CampaignID)
	if err != nil {
		return domain.AllocationPlan{}, err
	}

	ids := req.AccountIDs
	if req.Strategy == domain.AllocationStrategyManual && len(ids) == 0 {
		ids = req.Manual.AccountIDs()
	}
	accounts, err := s.ledger.Snapshot(ctx, ids)
	if err != nil {
		return domain.AllocationPlan{}, err
	}
	if req.Strategy != domain.AllocationStrategyManual {
		if err = checkFound(req.AccountIDs, accounts); err != nil {
			return domain.AllocationPlan{}, err
		}
	}
	releaseOwn(accounts, c.Allocation)

	var existing domain.Allocation
	if req.Incremental {
		existing = c.Allocation
	}
	return s.planner.Plan(allocation.PlanRequest{
		RecipientCount: len(c.Recipients),
		Accounts:       accounts,
		Strategy:       req.Strategy,
		Existing:       existing,
		Manual:         req.Manual,
	})
}

func (s *service) CommitAllocation(ctx context.Context, id int64, alloc domain.Allocation) (domain.Campaign, error) {
	ctx, span := s.tracer.Start(ctx, "Campaign.CommitAllocation",
		trace.WithAttributes(
			attribute.String("campaign.id", strconv.FormatInt(id, 10)),
			attribute.Int("allocation.total", alloc.Total()),
		))
	defer span.End()

	var res domain.Campaign
	err := s.guard.Do(ctx, LockKey(id), func(ctx context.Context) error {
		var err error
		res, err = s.commitWithRetry(ctx, id, alloc)
		return err
	})
	if errors.Is(err, lockx.ErrLockNotAcquired) {
		err = fmt.Errorf("%w: CampaignID = %d, %w", errs.ErrAllocationConflict, id, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Campaign{}, err
	}
	return res, nil
}

// commitWithRetry 账号额度被别的活动并发修改时，重新读取快照再试一次
func (s *service) commitWithRetry(ctx context.Context, id int64, alloc domain.Allocation) (domain.Campaign, error) {
	strategy, err := retry.NewRetry(s.retryCfg)
	if err != nil {
		return domain.Campaign{}, err
	}
	for {
		c, err := s.commit(ctx, id, alloc)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, errs.ErrAllocationConflict) {
			return domain.Campaign{}, err
		}
		next, ok := strategy.Next()
		if !ok {
			return domain.Campaign{}, fmt.Errorf("%w: 额度被并发占用，重试次数耗尽 CampaignID = %d", errs.ErrCapacityExceeded, id)
		}
		s.logger.Warn("提交分配冲突，准备重试",
			elog.Int64("campaignID", id),
			elog.FieldErr(err))
		select {
		case <-ctx.Done():
			return domain.Campaign{}, ctx.Err()
		case <-time.After(next):
		}
	}
}

func (s *service) commit(ctx context.Context, id int64, alloc domain.Allocation) (domain.Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	if !c.Status.AcceptsTasks() {
		return domain.Campaign{}, fmt.Errorf("%w: 活动状态 %s 不允许修改分配", errs.ErrInvalidParameter, c.Status)
	}
	// 已有的队列条目是按旧分配展开的，对账回放必须用同一份分配
	tasks, err := s.taskRepo.ListByCampaign(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	if len(tasks) > 0 {
		return domain.Campaign{}, fmt.Errorf("%w: CampaignID = %d, 任务数 %d", errs.ErrAllocationFrozen, id, len(tasks))
	}

	// 旧分配涉及的账号也要读出来，它们的预占额度要释放
	ids := slices.Clone(alloc.AccountIDs())
	for _, aid := range c.Allocation.AccountIDs() {
		if !slices.Contains(ids, aid) {
			ids = append(ids, aid)
		}
	}
	accounts, err := s.ledger.Snapshot(ctx, ids)
	if err != nil {
		return domain.Campaign{}, err
	}
	releaseOwn(accounts, c.Allocation)
	if err = s.validator.Validate(alloc, len(c.Recipients), accounts); err != nil {
		return domain.Campaign{}, err
	}

	for i := range accounts {
		accounts[i].Reserved += alloc.CountOf(accounts[i].ID)
	}
	c.Allocation = alloc.Compact()
	if err = s.repo.CommitAllocation(ctx, c, accounts); err != nil {
		return domain.Campaign{}, err
	}
	c.Version++
	return c, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status domain.CampaignStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: Status = %q", errs.ErrInvalidParameter, status)
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !c.Status.CanTransitTo(status) {
		return fmt.Errorf("%w: 活动状态不能从 %s 变为 %s", errs.ErrInvalidParameter, c.Status, status)
	}
	return s.repo.CASStatus(ctx, id, c.Status, status)
}

// releaseOwn 快照里的预占额度包含了这个活动自己的分配，重新分配前先把它扣掉
func releaseOwn(accounts []domain.Account, own domain.Allocation) {
	for i := range accounts {
		accounts[i].Reserved -= min(accounts[i].Reserved, own.CountOf(accounts[i].ID))
	}
}

func checkFound(ids []int64, accounts []domain.Account) error {
	if len(ids) == len(accounts) {
		return nil
	}
	for _, id := range ids {
		if !slices.ContainsFunc(accounts, func(acc domain.Account) bool { return acc.ID == id }) {
			return fmt.Errorf("%w: AccountID = %d", errs.ErrAccountNotFound, id)
		}
	}
	return nil
}
