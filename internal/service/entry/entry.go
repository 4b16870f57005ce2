package entry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/lockx"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/dispatch"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/ledger"
	"github.com/gotomicro/ego/core/elog"
	"github.com/meoying/dlock-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Service 队列条目的状态机。
// pending -> scheduled -> sent / failed，failed 可以重新回到 scheduled，sent 是终态
//
//go:generate mockgen -source=./entry.go -destination=./mocks/entry.mock.go -package=entrymocks -typed Service
type Service interface {
	Get(ctx context.Context, id int64) (domain.QueueEntry, error)
	ListByTask(ctx context.Context, taskID int64, offset, limit int) ([]domain.QueueEntry, error)
	// MarkScheduled 投递服务接收了任务之后，把任务下所有 pending 的条目改成 scheduled
	MarkScheduled(ctx context.Context, taskID int64) (int64, error)
	// HandleDelivery 处理投递服务的回调，重复的成功回调不做任何事情
	HandleDelivery(ctx context.Context, res domain.DeliveryResult) (domain.QueueEntry, error)
	// SendNow 立即发送一个 scheduled 的条目。投递失败不返回 error，而是把条目标记为 failed
	SendNow(ctx context.Context, id int64) (domain.QueueEntry, error)
	// Resend 重新发送一个 failed 的条目
	// SendNow 和 Resend 都不会发给已经从活动里移除的收件人，返回 errs.ErrRecipientRemoved
	Resend(ctx context.Context, id int64) (domain.QueueEntry, error)
}

const (
	lockExpiration = 30 * time.Second
	// 立即发送和重发不排队，拿不到锁就是有并发
	lockWaitTimeout = 200 * time.Millisecond
)

func LockKey(entryID int64) string {
	return fmt.Sprintf("email:lock:entry:%d", entryID)
}

type service struct {
	repo         repository.QueueEntryRepository
	taskRepo     repository.TaskRepository
	campaignRepo repository.CampaignRepository
	ledger       ledger.Service
	client       dispatch.Client
	guard        *lockx.Guard
	tracer       trace.Tracer
	logger       *elog.Component
}

func NewService(
	repo repository.QueueEntryRepository,
	taskRepo repository.TaskRepository,
	campaignRepo repository.CampaignRepository,
	ledgerSvc ledger.Service,
	client dispatch.Client,
	dclient dlock.Client,
) Service {
	return &service{
		repo:         repo,
		taskRepo:     taskRepo,
		campaignRepo: campaignRepo,
		ledger:       ledgerSvc,
		client:       client,
		guard:        lockx.NewGuard(dclient, lockExpiration, lockWaitTimeout),
		tracer:       otel.Tracer("email-scheduler/entry"),
		logger:       elog.DefaultLogger,
	}
}

func (s *service) Get(ctx context.Context, id int64) (domain.QueueEntry, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByTask(ctx context.Context, taskID int64, offset, limit int) ([]domain.QueueEntry, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: offset = %d, limit = %d", errs.ErrInvalidParameter, offset, limit)
	}
	return s.repo.ListByTask(ctx, taskID, offset, limit)
}

func (s *service) MarkScheduled(ctx context.Context, taskID int64) (int64, error) {
	return s.repo.BatchCASStatusByTask(ctx, taskID, domain.EntryStatusPending, domain.EntryStatusScheduled)
}

func (s *service) HandleDelivery(ctx context.Context, res domain.DeliveryResult) (domain.QueueEntry, error) {
	e, err := s.repo.GetByID(ctx, res.EntryID)
	if err != nil {
		return domain.QueueEntry{}, err
	}
	if res.Success {
		if e.Status == domain.EntryStatusSent {
			s.logger.Info("重复的发送成功回调", elog.Int64("entryID", e.ID))
			return e, nil
		}
		return s.markSent(ctx, e)
	}

	if e.Status == domain.EntryStatusFailed {
		s.logger.Info("重复的发送失败回调", elog.Int64("entryID", e.ID))
		return e, nil
	}
	if e.Status == domain.EntryStatusSent {
		s.logger.Warn("已经发送成功的条目收到失败回调，忽略",
			elog.Int64("entryID", e.ID),
			elog.String("error", res.ErrorMessage))
		return e, fmt.Errorf("%w: 条目已发送 EntryID = %d", errs.ErrInvalidTransition, e.ID)
	}
	e.ErrorMessage = res.ErrorMessage
	return s.transit(ctx, e, domain.EntryStatusFailed)
}

func (s *service) SendNow(ctx context.Context, id int64) (domain.QueueEntry, error) {
	ctx, span := s.tracer.Start(ctx, "Entry.SendNow",
		trace.WithAttributes(attribute.String("entry.id", strconv.FormatInt(id, 10))))
	defer span.End()

	return s.withLock(ctx, id, func(ctx context.Context) (domain.QueueEntry, error) {
		e, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return domain.QueueEntry{}, err
		}
		if e.Status != domain.EntryStatusScheduled {
			return domain.QueueEntry{}, fmt.Errorf("%w: 只有 scheduled 的条目可以立即发送, 当前状态 %s",
				errs.ErrInvalidTransition, e.Status)
		}
		if err = s.checkRecipient(ctx, e); err != nil {
			return domain.QueueEntry{}, err
		}
		return s.dispatchNow(ctx, e)
	})
}

func (s *service) Resend(ctx context.Context, id int64) (domain.QueueEntry, error) {
	ctx, span := s.tracer.Start(ctx, "Entry.Resend",
		trace.WithAttributes(attribute.String("entry.id", strconv.FormatInt(id, 10))))
	defer span.End()

	return s.withLock(ctx, id, func(ctx context.Context) (domain.QueueEntry, error) {
		e, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return domain.QueueEntry{}, err
		}
		if e.Status != domain.EntryStatusFailed {
			return domain.QueueEntry{}, fmt.Errorf("%w: 只有 failed 的条目可以重发, 当前状态 %s",
				errs.ErrInvalidTransition, e.Status)
		}
		if err = s.checkRecipient(ctx, e); err != nil {
			return domain.QueueEntry{}, err
		}
		e.ErrorMessage = ""
		e, err = s.transit(ctx, e, domain.EntryStatusScheduled)
		if err != nil {
			return domain.QueueEntry{}, err
		}
		return s.dispatchNow(ctx, e)
	})
}

// withLock 同一个条目同时只能有一个立即发送或者重发
func (s *service) withLock(ctx context.Context, id int64,
	fn func(ctx context.Context) (domain.QueueEntry, error)) (domain.QueueEntry, error) {
	var res domain.QueueEntry
	err := s.guard.Do(ctx, LockKey(id), func(ctx context.Context) error {
		var err error
		res, err = fn(ctx)
		return err
	})
	if errors.Is(err, lockx.ErrLockNotAcquired) {
		return domain.QueueEntry{}, fmt.Errorf("%w: EntryID = %d", errs.ErrDispatchConflict, id)
	}
	return res, err
}

// checkRecipient 收件人退信或者退订之后，已经生成的条目也不能再手动发送
func (s *service) checkRecipient(ctx context.Context, e domain.QueueEntry) error {
	t, err := s.taskRepo.GetByID(ctx, e.TaskID)
	if err != nil {
		return err
	}
	c, err := s.campaignRepo.GetByID(ctx, t.CampaignID)
	if err != nil {
		return err
	}
	if c.IsDeleted(e.Recipient) {
		return fmt.Errorf("%w: EntryID = %d, CampaignID = %d, Recipient = %s",
			errs.ErrRecipientRemoved, e.ID, c.ID, e.Recipient)
	}
	return nil
}

// dispatchNow e 必须是 scheduled
func (s *service) dispatchNow(ctx context.Context, e domain.QueueEntry) (domain.QueueEntry, error) {
	if err := s.client.SendNow(ctx, e); err != nil {
		s.logger.Warn("立即发送失败",
			elog.Int64("entryID", e.ID),
			elog.FieldErr(err))
		e.ErrorMessage = err.Error()
		return s.transit(ctx, e, domain.EntryStatusFailed)
	}
	return s.markSent(ctx, e)
}

func (s *service) markSent(ctx context.Context, e domain.QueueEntry) (domain.QueueEntry, error) {
	e.SentAt = time.Now().UnixMilli()
	e.ErrorMessage = ""
	e, err := s.transit(ctx, e, domain.EntryStatusSent)
	if err != nil {
		return domain.QueueEntry{}, err
	}
	// 记账失败不影响条目状态，额度会在第二天自然恢复
	_ = s.ledger.RecordSent(ctx, e.AccountID)
	return e, nil
}

func (s *service) transit(ctx context.Context, e domain.QueueEntry, to domain.EntryStatus) (domain.QueueEntry, error) {
	from := e.Status
	if !from.CanTransitTo(to) {
		return domain.QueueEntry{}, fmt.Errorf("%w: EntryID = %d, %s -> %s", errs.ErrInvalidTransition, e.ID, from, to)
	}
	e.Status = to
	if err := s.repo.CASStatus(ctx, e, from); err != nil {
		return domain.QueueEntry{}, err
	}
	e.Version++
	return e, nil
}
