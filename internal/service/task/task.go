package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/dispatch"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/entry"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/queue"
	"github.com/gotomicro/ego/core/elog"
	"github.com/sony/sonyflake"
)

type Service interface {
	// CreateTask 把活动当前的分配展开成队列条目并交给投递服务。
	// 交接失败时任务停留在 pending，可以调用 Dispatch 重试
	CreateTask(ctx context.Context, t domain.Task) (domain.Task, error)
	Dispatch(ctx context.Context, taskID int64) (domain.Task, error)
	Get(ctx context.Context, id int64) (domain.Task, error)
	ListByCampaign(ctx context.Context, campaignID int64) ([]domain.Task, error)
}

type service struct {
	repo         repository.TaskRepository
	campaignRepo repository.CampaignRepository
	entryRepo    repository.QueueEntryRepository
	entrySvc     entry.Service
	client       dispatch.Client
	idGenerator  *sonyflake.Sonyflake
	logger       *elog.Component
}

func NewService(
	repo repository.TaskRepository,
	campaignRepo repository.CampaignRepository,
	entryRepo repository.QueueEntryRepository,
	entrySvc entry.Service,
	client dispatch.Client,
	idGenerator *sonyflake.Sonyflake,
) Service {
	return &service{
		repo:         repo,
		campaignRepo: campaignRepo,
		entryRepo:    entryRepo,
		entrySvc:     entrySvc,
		client:       client,
		idGenerator:  idGenerator,
		logger:       elog.DefaultLogger,
	}
}

func (s *service) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if err := t.Validate(time.Now()); err != nil {
		return domain.Task{}, err
	}
	c, err := s.campaignRepo.GetByID(ctx, t.CampaignID)
	if err != nil {
		return domain.Task{}, err
	}
	if !c.Status.AcceptsTasks() {
		return domain.Task{}, fmt.Errorf("%w: 活动状态 %s 不能创建任务", errs.ErrInvalidParameter, c.Status)
	}

	t.ID, err = s.nextID()
	if err != nil {
		return domain.Task{}, err
	}
	t.Status = domain.TaskStatusPending
	entries, err := queue.Expand(c.Recipients, c.Allocation, t)
	if err != nil {
		return domain.Task{}, err
	}
	for i := range entries {
		// 按展开顺序生成，ID 的大小顺序就是投递顺序
		entries[i].ID, err = s.nextID()
		if err != nil {
			return domain.Task{}, err
		}
	}

	t, err = s.repo.CreateWithEntries(ctx, t, entries)
	if err != nil {
		return domain.Task{}, err
	}

	if c.Status == domain.CampaignStatusDraft {
		err = s.campaignRepo.CASStatus(ctx, c.ID, domain.CampaignStatusDraft, domain.CampaignStatusActive)
		if err != nil && !errors.Is(err, errs.ErrCampaignVersionMismatch) {
			s.logger.Error("活动状态更新为 active 失败",
				elog.Int64("campaignID", c.ID),
				elog.FieldErr(err))
		}
	}

	res, err := s.handOff(ctx, t, entries)
	if err != nil {
		s.logger.Warn("任务交给投递服务失败，等待重试",
			elog.Int64("taskID", t.ID),
			elog.FieldErr(err))
		return t, nil
	}
	return res, nil
}

func (s *service) Dispatch(ctx context.Context, taskID int64) (domain.Task, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if t.Status == domain.TaskStatusScheduled {
		return t, nil
	}
	entries, err := s.entryRepo.ListByTaskAndStatus(ctx, taskID, domain.EntryStatusPending)
	if err != nil {
		return domain.Task{}, err
	}
	return s.handOff(ctx, t, entries)
}

// handOff 投递服务接收之后，条目和任务都改成 scheduled
func (s *service) handOff(ctx context.Context, t domain.Task, entries []domain.QueueEntry) (domain.Task, error) {
	if len(entries) > 0 {
		err := s.client.Schedule(ctx, domain.DispatchRequest{
			TaskID:      t.ID,
			Entries:     entries,
			ScheduledAt: t.ScheduledAt,
			SendRate:    t.SendRate,
		})
		if err != nil {
			return domain.Task{}, err
		}
		if _, err = s.entrySvc.MarkScheduled(ctx, t.ID); err != nil {
			return domain.Task{}, err
		}
	}
	if err := s.repo.UpdateStatus(ctx, t.ID, domain.TaskStatusScheduled); err != nil {
		return domain.Task{}, err
	}
	t.Status = domain.TaskStatusScheduled
	return t, nil
}

func (s *service) Get(ctx context.Context, id int64) (domain.Task, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByCampaign(ctx context.Context, campaignID int64) ([]domain.Task, error) {
	return s.repo.ListByCampaign(ctx, campaignID)
}

func (s *service) nextID() (int64, error) {
	id, err := s.idGenerator.NextID()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrIDGenerateFailed, err)
	}
	return int64(id), nil
}
