package repository

import (
	"context"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
)

type TaskRepository interface {
	// CreateWithEntries 任务和队列条目要么一起落库，要么都不落库
	CreateWithEntries(ctx context.Context, task domain.Task, entries []domain.QueueEntry) (domain.Task, error)
	GetByID(ctx context.Context, id int64) (domain.Task, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) error
	ListByCampaign(ctx context.Context, campaignID int64) ([]domain.Task, error)
}

type taskRepository struct {
	dao dao.TaskDAO
}

func NewTaskRepository(d dao.TaskDAO) TaskRepository {
	return &taskRepository{dao: d}
}

func (r *taskRepository) CreateWithEntries(ctx context.Context, task domain.Task, entries []domain.QueueEntry) (domain.Task, error) {
	es := slice.Map(entries, func(_ int, src domain.QueueEntry) dao.QueueEntry {
		return toEntryEntity(src)
	})
	created, err := r.dao.CreateWithEntries(ctx, r.toEntity(task), es)
	if err != nil {
		return domain.Task{}, err
	}
	return r.toDomain(created), nil
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (domain.Task, error) {
	t, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Task{}, notFound(err, errs.ErrTaskNotFound, id)
	}
	return r.toDomain(t), nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) error {
	return r.dao.UpdateStatus(ctx, id, string(status))
}

func (r *taskRepository) ListByCampaign(ctx context.Context, campaignID int64) ([]domain.Task, error) {
	ts, err := r.dao.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return slice.Map(ts, func(_ int, src dao.Task) domain.Task {
		return r.toDomain(src)
	}), nil
}

func (r *taskRepository) toDomain(t dao.Task) domain.Task {
	return domain.Task{
		ID:          t.ID,
		CampaignID:  t.CampaignID,
		Subject:     t.Subject,
		Body:        t.Body,
		ScheduledAt: t.ScheduledAt,
		SendRate:    t.SendRate,
		Type:        domain.TaskType(t.Type),
		Status:      domain.TaskStatus(t.Status),
		Ctime:       t.Ctime,
		Utime:       t.Utime,
	}
}

func (r *taskRepository) toEntity(t domain.Task) dao.Task {
	return dao.Task{
		ID:          t.ID,
		CampaignID:  t.CampaignID,
		Subject:     t.Subject,
		Body:        t.Body,
		ScheduledAt: t.ScheduledAt,
		SendRate:    t.SendRate,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Ctime:       t.Ctime,
		Utime:       t.Utime,
	}
}
