package repository

import (
	"context"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
)

type QueueEntryRepository interface {
	GetByID(ctx context.Context, id int64) (domain.QueueEntry, error)
	ListByTask(ctx context.Context, taskID int64, offset, limit int) ([]domain.QueueEntry, error)
	ListByTaskAndStatus(ctx context.Context, taskID int64, status domain.EntryStatus) ([]domain.QueueEntry, error)
	// CASStatus 当前状态不是 from 时返回 errs.ErrDispatchConflict
	CASStatus(ctx context.Context, entry domain.QueueEntry, from domain.EntryStatus) error
	BatchCASStatusByTask(ctx context.Context, taskID int64, from, to domain.EntryStatus) (int64, error)
	CountByCampaignAndStatus(ctx context.Context, campaignID int64, statuses ...domain.EntryStatus) (int64, error)
}

type queueEntryRepository struct {
	dao dao.QueueEntryDAO
}

func NewQueueEntryRepository(d dao.QueueEntryDAO) QueueEntryRepository {
	return &queueEntryRepository{dao: d}
}

func (r *queueEntryRepository) GetByID(ctx context.Context, id int64) (domain.QueueEntry, error) {
	e, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.QueueEntry{}, notFound(err, errs.ErrEntryNotFound, id)
	}
	return toEntryDomain(e), nil
}

func (r *queueEntryRepository) ListByTask(ctx context.Context, taskID int64, offset, limit int) ([]domain.QueueEntry, error) {
	es, err := r.dao.ListByTask(ctx, taskID, offset, limit)
	if err != nil {
		return nil, err
	}
	return toEntryDomains(es), nil
}

func (r *queueEntryRepository) ListByTaskAndStatus(ctx context.Context, taskID int64, status domain.EntryStatus) ([]domain.QueueEntry, error) {
	es, err := r.dao.ListByTaskAndStatus(ctx, taskID, string(status))
	if err != nil {
		return nil, err
	}
	return toEntryDomains(es), nil
}

func (r *queueEntryRepository) CASStatus(ctx context.Context, entry domain.QueueEntry, from domain.EntryStatus) error {
	return r.dao.CASStatus(ctx, toEntryEntity(entry), string(from))
}

func (r *queueEntryRepository) BatchCASStatusByTask(ctx context.Context, taskID int64, from, to domain.EntryStatus) (int64, error) {
	return r.dao.BatchCASStatusByTask(ctx, taskID, string(from), string(to))
}

func (r *queueEntryRepository) CountByCampaignAndStatus(ctx context.Context, campaignID int64, statuses ...domain.EntryStatus) (int64, error) {
	ss := slice.Map(statuses, func(_ int, src domain.EntryStatus) string {
		return string(src)
	})
	return r.dao.CountByCampaignAndStatus(ctx, campaignID, ss)
}

func toEntryDomains(es []dao.QueueEntry) []domain.QueueEntry {
	return slice.Map(es, func(_ int, src dao.QueueEntry) domain.QueueEntry {
		return toEntryDomain(src)
	})
}

func toEntryDomain(e dao.QueueEntry) domain.QueueEntry {
	return domain.QueueEntry{
		ID:           e.ID,
		TaskID:       e.TaskID,
		AccountID:    e.AccountID,
		Recipient:    e.Recipient,
		Subject:      e.Subject,
		Body:         e.Body,
		ScheduledAt:  e.ScheduledAt,
		Status:       domain.EntryStatus(e.Status),
		SentAt:       e.SentAt,
		ErrorMessage: e.ErrorMessage,
		Version:      e.Version,
		Ctime:        e.Ctime,
		Utime:        e.Utime,
	}
}

func toEntryEntity(e domain.QueueEntry) dao.QueueEntry {
	return dao.QueueEntry{
		ID:           e.ID,
		TaskID:       e.TaskID,
		AccountID:    e.AccountID,
		Recipient:    e.Recipient,
		Subject:      e.Subject,
		Body:         e.Body,
		ScheduledAt:  e.ScheduledAt,
		Status:       string(e.Status),
		SentAt:       e.SentAt,
		ErrorMessage: e.ErrorMessage,
		Version:      e.Version,
		Ctime:        e.Ctime,
		Utime:        e.Utime,
	}
}
