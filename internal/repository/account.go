package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository/cache"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// AccountRepository 返回的账号都带着当天的额度快照：
// SentToday 来自 Redis 计数，Reserved 只算当天的预占
type AccountRepository interface {
	Create(ctx context.Context, acc domain.Account) (domain.Account, error)
	GetByID(ctx context.Context, id int64) (domain.Account, error)
	// FindByIDs 按 ids 的顺序返回，不存在的账号直接跳过
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Account, error)
	List(ctx context.Context, offset, limit int) ([]domain.Account, error)
	ListActive(ctx context.Context) ([]domain.Account, error)
	UpdateActive(ctx context.Context, id int64, active bool) error
	// RecordSent 记一次成功发送，同时释放一个预占额度
	RecordSent(ctx context.Context, id int64) error
	ReleaseReservation(ctx context.Context, id int64, n int) error
}

type accountRepository struct {
	dao     dao.AccountDAO
	counter cache.SentCounter
	now     func() time.Time
}

func NewAccountRepository(d dao.AccountDAO, counter cache.SentCounter) AccountRepository {
	return &accountRepository{dao: d, counter: counter, now: time.Now}
}

func (r *accountRepository) Create(ctx context.Context, acc domain.Account) (domain.Account, error) {
	created, err := r.dao.Create(ctx, r.toEntity(acc))
	if err != nil {
		return domain.Account{}, err
	}
	return r.toDomain(created, 0, domain.DayOf(r.now())), nil
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (domain.Account, error) {
	accs, err := r.FindByIDs(ctx, []int64{id})
	if err != nil {
		return domain.Account{}, err
	}
	if len(accs) == 0 {
		return domain.Account{}, fmt.Errorf("%w: AccountID = %d", errs.ErrAccountNotFound, id)
	}
	return accs[0], nil
}

func (r *accountRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Account, error) {
	day := domain.DayOf(r.now())
	var (
		entities []dao.Account
		sent     map[int64]int
	)
	// 数据库和 Redis 并发读
	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		entities, err = r.dao.FindByIDs(ctx, ids)
		return err
	})
	eg.Go(func() error {
		var err error
		sent, err = r.counter.Get(ctx, day, ids)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	byID := make(map[int64]dao.Account, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}
	res := make([]domain.Account, 0, len(entities))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			continue
		}
		res = append(res, r.toDomain(e, sent[id], day))
	}
	return res, nil
}

func (r *accountRepository) List(ctx context.Context, offset, limit int) ([]domain.Account, error) {
	entities, err := r.dao.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return r.withSentCount(ctx, entities)
}

func (r *accountRepository) ListActive(ctx context.Context) ([]domain.Account, error) {
	entities, err := r.dao.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return r.withSentCount(ctx, entities)
}

func (r *accountRepository) withSentCount(ctx context.Context, entities []dao.Account) ([]domain.Account, error) {
	day := domain.DayOf(r.now())
	ids := slice.Map(entities, func(_ int, src dao.Account) int64 {
		return src.ID
	})
	sent, err := r.counter.Get(ctx, day, ids)
	if err != nil {
		return nil, err
	}
	return slice.Map(entities, func(_ int, src dao.Account) domain.Account {
		return r.toDomain(src, sent[src.ID], day)
	}), nil
}

func (r *accountRepository) UpdateActive(ctx context.Context, id int64, active bool) error {
	return r.dao.UpdateActive(ctx, id, active)
}

func (r *accountRepository) RecordSent(ctx context.Context, id int64) error {
	day := domain.DayOf(r.now())
	if _, err := r.counter.Incr(ctx, day, id); err != nil {
		return err
	}
	return r.dao.ReleaseReservation(ctx, id, day, 1)
}

func (r *accountRepository) ReleaseReservation(ctx context.Context, id int64, n int) error {
	return r.dao.ReleaseReservation(ctx, id, domain.DayOf(r.now()), n)
}

func (r *accountRepository) toDomain(e dao.Account, sentToday int, day string) domain.Account {
	reserved := 0
	if e.ReservedDay == day {
		reserved = e.Reserved
	}
	return domain.Account{
		ID:         e.ID,
		Email:      e.Email,
		DailyLimit: e.DailyLimit,
		SentToday:  sentToday,
		Reserved:   reserved,
		Active:     e.Active,
		Version:    e.Version,
		Ctime:      e.Ctime,
		Utime:      e.Utime,
	}
}

func (r *accountRepository) toEntity(acc domain.Account) dao.Account {
	return dao.Account{
		ID:         acc.ID,
		Email:      acc.Email,
		DailyLimit: acc.DailyLimit,
		Active:     acc.Active,
		Version:    acc.Version,
		Ctime:      acc.Ctime,
		Utime:      acc.Utime,
	}
}

// notFound 把 gorm 的记录不存在转换成业务错误
func notFound(err error, target error, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: ID = %d", target, id)
	}
	return err
}
