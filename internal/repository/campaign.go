package repository

import (
	"context"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	pkgdao "github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/dao"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
)

type CampaignRepository interface {
	Create(ctx context.Context, c domain.Campaign) (domain.Campaign, error)
	GetByID(ctx context.Context, id int64) (domain.Campaign, error)
	// CommitAllocation c.Version 是读取时的版本，accounts 里的 Reserved 是提交后的新预占额度
	CommitAllocation(ctx context.Context, c domain.Campaign, accounts []domain.Account) error
	// UpdateRecipients releaseAccountID > 0 时顺带释放该账号一个预占额度
	UpdateRecipients(ctx context.Context, c domain.Campaign, releaseAccountID int64) error
	CASStatus(ctx context.Context, id int64, from, to domain.CampaignStatus) error
	FindByStatus(ctx context.Context, status domain.CampaignStatus, offset, limit int) ([]domain.Campaign, error)
}

type campaignRepository struct {
	dao dao.CampaignDAO
	now func() time.Time
}

func NewCampaignRepository(d dao.CampaignDAO) CampaignRepository {
	return &campaignRepository{dao: d, now: time.Now}
}

func (r *campaignRepository) Create(ctx context.Context, c domain.Campaign) (domain.Campaign, error) {
	created, err := r.dao.Create(ctx, r.toEntity(c))
	if err != nil {
		return domain.Campaign{}, err
	}
	return r.toDomain(created), nil
}

func (r *campaignRepository) GetByID(ctx context.Context, id int64) (domain.Campaign, error) {
	c, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Campaign{}, notFound(err, errs.ErrCampaignNotFound, id)
	}
	return r.toDomain(c), nil
}

func (r *campaignRepository) CommitAllocation(ctx context.Context, c domain.Campaign, accounts []domain.Account) error {
	day := domain.DayOf(r.now())
	reservations := slice.Map(accounts, func(_ int, src domain.Account) dao.Reservation {
		return dao.Reservation{
			AccountID: src.ID,
			Version:   src.Version,
			Reserved:  src.Reserved,
			Day:       day,
		}
	})
	return r.dao.CommitAllocation(ctx, r.toEntity(c), reservations)
}

func (r *campaignRepository) UpdateRecipients(ctx context.Context, c domain.Campaign, releaseAccountID int64) error {
	return r.dao.UpdateRecipients(ctx, r.toEntity(c), releaseAccountID, domain.DayOf(r.now()))
}

func (r *campaignRepository) CASStatus(ctx context.Context, id int64, from, to domain.CampaignStatus) error {
	return r.dao.CASStatus(ctx, id, string(from), string(to))
}

func (r *campaignRepository) FindByStatus(ctx context.Context, status domain.CampaignStatus, offset, limit int) ([]domain.Campaign, error) {
	cs, err := r.dao.FindByStatus(ctx, string(status), offset, limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(cs, func(_ int, src dao.Campaign) domain.Campaign {
		return r.toDomain(src)
	}), nil
}

func (r *campaignRepository) toDomain(c dao.Campaign) domain.Campaign {
	alloc := slice.Map(c.Allocation.Val, func(_ int, src dao.AllocationItem) domain.AllocationItem {
		return domain.AllocationItem{AccountID: src.AccountID, Count: src.Count}
	})
	return domain.Campaign{
		ID:                c.ID,
		Name:              c.Name,
		Recipients:        nonNil(c.Recipients.Val),
		DeletedRecipients: nonNil(c.DeletedRecipients.Val),
		Allocation:        alloc,
		Status:            domain.CampaignStatus(c.Status),
		Version:           c.Version,
		Ctime:             c.Ctime,
		Utime:             c.Utime,
	}
}

func (r *campaignRepository) toEntity(c domain.Campaign) dao.Campaign {
	alloc := slice.Map(c.Allocation, func(_ int, src domain.AllocationItem) dao.AllocationItem {
		return dao.AllocationItem{AccountID: src.AccountID, Count: src.Count}
	})
	return dao.Campaign{
		ID:                c.ID,
		Name:              c.Name,
		Recipients:        pkgdao.NewJSONColumn(nonNil(c.Recipients)),
		DeletedRecipients: pkgdao.NewJSONColumn(nonNil(c.DeletedRecipients)),
		Allocation:        pkgdao.NewJSONColumn(alloc),
		Status:            string(c.Status),
		Version:           c.Version,
		Ctime:             c.Ctime,
		Utime:             c.Utime,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
