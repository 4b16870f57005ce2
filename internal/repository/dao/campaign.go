package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	pkgdao "github.com/chimalongy/emailsenderserverless-sub001/internal/pkg/dao"
	"github.com/ego-component/egorm"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type CampaignDAO interface {
	Create(ctx context.Context, data Campaign) (Campaign, error)
	GetByID(ctx context.Context, id int64) (Campaign, error)
	// CommitAllocation 在一个事务里 CAS 更新活动的分配结果以及相关账号的预占额度，
	// 任何一个 CAS 失败都会返回 errs.ErrAllocationConflict
	CommitAllocation(ctx context.Context, data Campaign, reservations []Reservation) error
	// UpdateRecipients CAS 更新收件人列表和分配结果，releaseAccountID > 0 的时候顺便释放一个预占额度
	UpdateRecipients(ctx context.Context, data Campaign, releaseAccountID int64, day string) error
	// CASStatus 只有当前状态是 from 的时候才会更新
	CASStatus(ctx context.Context, id int64, from, to string) error
	FindByStatus(ctx context.Context, status string, offset, limit int) ([]Campaign, error)
}

// AllocationItem 分配结果里的一项
type AllocationItem struct {
	AccountID int64 `json:"accountId"`
	Count     int   `json:"count"`
}

// Campaign 营销活动表
type Campaign struct {
	ID                int64                               `gorm:"primaryKey;autoIncrement;comment:'营销活动ID'"`
	Name              string                              `gorm:"type:VARCHAR(256);NOT NULL;comment:'活动名称'"`
	Recipients        pkgdao.JSONColumn[[]string]         `gorm:"type:LONGTEXT;comment:'收件人，JSON数组，顺序有意义'"`
	DeletedRecipients pkgdao.JSONColumn[[]string]         `gorm:"type:LONGTEXT;comment:'已删除的收件人，JSON数组'"`
	Allocation        pkgdao.JSONColumn[[]AllocationItem] `gorm:"type:TEXT;comment:'分配结果，JSON数组，顺序有意义'"`
	Status            string                              `gorm:"type:VARCHAR(16);NOT NULL;index:idx_status;comment:'draft/active/paused/completed'"`
	Version           int                                 `gorm:"type:INT;NOT NULL;DEFAULT:1;comment:'版本号，用于CAS操作'"`
	Ctime             int64
	Utime             int64
}

// Reservation 提交分配时某个账号的新预占额度，Version 是读取快照时的版本
type Reservation struct {
	AccountID int64
	Version   int
	Reserved  int
	Day       string
}

type campaignDAO struct {
	db *egorm.Component
}

func NewCampaignDAO(db *egorm.Component) CampaignDAO {
	return &campaignDAO{db: db}
}

func (d *campaignDAO) Create(ctx context.Context, data Campaign) (Campaign, error) {
	now := time.Now().UnixMilli()
	data.Ctime, data.Utime = now, now
	data.Version = 1
	if err := d.db.WithContext(ctx).Create(&data).Error; err != nil {
		return Campaign{}, errors.Wrap(err, "创建营销活动失败")
	}
	return data, nil
}

func (d *campaignDAO) GetByID(ctx context.Context, id int64) (Campaign, error) {
	var c Campaign
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	return c, err
}

func (d *campaignDAO) CommitAllocation(ctx context.Context, data Campaign, reservations []Reservation) error {
	now := time.Now().UnixMilli()
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Campaign{}).
			Where("id = ? AND version = ?", data.ID, data.Version).
			Updates(map[string]any{
				"allocation": data.Allocation,
				"version":    gorm.Expr("version + 1"),
				"utime":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected < 1 {
			return fmt.Errorf("%w: CampaignID = %d", errs.ErrAllocationConflict, data.ID)
		}
		for _, r := range reservations {
			// CAS 更新账号的额度快照
			res = tx.Model(&Account{}).
				Where("id = ? AND version = ?", r.AccountID, r.Version).
				Updates(map[string]any{
					"reserved":     r.Reserved,
					"reserved_day": r.Day,
					"version":      gorm.Expr("version + 1"),
					"utime":        now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected < 1 {
				return fmt.Errorf("%w: AccountID = %d", errs.ErrAllocationConflict, r.AccountID)
			}
		}
		return nil
	})
}

func (d *campaignDAO) UpdateRecipients(ctx context.Context, data Campaign, releaseAccountID int64, day string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Campaign{}).
			Where("id = ? AND version = ?", data.ID, data.Version).
			Updates(map[string]any{
				"recipients":         data.Recipients,
				"deleted_recipients": data.DeletedRecipients,
				"allocation":         data.Allocation,
				"version":            gorm.Expr("version + 1"),
				"utime":              time.Now().UnixMilli(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected < 1 {
			return fmt.Errorf("%w: CampaignID = %d", errs.ErrCampaignVersionMismatch, data.ID)
		}
		if releaseAccountID <= 0 {
			return nil
		}
		return releaseReservation(tx, releaseAccountID, day, 1)
	})
}

func (d *campaignDAO) CASStatus(ctx context.Context, id int64, from, to string) error {
	res := d.db.WithContext(ctx).Model(&Campaign{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":  to,
			"version": gorm.Expr("version + 1"),
			"utime":   time.Now().UnixMilli(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected < 1 {
		return fmt.Errorf("并发竞争失败 %w, id %d", errs.ErrCampaignVersionMismatch, id)
	}
	return nil
}

func (d *campaignDAO) FindByStatus(ctx context.Context, status string, offset, limit int) ([]Campaign, error) {
	var res []Campaign
	err := d.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
