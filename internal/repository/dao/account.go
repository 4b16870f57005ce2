package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/ego-component/egorm"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type AccountDAO interface {
	Create(ctx context.Context, data Account) (Account, error)
	GetByID(ctx context.Context, id int64) (Account, error)
	// FindByIDs 不存在的 ID 会被忽略
	FindByIDs(ctx context.Context, ids []int64) ([]Account, error)
	// List 按创建时间倒序
	List(ctx context.Context, offset, limit int) ([]Account, error)
	ListActive(ctx context.Context) ([]Account, error)
	UpdateActive(ctx context.Context, id int64, active bool) error
	// ReleaseReservation 释放 day 当天的 n 个预占额度，最多释放到 0
	ReleaseReservation(ctx context.Context, id int64, day string, n int) error
}

// Account 发送账号表
type Account struct {
	ID         int64  `gorm:"primaryKey;autoIncrement;comment:'账号ID'"`
	Email      string `gorm:"type:VARCHAR(256);NOT NULL;uniqueIndex:uk_email;comment:'发件邮箱'"`
	DailyLimit int    `gorm:"type:INT;NOT NULL;comment:'每日发送上限'"`
	// 预占额度只在 ReservedDay 当天有效，过了这一天就当作 0
	Reserved    int    `gorm:"type:INT;NOT NULL;DEFAULT:0;comment:'当天已分配给营销活动的额度'"`
	ReservedDay string `gorm:"type:VARCHAR(10);NOT NULL;DEFAULT:'';comment:'预占额度所属日期(UTC)，格式 2006-01-02'"`
	Active      bool   `gorm:"NOT NULL;comment:'是否启用'"`
	Version     int    `gorm:"type:INT;NOT NULL;DEFAULT:1;comment:'版本号，用于CAS操作'"`
	Ctime       int64  `gorm:"index:idx_ctime"`
	Utime       int64
}

type accountDAO struct {
	db *egorm.Component
}

func NewAccountDAO(db *egorm.Component) AccountDAO {
	return &accountDAO{db: db}
}

func (d *accountDAO) Create(ctx context.Context, data Account) (Account, error) {
	now := time.Now().UnixMilli()
	data.Ctime, data.Utime = now, now
	data.Version = 1
	err := d.db.WithContext(ctx).Create(&data).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return Account{}, fmt.Errorf("%w: Email = %s", errs.ErrAccountDuplicate, data.Email)
		}
		return Account{}, errors.Wrap(err, "创建账号失败")
	}
	return data, nil
}

func (d *accountDAO) GetByID(ctx context.Context, id int64) (Account, error) {
	var acc Account
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&acc).Error
	return acc, err
}

func (d *accountDAO) FindByIDs(ctx context.Context, ids []int64) ([]Account, error) {
	if len(ids) == 0 {
		return []Account{}, nil
	}
	var res []Account
	err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&res).Error
	return res, err
}

func (d *accountDAO) List(ctx context.Context, offset, limit int) ([]Account, error) {
	var res []Account
	err := d.db.WithContext(ctx).
		Order("ctime DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (d *accountDAO) ListActive(ctx context.Context) ([]Account, error) {
	var res []Account
	err := d.db.WithContext(ctx).
		Where("active = ?", true).
		Order("ctime DESC, id DESC").
		Find(&res).Error
	return res, err
}

func (d *accountDAO) UpdateActive(ctx context.Context, id int64, active bool) error {
	res := d.db.WithContext(ctx).Model(&Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active":  active,
			"version": gorm.Expr("version + 1"),
			"utime":   time.Now().UnixMilli(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected < 1 {
		return fmt.Errorf("%w: AccountID = %d", errs.ErrAccountNotFound, id)
	}
	return nil
}

func (d *accountDAO) ReleaseReservation(ctx context.Context, id int64, day string, n int) error {
	return releaseReservation(d.db.WithContext(ctx), id, day, n)
}

// releaseReservation 不是当天的预占不用处理，反正已经失效了
func releaseReservation(db *gorm.DB, id int64, day string, n int) error {
	return db.Model(&Account{}).
		Where("id = ? AND reserved_day = ?", id, day).
		Updates(map[string]any{
			"reserved": gorm.Expr("CASE WHEN reserved > ? THEN reserved - ? ELSE 0 END", n, n),
			"version":  gorm.Expr("version + 1"),
			"utime":    time.Now().UnixMilli(),
		}).Error
}
