package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/ego-component/egorm"
	"gorm.io/gorm"
)

type QueueEntryDAO interface {
	GetByID(ctx context.Context, id int64) (QueueEntry, error)
	ListByTask(ctx context.Context, taskID int64, offset, limit int) ([]QueueEntry, error)
	ListByTaskAndStatus(ctx context.Context, taskID int64, status string) ([]QueueEntry, error)
	// CASStatus 只有当前状态还是 from 的时候才更新，状态、发送时间、错误信息一起写入
	CASStatus(ctx context.Context, entry QueueEntry, from string) error
	// BatchCASStatusByTask 把任务下所有 from 状态的条目改成 to
	BatchCASStatusByTask(ctx context.Context, taskID int64, from, to string) (int64, error)
	CountByCampaignAndStatus(ctx context.Context, campaignID int64, statuses []string) (int64, error)
}

// QueueEntry 队列条目表
type QueueEntry struct {
	ID           int64  `gorm:"primaryKey;autoIncrement:false;comment:'雪花算法ID'"`
	TaskID       int64  `gorm:"type:BIGINT;NOT NULL;uniqueIndex:uk_task_recipient,priority:1;index:idx_task_status,priority:1;comment:'任务ID'"`
	AccountID    int64  `gorm:"type:BIGINT;NOT NULL;comment:'发送账号ID'"`
	Recipient    string `gorm:"type:VARCHAR(256);NOT NULL;uniqueIndex:uk_task_recipient,priority:2;comment:'收件人'"`
	Subject      string `gorm:"type:VARCHAR(512);NOT NULL;comment:'邮件主题'"`
	Body         string `gorm:"type:LONGTEXT;comment:'邮件正文'"`
	ScheduledAt  int64  `gorm:"NOT NULL;comment:'计划发送时间，毫秒'"`
	Status       string `gorm:"type:VARCHAR(16);NOT NULL;index:idx_task_status,priority:2;comment:'pending/scheduled/sent/failed'"`
	SentAt       int64  `gorm:"comment:'发送成功时间，毫秒'"`
	ErrorMessage string `gorm:"type:TEXT;comment:'最近一次失败原因'"`
	Version      int    `gorm:"type:INT;NOT NULL;DEFAULT:1;comment:'版本号'"`
	Ctime        int64
	Utime        int64
}

type queueEntryDAO struct {
	db *egorm.Component
}

func NewQueueEntryDAO(db *egorm.Component) QueueEntryDAO {
	return &queueEntryDAO{db: db}
}

func (d *queueEntryDAO) GetByID(ctx context.Context, id int64) (QueueEntry, error) {
	var e QueueEntry
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	return e, err
}

func (d *queueEntryDAO) ListByTask(ctx context.Context, taskID int64, offset, limit int) ([]QueueEntry, error) {
	var res []QueueEntry
	err := d.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (d *queueEntryDAO) ListByTaskAndStatus(ctx context.Context, taskID int64, status string) ([]QueueEntry, error) {
	var res []QueueEntry
	err := d.db.WithContext(ctx).
		Where("task_id = ? AND status = ?", taskID, status).
		Order("id ASC").
		Find(&res).Error
	return res, err
}

func (d *queueEntryDAO) CASStatus(ctx context.Context, entry QueueEntry, from string) error {
	res := d.db.WithContext(ctx).Model(&QueueEntry{}).
		Where("id = ? AND status = ?", entry.ID, from).
		Updates(map[string]any{
			"status":        entry.Status,
			"sent_at":       entry.SentAt,
			"error_message": entry.ErrorMessage,
			"version":       gorm.Expr("version + 1"),
			"utime":         time.Now().UnixMilli(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected < 1 {
		return fmt.Errorf("并发竞争失败 %w, id %d", errs.ErrDispatchConflict, entry.ID)
	}
	return nil
}

func (d *queueEntryDAO) BatchCASStatusByTask(ctx context.Context, taskID int64, from, to string) (int64, error) {
	res := d.db.WithContext(ctx).Model(&QueueEntry{}).
		Where("task_id = ? AND status = ?", taskID, from).
		Updates(map[string]any{
			"status":  to,
			"version": gorm.Expr("version + 1"),
			"utime":   time.Now().UnixMilli(),
		})
	return res.RowsAffected, res.Error
}

func (d *queueEntryDAO) CountByCampaignAndStatus(ctx context.Context, campaignID int64, statuses []string) (int64, error) {
	var cnt int64
	sub := d.db.WithContext(ctx).Model(&Task{}).Select("id").Where("campaign_id = ?", campaignID)
	err := d.db.WithContext(ctx).Model(&QueueEntry{}).
		Where("task_id IN (?) AND status IN ?", sub, statuses).
		Count(&cnt).Error
	return cnt, err
}
