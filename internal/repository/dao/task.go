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

type TaskDAO interface {
	// CreateWithEntries 在同一个事务里创建任务和它的全部队列条目
	CreateWithEntries(ctx context.Context, task Task, entries []QueueEntry) (Task, error)
	GetByID(ctx context.Context, id int64) (Task, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	ListByCampaign(ctx context.Context, campaignID int64) ([]Task, error)
}

// Task 发送任务表
type Task struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false;comment:'雪花算法ID'"`
	CampaignID  int64  `gorm:"type:BIGINT;NOT NULL;index:idx_campaign_id;comment:'营销活动ID'"`
	Subject     string `gorm:"type:VARCHAR(512);NOT NULL;comment:'邮件主题'"`
	Body        string `gorm:"type:LONGTEXT;comment:'邮件正文'"`
	ScheduledAt int64  `gorm:"NOT NULL;comment:'计划发送时间，毫秒'"`
	SendRate    int    `gorm:"type:INT;NOT NULL;comment:'发送间隔，秒'"`
	Type        string `gorm:"type:VARCHAR(16);NOT NULL;comment:'new/followup'"`
	Status      string `gorm:"type:VARCHAR(16);NOT NULL;comment:'pending/scheduled'"`
	Ctime       int64
	Utime       int64
}

type taskDAO struct {
	db *egorm.Component
}

func NewTaskDAO(db *egorm.Component) TaskDAO {
	return &taskDAO{db: db}
}

func (d *taskDAO) CreateWithEntries(ctx context.Context, task Task, entries []QueueEntry) (Task, error) {
	now := time.Now().UnixMilli()
	task.Ctime, task.Utime = now, now
	for i := range entries {
		entries[i].Ctime, entries[i].Utime = now, now
		entries[i].Version = 1
	}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return errors.Wrap(err, "创建任务失败")
		}
		const batchSize = 500
		if err := tx.CreateInBatches(entries, batchSize).Error; err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: TaskID = %d", errs.ErrEntryDuplicate, task.ID)
			}
			return errors.Wrap(err, "创建队列条目失败")
		}
		return nil
	})
	return task, err
}

func (d *taskDAO) GetByID(ctx context.Context, id int64) (Task, error) {
	var t Task
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	return t, err
}

func (d *taskDAO) UpdateStatus(ctx context.Context, id int64, status string) error {
	return d.db.WithContext(ctx).Model(&Task{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": status,
			"utime":  time.Now().UnixMilli(),
		}).Error
}

func (d *taskDAO) ListByCampaign(ctx context.Context, campaignID int64) ([]Task, error) {
	var res []Task
	err := d.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("ctime ASC, id ASC").
		Find(&res).Error
	return res, err
}
