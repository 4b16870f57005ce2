package domain

import (
	"fmt"
	"time"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
)

type TaskType string

const (
	TaskTypeNew      TaskType = "new"
	TaskTypeFollowup TaskType = "followup"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"   // 队列条目已生成，还没有交给投递服务
	TaskStatusScheduled TaskStatus = "scheduled" // 已经交给投递服务
)

// Task 一轮发送
type Task struct {
	ID          int64
	CampaignID  int64
	Subject     string
	Body        string
	ScheduledAt int64 // 毫秒
	SendRate    int   // 两封邮件之间的间隔，单位秒
	Type        TaskType
	Status      TaskStatus
	Ctime       int64
	Utime       int64
}

func (t Task) Validate(now time.Time) error {
	if t.CampaignID <= 0 {
		return fmt.Errorf("%w: CampaignID = %d", errs.ErrInvalidParameter, t.CampaignID)
	}
	if t.Subject == "" {
		return fmt.Errorf("%w: Subject = %q", errs.ErrInvalidParameter, t.Subject)
	}
	if t.ScheduledAt <= now.UnixMilli() {
		return fmt.Errorf("%w: ScheduledAt 必须晚于当前时间, ScheduledAt = %d", errs.ErrInvalidParameter, t.ScheduledAt)
	}
	if t.SendRate < 1 {
		return fmt.Errorf("%w: SendRate = %d", errs.ErrInvalidParameter, t.SendRate)
	}
	if t.Type != TaskTypeNew && t.Type != TaskTypeFollowup {
		return fmt.Errorf("%w: Type = %q", errs.ErrInvalidParameter, t.Type)
	}
	return nil
}

// DispatchRequest 交给投递服务的请求，投递服务按 SendRate 控制节奏
type DispatchRequest struct {
	TaskID      int64
	Entries     []QueueEntry
	ScheduledAt int64
	SendRate    int
}
