package web

import (
	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/service/reconcile"
	"github.com/ecodeclub/ekit/slice"
)

type CreateAccountReq struct {
	Email      string `json:"email"`
	DailyLimit int    `json:"dailyLimit"`
	// 不传默认启用
	Active *bool `json:"active"`
}

type SetActiveReq struct {
	Active bool `json:"active"`
}

type Account struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	DailyLimit int    `json:"dailyLimit"`
	SentToday  int    `json:"sentToday"`
	Reserved   int    `json:"reserved"`
	Available  int    `json:"available"`
	Active     bool   `json:"active"`
}

func newAccount(acc domain.Account) Account {
	return Account{
		ID:         acc.ID,
		Email:      acc.Email,
		DailyLimit: acc.DailyLimit,
		SentToday:  acc.SentToday,
		Reserved:   acc.Reserved,
		Available:  acc.AvailableCapacity(),
		Active:     acc.Active,
	}
}

type AllocationItem struct {
	AccountID int64 `json:"accountId"`
	Count     int   `json:"count"`
}

func newAllocation(alloc domain.Allocation) []AllocationItem {
	return slice.Map(alloc, func(_ int, src domain.AllocationItem) AllocationItem {
		return AllocationItem{AccountID: src.AccountID, Count: src.Count}
	})
}

func toAllocation(items []AllocationItem) domain.Allocation {
	return slice.Map(items, func(_ int, src AllocationItem) domain.AllocationItem {
		return domain.AllocationItem{AccountID: src.AccountID, Count: src.Count}
	})
}

type CreateCampaignReq struct {
	Name       string     `json:"name"`
	Recipients Recipients `json:"recipients"`
}

type Campaign struct {
	ID                int64            `json:"id"`
	Name              string           `json:"name"`
	Recipients        []string         `json:"recipients"`
	DeletedRecipients []string         `json:"deletedRecipients"`
	Allocation        []AllocationItem `json:"allocation"`
	Status            string           `json:"status"`
	Version           int              `json:"version"`
	Ctime             int64            `json:"ctime"`
	Utime             int64            `json:"utime"`
}

func newCampaign(c domain.Campaign) Campaign {
	return Campaign{
		ID:                c.ID,
		Name:              c.Name,
		Recipients:        c.Recipients,
		DeletedRecipients: c.DeletedRecipients,
		Allocation:        newAllocation(c.Allocation),
		Status:            string(c.Status),
		Version:           c.Version,
		Ctime:             c.Ctime,
		Utime:             c.Utime,
	}
}

type PlanReq struct {
	Strategy string `json:"strategy"`
	// 为空表示所有启用的账号
	AccountIDs  []int64          `json:"accountIds"`
	Manual      []AllocationItem `json:"manual"`
	Incremental bool             `json:"incremental"`
}

type Plan struct {
	Allocation []AllocationItem `json:"allocation"`
	Requested  int              `json:"requested"`
	Allocated  int              `json:"allocated"`
	Shortfall  int              `json:"shortfall"`
}

type CommitReq struct {
	Allocation []AllocationItem `json:"allocation"`
}

type UpdateStatusReq struct {
	Status string `json:"status"`
}

type RemoveRecipientReq struct {
	Email string `json:"email"`
}

type RemoveRecipientResp struct {
	Campaign  Campaign `json:"campaign"`
	Owner     int64    `json:"owner"`
	Unmatched bool     `json:"unmatched"`
}

func newRemoveRecipientResp(res reconcile.Result) RemoveRecipientResp {
	return RemoveRecipientResp{
		Campaign:  newCampaign(res.Campaign),
		Owner:     res.Owner,
		Unmatched: res.Unmatched,
	}
}

type CreateTaskReq struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	// 毫秒
	ScheduledAt int64 `json:"scheduledAt"`
	// 两封邮件之间间隔的秒数
	SendRate int    `json:"sendRate"`
	Type     string `json:"type"`
}

type Task struct {
	ID          int64  `json:"id"`
	CampaignID  int64  `json:"campaignId"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	ScheduledAt int64  `json:"scheduledAt"`
	SendRate    int    `json:"sendRate"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Ctime       int64  `json:"ctime"`
}

func newTask(t domain.Task) Task {
	return Task{
		ID:          t.ID,
		CampaignID:  t.CampaignID,
		Subject:     t.Subject,
		Body:        t.Body,
		ScheduledAt: t.ScheduledAt,
		SendRate:    t.SendRate,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Ctime:       t.Ctime,
	}
}

type Entry struct {
	ID           int64  `json:"id"`
	TaskID       int64  `json:"taskId"`
	AccountID    int64  `json:"accountId"`
	Recipient    string `json:"recipient"`
	ScheduledAt  int64  `json:"scheduledAt"`
	Status       string `json:"status"`
	SentAt       int64  `json:"sentAt"`
	ErrorMessage string `json:"errorMessage"`
}

func newEntry(e domain.QueueEntry) Entry {
	return Entry{
		ID:           e.ID,
		TaskID:       e.TaskID,
		AccountID:    e.AccountID,
		Recipient:    e.Recipient,
		ScheduledAt:  e.ScheduledAt,
		Status:       string(e.Status),
		SentAt:       e.SentAt,
		ErrorMessage: e.ErrorMessage,
	}
}
