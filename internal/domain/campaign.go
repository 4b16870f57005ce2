package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
)

// CampaignStatus 营销活动状态
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"     // 草稿，可以反复调整分配
	CampaignStatusActive    CampaignStatus = "active"    // 已经创建过发送任务
	CampaignStatusPaused    CampaignStatus = "paused"    // 暂停
	CampaignStatusCompleted CampaignStatus = "completed" // 已完成
)

func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusPaused, CampaignStatusCompleted:
		return true
	default:
		return false
	}
}

func (s CampaignStatus) CanTransitTo(next CampaignStatus) bool {
	switch s {
	case CampaignStatusDraft:
		return next == CampaignStatusActive || next == CampaignStatusCompleted
	case CampaignStatusActive:
		return next == CampaignStatusPaused || next == CampaignStatusCompleted
	case CampaignStatusPaused:
		return next == CampaignStatusActive || next == CampaignStatusCompleted
	default:
		return false
	}
}

// AcceptsTasks 能否再创建发送任务
func (s CampaignStatus) AcceptsTasks() bool {
	return s == CampaignStatusDraft || s == CampaignStatusActive
}

// AllocationItem 某个账号分到的收件人数量
type AllocationItem struct {
	AccountID int64 `json:"accountId"`
	Count     int   `json:"count"`
}

// Allocation 有序的分配结果，顺序决定了收件人落到哪个账号上
type Allocation []AllocationItem

func (a Allocation) Total() int {
	total := 0
	for _, item := range a {
		total += item.Count
	}
	return total
}

func (a Allocation) CountOf(accountID int64) int {
	for _, item := range a {
		if item.AccountID == accountID {
			return item.Count
		}
	}
	return 0
}

func (a Allocation) AccountIDs() []int64 {
	ids := make([]int64, 0, len(a))
	for _, item := range a {
		ids = append(ids, item.AccountID)
	}
	return ids
}

// Compact 去掉数量为 0 的条目，返回新的切片
func (a Allocation) Compact() Allocation {
	res := make(Allocation, 0, len(a))
	for _, item := range a {
		if item.Count != 0 {
			res = append(res, item)
		}
	}
	return res
}

// Campaign 营销活动
type Campaign struct {
	ID                int64
	Name              string
	Recipients        []string // 有序，顺序决定分配槽位
	DeletedRecipients []string
	Allocation        Allocation
	Status            CampaignStatus
	Version           int
	Ctime             int64
	Utime             int64
}

func (c Campaign) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: Name = %q", errs.ErrInvalidParameter, c.Name)
	}
	if len(c.Recipients) == 0 {
		return fmt.Errorf("%w: Recipients 不能为空", errs.ErrInvalidParameter)
	}
	seen := make(map[string]struct{}, len(c.Recipients))
	for _, r := range c.Recipients {
		if _, ok := seen[r]; ok {
			return fmt.Errorf("%w: 收件人重复 %q", errs.ErrInvalidParameter, r)
		}
		seen[r] = struct{}{}
	}
	return nil
}

func (c Campaign) HasRecipient(email string) bool {
	return slices.Contains(c.Recipients, email)
}

// IsDeleted 收件人是否已经因为退信或者退订被移除
func (c Campaign) IsDeleted(email string) bool {
	return slices.Contains(c.DeletedRecipients, NormalizeEmail(email))
}

// NormalizeEmail 收件人统一保存成去掉首尾空白的小写形式，比较之前也要先转换
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
