package errs

import (
	"errors"
	"fmt"
)

// 定义统一的错误类型
var (
	ErrInvalidParameter = errors.New("参数错误")

	ErrNoCapacityAvailable  = errors.New("没有可用的发送额度")
	ErrCapacityExceeded     = errors.New("分配数量超过账号可用额度")
	ErrIncompleteAllocation = errors.New("分配总数与收件人数量不一致")
	ErrNegativeAllocation   = errors.New("分配数量不能为负数")
	ErrDuplicateAllocation  = errors.New("同一账号重复分配")
	ErrAllocationConflict   = errors.New("分配提交冲突")
	ErrAllocationFrozen     = errors.New("活动已经创建发送任务，分配不能再修改")

	ErrEmptyExpansion    = errors.New("没有可投递的队列条目")
	ErrRecipientNotFound = errors.New("收件人不存在")
	ErrRecipientRemoved  = errors.New("收件人已从活动中移除")

	ErrDispatchConflict  = errors.New("队列条目正在被其他请求发送")
	ErrInvalidTransition = errors.New("队列条目状态不允许该操作")
	ErrRateLimited       = errors.New("发送账号手动发送过于频繁")

	ErrAccountNotFound         = errors.New("发送账号不存在")
	ErrAccountInactive         = errors.New("发送账号未启用")
	ErrAccountDuplicate        = errors.New("发送账号重复")
	ErrCampaignNotFound        = errors.New("营销活动不存在")
	ErrCampaignVersionMismatch = errors.New("营销活动版本不匹配")
	ErrTaskNotFound            = errors.New("发送任务不存在")
	ErrEntryNotFound           = errors.New("队列条目不存在")
	ErrEntryDuplicate          = errors.New("队列条目重复")
	ErrIDGenerateFailed        = errors.New("ID生成失败")
)

// CapacityExceededError 某个账号的分配数量超过了可用额度
type CapacityExceededError struct {
	AccountID int64
	Requested int
	Available int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%s: AccountID = %d, Requested = %d, Available = %d",
		ErrCapacityExceeded.Error(), e.AccountID, e.Requested, e.Available)
}

func (e *CapacityExceededError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// IncompleteAllocationError 分配总数和收件人数量对不上
type IncompleteAllocationError struct {
	Allocated int
	Required  int
}

func (e *IncompleteAllocationError) Error() string {
	return fmt.Sprintf("%s: Allocated = %d, Required = %d",
		ErrIncompleteAllocation.Error(), e.Allocated, e.Required)
}

func (e *IncompleteAllocationError) Is(target error) bool {
	return target == ErrIncompleteAllocation
}
