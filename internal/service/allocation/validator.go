package allocation

import (
	"fmt"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/hashicorp/go-multierror"
)

// Validator 校验分配结果。所有检查都会执行，错误会被收集起来一起返回
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(alloc domain.Allocation, recipientCount int, accounts []domain.Account) error {
	accountMap := make(map[int64]domain.Account, len(accounts))
	for _, acc := range accounts {
		accountMap[acc.ID] = acc
	}

	var err error
	// 1. 账号存在、启用、没有重复
	seen := make(map[int64]struct{}, len(alloc))
	for _, item := range alloc {
		if _, ok := seen[item.AccountID]; ok {
			err = multierror.Append(err, fmt.Errorf("%w: AccountID = %d", errs.ErrDuplicateAllocation, item.AccountID))
		}
		seen[item.AccountID] = struct{}{}
		acc, ok := accountMap[item.AccountID]
		if !ok {
			err = multierror.Append(err, fmt.Errorf("%w: AccountID = %d", errs.ErrAccountNotFound, item.AccountID))
			continue
		}
		if !acc.Active {
			err = multierror.Append(err, fmt.Errorf("%w: AccountID = %d", errs.ErrAccountInactive, item.AccountID))
		}
	}

	// 2. 数量不能为负
	for _, item := range alloc {
		if item.Count < 0 {
			err = multierror.Append(err, fmt.Errorf("%w: AccountID = %d, Count = %d",
				errs.ErrNegativeAllocation, item.AccountID, item.Count))
		}
	}

	// 3. 不能超过可用额度
	for _, item := range alloc {
		acc, ok := accountMap[item.AccountID]
		if !ok {
			continue
		}
		if available := acc.AvailableCapacity(); item.Count > available {
			err = multierror.Append(err, &errs.CapacityExceededError{
				AccountID: item.AccountID,
				Requested: item.Count,
				Available: available,
			})
		}
	}

	// 4. 总数必须等于收件人数量
	if total := alloc.Total(); total != recipientCount {
		err = multierror.Append(err, &errs.IncompleteAllocationError{
			Allocated: total,
			Required:  recipientCount,
		})
	}
	return err
}
