package allocation

import (
	"fmt"
	"slices"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
)

// NewStrategies 默认的策略集合，Manual 不需要策略
func NewStrategies() map[domain.AllocationStrategy]Strategy {
	return map[domain.AllocationStrategy]Strategy{
		domain.AllocationStrategyEqual:      NewEqualStrategy(),
		domain.AllocationStrategyCapacity:   NewCapacityStrategy(),
		domain.AllocationStrategySequential: NewSequentialStrategy(),
	}
}

// planner 根据策略类型选择对应的 Strategy
type planner struct {
	strategies map[domain.AllocationStrategy]Strategy
	validator  *Validator
}

func NewPlanner(strategies map[domain.AllocationStrategy]Strategy, validator *Validator) Planner {
	return &planner{
		strategies: strategies,
		validator:  validator,
	}
}

func (p *planner) Plan(req PlanRequest) (domain.AllocationPlan, error) {
	if req.RecipientCount < 0 {
		return domain.AllocationPlan{}, fmt.Errorf("%w: RecipientCount = %d", errs.ErrInvalidParameter, req.RecipientCount)
	}
	if err := p.checkAccounts(req.Accounts); err != nil {
		return domain.AllocationPlan{}, err
	}

	if req.Strategy == domain.AllocationStrategyManual {
		// 手动分配不做计算，只校验
		if err := p.validator.Validate(req.Manual, req.RecipientCount, req.Accounts); err != nil {
			return domain.AllocationPlan{}, err
		}
		return domain.NewAllocationPlan(req.Manual.Compact(), req.RecipientCount), nil
	}

	strategy, ok := p.strategies[req.Strategy]
	if !ok {
		return domain.AllocationPlan{}, fmt.Errorf("%w: 无效的分配策略 %s", errs.ErrInvalidParameter, req.Strategy)
	}

	remaining := req.RecipientCount - req.Existing.Total()
	if remaining < 0 {
		return domain.AllocationPlan{}, fmt.Errorf("%w: 已有分配 %d 超过收件人数量 %d",
			errs.ErrInvalidParameter, req.Existing.Total(), req.RecipientCount)
	}

	headroom := make([]int, len(req.Accounts))
	for i, acc := range req.Accounts {
		if acc.Active {
			headroom[i] = max(0, acc.AvailableCapacity()-req.Existing.CountOf(acc.ID))
		}
	}
	added := p.distribute(strategy, remaining, headroom)
	return domain.NewAllocationPlan(p.merge(req.Existing, req.Accounts, added), req.RecipientCount), nil
}

// distribute 反复执行策略，直到分完或者所有账号都没有额度了。
// 单轮执行的时候，前面的账号被额度卡住之后剩下的数量会落空，所以要再来一轮。
func (p *planner) distribute(strategy Strategy, remaining int, headroom []int) []int {
	added := make([]int, len(headroom))
	for remaining > 0 {
		idx := make([]int, 0, len(headroom))
		left := make([]int, 0, len(headroom))
		for i := range headroom {
			if l := headroom[i] - added[i]; l > 0 {
				idx = append(idx, i)
				left = append(left, l)
			}
		}
		if len(idx) == 0 {
			return added
		}
		shares := strategy.Distribute(remaining, left)
		progressed := 0
		for k, i := range idx {
			share := min(max(shares[k], 0), left[k])
			added[i] += share
			progressed += share
		}
		if progressed == 0 {
			return added
		}
		remaining -= progressed
	}
	return added
}

// merge 已有分配的顺序不变，新账号按传入顺序追加到后面
func (p *planner) merge(existing domain.Allocation, accounts []domain.Account, added []int) domain.Allocation {
	res := slices.Clone(existing)
	for i, acc := range accounts {
		if added[i] == 0 {
			continue
		}
		idx := slices.IndexFunc(res, func(item domain.AllocationItem) bool {
			return item.AccountID == acc.ID
		})
		if idx >= 0 {
			res[idx].Count += added[i]
			continue
		}
		res = append(res, domain.AllocationItem{AccountID: acc.ID, Count: added[i]})
	}
	return res.Compact()
}

func (p *planner) checkAccounts(accounts []domain.Account) error {
	seen := make(map[int64]struct{}, len(accounts))
	hasCapacity := false
	for _, acc := range accounts {
		if _, ok := seen[acc.ID]; ok {
			return fmt.Errorf("%w: 账号重复 AccountID = %d", errs.ErrInvalidParameter, acc.ID)
		}
		seen[acc.ID] = struct{}{}
		if acc.Active && acc.AvailableCapacity() > 0 {
			hasCapacity = true
		}
	}
	if !hasCapacity {
		return errs.ErrNoCapacityAvailable
	}
	return nil
}
