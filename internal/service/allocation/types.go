package allocation

import (
	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
)

// Strategy 一轮分配。headroom 是每个目标账号还能再接收的数量，都大于 0；
// 返回值和 headroom 一一对应，任何一个都不能超过对应的 headroom。
type Strategy interface {
	Distribute(remaining int, headroom []int) []int
}

type Planner interface {
	// Plan 计算分配结果。非 Manual 策略在额度不足时会通过 Shortfall 报告差额
	Plan(req PlanRequest) (domain.AllocationPlan, error)
}

// PlanRequest 分配请求
type PlanRequest struct {
	RecipientCount int
	// Accounts 目标账号，顺序就是余数吸收和顺序填满时的遍历顺序
	Accounts []domain.Account
	Strategy domain.AllocationStrategy
	// Existing 已有的分配，不在 Accounts 里的账号保持不变
	Existing domain.Allocation
	// Manual 只有 Strategy 是 Manual 的时候才使用
	Manual domain.Allocation
}
