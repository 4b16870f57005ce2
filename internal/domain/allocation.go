package domain

// AllocationStrategy 分配策略
type AllocationStrategy string

const (
	AllocationStrategyEqual      AllocationStrategy = "equal"      // 平均分配
	AllocationStrategyCapacity   AllocationStrategy = "capacity"   // 按可用额度比例分配
	AllocationStrategySequential AllocationStrategy = "sequential" // 按顺序填满
	AllocationStrategyManual     AllocationStrategy = "manual"     // 调用方手动指定
)

func (s AllocationStrategy) IsValid() bool {
	switch s {
	case AllocationStrategyEqual, AllocationStrategyCapacity,
		AllocationStrategySequential, AllocationStrategyManual:
		return true
	default:
		return false
	}
}

// AllocationPlan 分配计划。Shortfall > 0 说明额度不够，没能分完
type AllocationPlan struct {
	Allocation Allocation
	Requested  int
	Allocated  int
	Shortfall  int
}

func NewAllocationPlan(alloc Allocation, requested int) AllocationPlan {
	allocated := alloc.Total()
	return AllocationPlan{
		Allocation: alloc,
		Requested:  requested,
		Allocated:  allocated,
		Shortfall:  max(0, requested-allocated),
	}
}
