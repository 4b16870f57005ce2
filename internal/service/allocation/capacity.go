package allocation

// CapacityStrategy 按可用额度比例分配，最后一个账号吸收余数
type CapacityStrategy struct{}

func NewCapacityStrategy() *CapacityStrategy {
	return &CapacityStrategy{}
}

func (s *CapacityStrategy) Distribute(remaining int, headroom []int) []int {
	n := len(headroom)
	shares := make([]int, n)
	if n == 0 || remaining <= 0 {
		return shares
	}
	total := 0
	for _, h := range headroom {
		total += h
	}
	if total == 0 {
		return shares
	}
	distributed := 0
	for i := 0; i < n-1; i++ {
		// remaining 比总额度大的时候，比例结果可能超过 headroom
		shares[i] = min(remaining*headroom[i]/total, headroom[i])
		distributed += shares[i]
	}
	shares[n-1] = min(headroom[n-1], remaining-distributed)
	return shares
}
