package allocation

// EqualStrategy 平均分配，最后一个账号吸收余数
type EqualStrategy struct{}

func NewEqualStrategy() *EqualStrategy {
	return &EqualStrategy{}
}

func (s *EqualStrategy) Distribute(remaining int, headroom []int) []int {
	n := len(headroom)
	shares := make([]int, n)
	if n == 0 || remaining <= 0 {
		return shares
	}
	share := remaining / n
	distributed := 0
	for i := 0; i < n-1; i++ {
		shares[i] = min(share, headroom[i])
		distributed += shares[i]
	}
	shares[n-1] = min(headroom[n-1], remaining-distributed)
	return shares
}
