package allocation

// SequentialStrategy 按顺序把每个账号填满
type SequentialStrategy struct{}

func NewSequentialStrategy() *SequentialStrategy {
	return &SequentialStrategy{}
}

func (s *SequentialStrategy) Distribute(remaining int, headroom []int) []int {
	shares := make([]int, len(headroom))
	for i, h := range headroom {
		if remaining <= 0 {
			break
		}
		shares[i] = min(h, remaining)
		remaining -= shares[i]
	}
	return shares
}
