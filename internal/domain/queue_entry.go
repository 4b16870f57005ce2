package domain

// EntryStatus 队列条目状态
type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "pending"   // 刚生成，还没交给投递服务
	EntryStatusScheduled EntryStatus = "scheduled" // 已交给投递服务，等待发送
	EntryStatusSent      EntryStatus = "sent"      // 发送成功，终态
	EntryStatusFailed    EntryStatus = "failed"    // 发送失败，可以手动重发
)

var entryTransitions = map[EntryStatus][]EntryStatus{
	EntryStatusPending:   {EntryStatusScheduled},
	EntryStatusScheduled: {EntryStatusSent, EntryStatusFailed},
	EntryStatusFailed:    {EntryStatusScheduled},
}

func (s EntryStatus) CanTransitTo(next EntryStatus) bool {
	for _, st := range entryTransitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

func (s EntryStatus) IsTerminal() bool {
	return s == EntryStatusSent
}

// QueueEntry 一个收件人的一次发送
type QueueEntry struct {
	ID           int64
	TaskID       int64
	AccountID    int64
	Recipient    string
	Subject      string
	Body         string
	ScheduledAt  int64
	Status       EntryStatus
	SentAt       int64
	ErrorMessage string
	Version      int
	Ctime        int64
	Utime        int64
}

// DeliveryResult 投递服务回调的结果
type DeliveryResult struct {
	EntryID      int64
	Success      bool
	ErrorMessage string
}
