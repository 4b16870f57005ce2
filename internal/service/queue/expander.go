package queue

import (
	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
)

// walk 用一个游标顺着收件人列表走，每个分配条目按顺序消费 Count 个收件人。
// 收件人走完了就提前结束。fn 返回 false 也会结束。
func walk(recipients []string, alloc domain.Allocation, fn func(recipient string, accountID int64) bool) {
	cursor := 0
	for _, item := range alloc {
		for i := 0; i < item.Count; i++ {
			if cursor >= len(recipients) {
				return
			}
			if !fn(recipients[cursor], item.AccountID) {
				return
			}
			cursor++
		}
	}
}

// Expand 为每个分配到账号的收件人生成一个 pending 状态的队列条目。
// 返回的条目没有 ID，由调用方分配。
func Expand(recipients []string, alloc domain.Allocation, task domain.Task) ([]domain.QueueEntry, error) {
	entries := make([]domain.QueueEntry, 0, min(len(recipients), max(alloc.Total(), 0)))
	walk(recipients, alloc, func(recipient string, accountID int64) bool {
		entries = append(entries, domain.QueueEntry{
			TaskID:      task.ID,
			AccountID:   accountID,
			Recipient:   recipient,
			Subject:     task.Subject,
			Body:        task.Body,
			ScheduledAt: task.ScheduledAt,
			Status:      domain.EntryStatusPending,
		})
		return true
	})
	if len(entries) == 0 {
		return nil, errs.ErrEmptyExpansion
	}
	return entries, nil
}

// Locate 按照和 Expand 相同的顺序找到收件人所在的账号。
// 收件人落在分配总数之外的时候返回 false。
func Locate(recipients []string, alloc domain.Allocation, recipient string) (int64, bool) {
	var (
		owner int64
		found bool
	)
	walk(recipients, alloc, func(r string, accountID int64) bool {
		if r == recipient {
			owner, found = accountID, true
			return false
		}
		return true
	})
	return owner, found
}
