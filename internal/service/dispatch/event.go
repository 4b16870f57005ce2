package dispatch

import "github.com/chimalongy/emailsenderserverless-sub001/internal/domain"

const (
	ScheduleTopic = "email_schedule_events"
	SendNowTopic  = "email_send_now_events"
)

// EntryMessage 队列条目在消息里的形态
type EntryMessage struct {
	EntryID     int64  `json:"entryId"`
	AccountID   int64  `json:"accountId"`
	Recipient   string `json:"recipient"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	ScheduledAt int64  `json:"scheduledAt"`
}

// ScheduleEvent 一个任务可能被拆成多条消息，Offset 是本批第一个条目在任务里的下标
type ScheduleEvent struct {
	TaskID      int64          `json:"taskId"`
	ScheduledAt int64          `json:"scheduledAt"`
	SendRate    int            `json:"sendRate"`
	Offset      int            `json:"offset"`
	Total       int            `json:"total"`
	Entries     []EntryMessage `json:"entries"`
}

type SendNowEvent struct {
	Entry EntryMessage `json:"entry"`
}

func newEntryMessage(e domain.QueueEntry) EntryMessage {
	return EntryMessage{
		EntryID:     e.ID,
		AccountID:   e.AccountID,
		Recipient:   e.Recipient,
		Subject:     e.Subject,
		Body:        e.Body,
		ScheduledAt: e.ScheduledAt,
	}
}
