package delivery

const TopicName = "email_delivery_results"

// ResultEvent 投递服务发回的发送结果
type ResultEvent struct {
	EntryID      int64  `json:"entryId"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage"`
}
