package removal

const TopicName = "recipient_removal_events"

// RecipientRemovedEvent 邮箱侧发现退信或者退订
type RecipientRemovedEvent struct {
	CampaignID int64  `json:"campaignId"`
	Email      string `json:"email"`
	Reason     string `json:"reason"`
}
