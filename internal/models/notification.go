package models

const (
	NotificationStatusSent     = "sent"
	NotificationStatusPartial  = "partial"
	NotificationStatusFailed   = "failed"
	NotificationStatusDisabled = "disabled"
)

type Notification struct {
	ID            string                 `json:"id"`
	ApplicationID string                 `json:"applicationId"`
	Type          string                 `json:"type"`    // "loan_approved", "loan_rejected"
	Channel       string                 `json:"channel"` // "email", "sms"
	Status        string                 `json:"status"`
	Payload       map[string]interface{} `json:"payload"`
	SentAt        string                 `json:"sentAt"`
}

type NotificationTemplate struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	SMS     string `json:"sms"`
}
