package sendloandecision

import "loan-assessment-workers/internal/models"

type Input struct {
	ApplicationID string                 `json:"applicationId"`
	Application   models.LoanApplication `json:"application"`
	Assessment    models.Assessment      `json:"assessment"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	EmailStatus    string `json:"emailStatus"`
	SMSStatus      string `json:"smsStatus"`
	SentAt         string `json:"sentAt"`
}

const (
	StatusSent     = "sent"
	StatusPartial  = "partial"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
	StatusSkipped  = "skipped"
)
