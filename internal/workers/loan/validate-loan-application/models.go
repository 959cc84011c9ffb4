package validateloanapplication

import (
	"loan-assessment-workers/internal/common/validation"
	"loan-assessment-workers/internal/models"
)

type Input struct {
	Application map[string]interface{} `json:"application"`
	UserID      string                 `json:"userId,omitempty"`
}

type Output struct {
	IsValid          bool                         `json:"isValid"`
	ValidationErrors []validation.ValidationError `json:"validationErrors"`
	Application      *models.LoanApplication      `json:"application,omitempty"`
}
