package createloanapplicationrecord

import "loan-assessment-workers/internal/models"

type Input struct {
	UserID      string                 `json:"userId"`
	Application models.LoanApplication `json:"application"`
	Assessment  models.Assessment      `json:"assessment"`
}

type Output struct {
	ApplicationID     string  `json:"applicationId"`
	ApplicationStatus string  `json:"applicationStatus"`
	DebtToIncomeRatio float64 `json:"debtToIncomeRatio"`
	CreatedAt         string  `json:"createdAt"`
}
