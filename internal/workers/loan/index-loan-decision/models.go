package indexloandecision

import (
	"loan-assessment-workers/internal/models"
	"loan-assessment-workers/internal/risk"
)

type Input struct {
	ApplicationID string                 `json:"applicationId"`
	UserID        string                 `json:"userId"`
	Application   models.LoanApplication `json:"application"`
	Assessment    models.Assessment      `json:"assessment"`
}

type Output struct {
	Indexed     bool   `json:"indexed"`
	DocumentID  string `json:"documentId"`
	IndexResult string `json:"indexResult"`
}

// DecisionDocument is the shape stored in the decision index.
type DecisionDocument struct {
	ApplicationID string                  `json:"applicationId"`
	UserID        string                  `json:"userId,omitempty"`
	Decision      models.Decision         `json:"decision"`
	Source        models.AssessmentSource `json:"source"`
	Score         float64                 `json:"score"`
	RiskScore     float64                 `json:"riskScore"`
	Confidence    float64                 `json:"confidence"`
	Reasoning     string                  `json:"reasoning"`
	Employment    string                  `json:"employment"`
	CreditScore   int                     `json:"creditScore"`
	Amount        float64                 `json:"amount"`
	Currency      string                  `json:"currency"`
	TermYears     int                     `json:"termYears"`
	Ratios        risk.Ratios             `json:"ratios"`
	Factors       []models.Factor         `json:"factors"`
	Timestamp     string                  `json:"timestamp"`
}
