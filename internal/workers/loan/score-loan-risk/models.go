package scoreloanrisk

import (
	"loan-assessment-workers/internal/models"
	"loan-assessment-workers/internal/risk"
)

type Input struct {
	Application models.LoanApplication `json:"application"`
}

type Output struct {
	ScoreResult risk.ScoreResult  `json:"scoreResult"`
	Assessment  models.Assessment `json:"assessment"`
}
