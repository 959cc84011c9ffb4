// Package risk implements the deterministic loan risk scorer used as the
// baseline and fallback for AI assessments. Everything here is pure: no I/O,
// no shared state, safe for concurrent use.
package risk

import (
	"fmt"
	"math"

	"loan-assessment-workers/internal/models"
)

const (
	ApprovalMinScore      = 0.65
	ApprovalMaxRiskScore  = 45.0
	ApprovalMinConfidence = 50.0

	// creditFactorWeight is the label shown on the Credit Score factor. The
	// scorer itself gives credit up to 0.40.
	creditFactorWeight = 0.35
)

type Breakdown struct {
	Credit       float64 `json:"credit"`
	LoanToIncome float64 `json:"loanToIncome"`
	Employment   float64 `json:"employment"`
	Experience   float64 `json:"experience"`
	ExistingDebt float64 `json:"existingDebt"`
}

func (b Breakdown) sum() float64 {
	return b.Credit + b.LoanToIncome + b.Employment + b.Experience + b.ExistingDebt
}

type ScoreResult struct {
	RawScore          float64         `json:"rawScore"`
	RiskScore         float64         `json:"riskScore"`
	Confidence        float64         `json:"confidence"`
	Decision          models.Decision `json:"decision"`
	DebtToIncomeRatio float64         `json:"debtToIncomeRatio"`
	Factors           []models.Factor `json:"factors"`
	Breakdown         Breakdown       `json:"breakdown"`
}

// Score computes the weighted risk score for an application. It is total over
// any numeric input.
func Score(app models.LoanApplication) ScoreResult {
	ratios := ComputeRatios(app)

	breakdown := Breakdown{
		Credit:       creditPoints(app.FinancialInfo.CreditScore),
		LoanToIncome: loanToIncomePoints(ratios.LoanToIncome),
		Employment:   employmentPoints(app.PersonalInfo.EmploymentStatus),
		Experience:   experiencePoints(app.PersonalInfo.YearsExperience),
		ExistingDebt: existingDebtPoints(ratios.ExistingDebtToIncome),
	}

	raw := clamp(breakdown.sum(), 0, 1)
	riskScore := (1 - raw) * 100
	confidence := math.Abs(raw-0.5) * 200

	return ScoreResult{
		RawScore:          raw,
		RiskScore:         riskScore,
		Confidence:        confidence,
		Decision:          Decide(raw, riskScore, confidence),
		DebtToIncomeRatio: ratios.DebtToIncome,
		Factors:           []models.Factor{CreditFactor(app.FinancialInfo.CreditScore)},
		Breakdown:         breakdown,
	}
}

// Decide applies the approval rule. The risk score clause is implied by the
// raw score clause under the current weights but is still checked.
func Decide(rawScore, riskScore, confidence float64) models.Decision {
	if rawScore >= ApprovalMinScore && riskScore <= ApprovalMaxRiskScore && confidence >= ApprovalMinConfidence {
		return models.DecisionApproved
	}
	return models.DecisionRejected
}

func CreditFactor(creditScore int) models.Factor {
	status := models.FactorNegative
	switch {
	case creditScore >= 700:
		status = models.FactorPositive
	case creditScore >= 600:
		status = models.FactorNeutral
	}
	return models.Factor{
		Name:        "Credit Score",
		Weight:      creditFactorWeight,
		Value:       float64(creditScore),
		Status:      status,
		Description: fmt.Sprintf("Credit score of %d", creditScore),
	}
}

func creditPoints(score int) float64 {
	switch {
	case score >= 750:
		return 0.40
	case score >= 700:
		return 0.32
	case score >= 650:
		return 0.24
	case score >= 600:
		return 0.16
	case score >= 550:
		return 0.08
	default:
		return 0
	}
}

func loanToIncomePoints(ratio float64) float64 {
	switch {
	case ratio <= 2:
		return 0.25
	case ratio <= 3:
		return 0.20
	case ratio <= 4:
		return 0.15
	case ratio <= 5:
		return 0.10
	case ratio <= 6:
		return 0.05
	default:
		return 0
	}
}

func employmentPoints(status models.EmploymentStatus) float64 {
	switch status {
	case models.EmploymentFullTime:
		return 0.20
	case models.EmploymentSelfEmployed:
		return 0.15
	case models.EmploymentPartTime:
		return 0.10
	default:
		return 0
	}
}

func experiencePoints(years int) float64 {
	switch {
	case years >= 5:
		return 0.10
	case years >= 3:
		return 0.08
	case years >= 2:
		return 0.06
	case years >= 1:
		return 0.04
	default:
		return 0
	}
}

// existingDebtPoints is the only bucket that can subtract from the score.
func existingDebtPoints(ratio float64) float64 {
	switch {
	case ratio <= 0.20:
		return 0.05
	case ratio <= 0.30:
		return 0.03
	case ratio <= 0.40:
		return 0.01
	default:
		return -0.05
	}
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
