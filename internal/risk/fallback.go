package risk

import (
	"fmt"

	"loan-assessment-workers/internal/models"
)

const TechnicalErrorReasoning = "Technical error occurred during assessment. Application rejected for safety."

var (
	approvedRecommendations = []string{
		"Consider setting up automatic payments",
		"Loan terms can be customized",
		"Pre-approval valid for 90 days",
	}
	rejectedRecommendations = []string{
		"Improve credit score for better chances",
		"Consider a co-signer",
		"Reduce existing debt",
	}
	technicalErrorRecommendations = []string{
		"Please resubmit your application",
		"Contact support if the issue persists",
	}
)

// Fallback builds the rule-based assessment used when the AI assessment is
// unavailable.
func Fallback(app models.LoanApplication) models.Assessment {
	return AssessmentFromScore(Score(app))
}

func AssessmentFromScore(result ScoreResult) models.Assessment {
	recommendations := rejectedRecommendations
	if result.Decision == models.DecisionApproved {
		recommendations = approvedRecommendations
	}

	return models.Assessment{
		Decision:        result.Decision,
		Score:           result.RawScore,
		Confidence:      result.Confidence,
		RiskScore:       result.RiskScore,
		Reasoning:       fmt.Sprintf("Fallback assessment: %s based on rule-based scoring.", result.Decision),
		Factors:         append([]models.Factor(nil), result.Factors...),
		Recommendations: append([]string(nil), recommendations...),
		Source:          models.SourceRules,
	}
}

// TechnicalError is the rejection returned when no assessment could be
// produced at all.
func TechnicalError(err error) models.Assessment {
	a := models.Assessment{
		Decision:        models.DecisionRejected,
		Score:           0,
		Confidence:      0,
		RiskScore:       100,
		Reasoning:       TechnicalErrorReasoning,
		Factors:         []models.Factor{},
		Recommendations: append([]string(nil), technicalErrorRecommendations...),
		Source:          models.SourceError,
	}
	if err != nil {
		a.Error = err.Error()
	}
	return a
}
