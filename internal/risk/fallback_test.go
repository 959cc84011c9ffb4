package risk

import (
	"errors"
	"testing"

	"loan-assessment-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFallback_Approved(t *testing.T) {
	assessment := Fallback(createTestApplication())

	assert.Equal(t, models.DecisionApproved, assessment.Decision)
	assert.Equal(t, models.SourceRules, assessment.Source)
	assert.Equal(t, 1.0, assessment.Score)
	assert.Equal(t, 100.0, assessment.Confidence)
	assert.Equal(t, 0.0, assessment.RiskScore)
	assert.Equal(t, "Fallback assessment: APPROVED based on rule-based scoring.", assessment.Reasoning)
	assert.Equal(t, []string{
		"Consider setting up automatic payments",
		"Loan terms can be customized",
		"Pre-approval valid for 90 days",
	}, assessment.Recommendations)

	assert.Len(t, assessment.Factors, 1)
	assert.Equal(t, "Credit Score", assessment.Factors[0].Name)
	assert.Equal(t, models.FactorPositive, assessment.Factors[0].Status)
}

func TestFallback_Rejected(t *testing.T) {
	app := createTestApplication()
	app.FinancialInfo.CreditScore = 580
	app.PersonalInfo.EmploymentStatus = models.EmploymentPartTime

	assessment := Fallback(app)

	assert.Equal(t, models.DecisionRejected, assessment.Decision)
	assert.Equal(t, "Fallback assessment: REJECTED based on rule-based scoring.", assessment.Reasoning)
	assert.Equal(t, []string{
		"Improve credit score for better chances",
		"Consider a co-signer",
		"Reduce existing debt",
	}, assessment.Recommendations)
	assert.Equal(t, models.FactorNegative, assessment.Factors[0].Status)
}

func TestFallback_RecommendationsAreCopies(t *testing.T) {
	first := Fallback(createTestApplication())
	first.Recommendations[0] = "changed"

	second := Fallback(createTestApplication())
	assert.Equal(t, "Consider setting up automatic payments", second.Recommendations[0])
}

func TestTechnicalError(t *testing.T) {
	assessment := TechnicalError(errors.New("upstream unavailable"))

	assert.Equal(t, models.DecisionRejected, assessment.Decision)
	assert.Equal(t, 0.0, assessment.Confidence)
	assert.Equal(t, 100.0, assessment.RiskScore)
	assert.Equal(t, TechnicalErrorReasoning, assessment.Reasoning)
	assert.Empty(t, assessment.Factors)
	assert.NotNil(t, assessment.Factors)
	assert.Equal(t, []string{
		"Please resubmit your application",
		"Contact support if the issue persists",
	}, assessment.Recommendations)
	assert.Equal(t, "upstream unavailable", assessment.Error)
	assert.Equal(t, models.SourceError, assessment.Source)

	assert.Empty(t, TechnicalError(nil).Error)
}
