package calculateloanquote

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"loan-assessment-workers/internal/common/logger"
	"loan-assessment-workers/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestInput() *Input {
	return &Input{
		Application: models.LoanApplication{
			PersonalInfo: models.PersonalInfo{
				FullName:         "Jane Doe",
				EmploymentStatus: models.EmploymentFullTime,
				AnnualIncome:     85000,
			},
			LoanDetails: models.LoanDetails{
				Amount:    100000,
				TermYears: 15,
				Currency:  "EUR",
			},
			FinancialInfo: models.FinancialInfo{
				CreditScore: 780,
			},
		},
	}
}

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func TestExecute_CreditTierRate(t *testing.T) {
	output, err := newTestHandler(t).Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	q := output.Quote
	assert.True(t, decimal.NewFromFloat(3.2).Equal(q.AnnualRate))
	assert.True(t, decimal.RequireFromString("700.24").Equal(q.MonthlyPayment))
	assert.Equal(t, "€700.24", q.Formatted.MonthlyPayment)
	assert.Equal(t, "EUR", q.Currency)
	assert.Empty(t, output.Schedule)
}

func TestExecute_RateOverrideAndSchedule(t *testing.T) {
	input := createTestInput()
	zero := 0.0
	input.AnnualRate = &zero
	input.IncludeSchedule = true
	input.Application.LoanDetails.Amount = 18000
	input.Application.LoanDetails.TermYears = 1

	output, err := newTestHandler(t).Execute(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(1500).Equal(output.Quote.MonthlyPayment))
	assert.True(t, output.Quote.TotalInterest.IsZero())
	assert.Len(t, output.Schedule, 12)
}

func TestExecute_InvalidTerms(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"zero amount", func(in *Input) { in.Application.LoanDetails.Amount = 0 }},
		{"negative amount", func(in *Input) { in.Application.LoanDetails.Amount = -5 }},
		{"zero term", func(in *Input) { in.Application.LoanDetails.TermYears = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := createTestInput()
			tt.mutate(input)

			_, err := newTestHandler(t).Execute(context.Background(), input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrQuoteInvalid))
		})
	}
}

func TestOutput_JSONShape(t *testing.T) {
	output, err := newTestHandler(t).Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	data, err := json.Marshal(output)
	require.NoError(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "700.24", decoded["quote"]["monthlyPayment"])
	assert.Equal(t, float64(180), decoded["quote"]["termMonths"])
	assert.Contains(t, decoded["quote"], "formatted")
}
