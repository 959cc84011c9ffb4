package risk

import "loan-assessment-workers/internal/models"

// Ratios are the derived affordability figures shared by the scorer, the AI
// prompt and the persisted application record.
type Ratios struct {
	LoanToIncome         float64 `json:"loanToIncome"`
	ExistingDebt         float64 `json:"existingDebt"`
	ExistingDebtToIncome float64 `json:"existingDebtToIncome"`
	DebtToIncome         float64 `json:"debtToIncome"`
	MonthlyPayment       float64 `json:"monthlyPayment"`
	PaymentToIncome      float64 `json:"paymentToIncome"`
}

// ComputeRatios never divides by zero: a zero income or term is replaced by 1.
func ComputeRatios(app models.LoanApplication) Ratios {
	income := divisor(app.PersonalInfo.AnnualIncome)
	term := divisor(float64(app.LoanDetails.TermYears))
	amount := app.LoanDetails.Amount

	existingDebt := ExistingDebt(app)
	monthly := (amount / term) / 12

	return Ratios{
		LoanToIncome:         amount / income,
		ExistingDebt:         existingDebt,
		ExistingDebtToIncome: existingDebt / income,
		DebtToIncome:         DebtToIncome(app),
		MonthlyPayment:       monthly,
		PaymentToIncome:      (monthly * 12) / income,
	}
}

// DebtToIncome is the ratio stored as debt_to_income_ratio. It is computed from
// the requested loan amount (amount*12/income), not from existing debt.
func DebtToIncome(app models.LoanApplication) float64 {
	return (app.LoanDetails.Amount * 12) / divisor(app.PersonalInfo.AnnualIncome)
}

func ExistingDebt(app models.LoanApplication) float64 {
	total := 0.0
	for _, loan := range app.FinancialInfo.ExistingLoanDetails {
		total += loan.Amount
	}
	return total
}

func divisor(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
