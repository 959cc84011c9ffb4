package assessloanapplication

import (
	"fmt"
	"strings"

	"loan-assessment-workers/internal/currency"
	"loan-assessment-workers/internal/models"
	"loan-assessment-workers/internal/risk"
)

const systemPrompt = "You are an expert loan underwriter. Always respond with valid JSON only. " +
	"Be thorough in risk assessment and consider all financial factors."

const lendingCriteria = `LENDING CRITERIA:
- Credit Score: 580+ (minimum), 700+ (preferred)
- Debt-to-Income: <40% (maximum), <30% (preferred)
- Loan-to-Income: <5x (maximum), <3x (preferred)
- Payment-to-Income: <28% (maximum), <20% (preferred)
- Employment: Stable employment preferred
- Age: 18-65 for standard terms

Consider fraud indicators, income stability, industry risk, and regional economic factors.`

const responseFormat = `Return ONLY a valid JSON object with this exact structure:
{
  "decision": "APPROVED" | "REJECTED",
  "confidence": number,
  "riskScore": number,
  "reasoning": "detailed explanation",
  "factors": [
    {
      "name": "factor name",
      "impact": number,
      "status": "positive" | "negative" | "neutral",
      "description": "explanation"
    }
  ],
  "recommendations": ["recommendation 1", "recommendation 2", "recommendation 3"]
}`

func buildPrompt(app models.LoanApplication) string {
	ratios := risk.ComputeRatios(app)
	code := app.LoanDetails.Currency
	p := app.PersonalInfo
	l := app.LoanDetails
	f := app.FinancialInfo

	var parts []string
	parts = append(parts, "You are an expert loan underwriter with 20+ years of experience. Analyze this loan application and provide a comprehensive assessment.")

	parts = append(parts, "\nAPPLICATION DATA:")
	parts = append(parts, fmt.Sprintf("- Applicant: %s, Age: %d", p.FullName, p.Age))
	parts = append(parts, fmt.Sprintf("- Employment: %s (%d years experience)", p.EmploymentStatus, p.YearsExperience))
	parts = append(parts, fmt.Sprintf("- Annual Income: %s", currency.Format(p.AnnualIncome, code)))
	parts = append(parts, fmt.Sprintf("- Credit Score: %d", f.CreditScore))
	parts = append(parts, fmt.Sprintf("- Loan Amount: %s", currency.Format(l.Amount, code)))
	parts = append(parts, fmt.Sprintf("- Loan Purpose: %s", l.Purpose))
	parts = append(parts, fmt.Sprintf("- Loan Term: %d years", l.TermYears))
	parts = append(parts, fmt.Sprintf("- Existing Loans: %d loans totaling %s", f.ExistingLoans, currency.Format(ratios.ExistingDebt, code)))
	parts = append(parts, fmt.Sprintf("- Collateral: %s", f.Collateral))

	parts = append(parts, "\nCALCULATED RATIOS:")
	parts = append(parts, fmt.Sprintf("- Loan-to-Income Ratio: %.2fx", ratios.LoanToIncome))
	parts = append(parts, fmt.Sprintf("- Debt-to-Income Ratio: %.1f%%", ratios.ExistingDebtToIncome*100))
	parts = append(parts, fmt.Sprintf("- Payment-to-Income Ratio: %.1f%%", ratios.PaymentToIncome*100))

	parts = append(parts, "\nASSESSMENT REQUIREMENTS:")
	parts = append(parts, `1. Provide a DECISION: "APPROVED" or "REJECTED"`)
	parts = append(parts, "2. Calculate CONFIDENCE SCORE (0-100%)")
	parts = append(parts, "3. Calculate RISK SCORE (0-100%, where higher = more risky)")
	parts = append(parts, "4. List KEY RISK FACTORS (positive and negative)")
	parts = append(parts, "5. Provide detailed REASONING")
	parts = append(parts, "6. Give specific RECOMMENDATIONS")

	parts = append(parts, "\n"+lendingCriteria)
	parts = append(parts, "\n"+responseFormat)

	return strings.Join(parts, "\n")
}
