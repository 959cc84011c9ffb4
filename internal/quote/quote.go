// Package quote prices a loan from the applicant's credit tier and computes
// a fixed-payment amortization.
package quote

import (
	"errors"
	"math"

	"loan-assessment-workers/internal/currency"

	"github.com/shopspring/decimal"
)

var ErrInvalidTerms = errors.New("loan amount and term must be positive")

type Quote struct {
	Principal      decimal.Decimal `json:"principal"`
	AnnualRate     decimal.Decimal `json:"annualRate"` // percent
	TermMonths     int             `json:"termMonths"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	TotalPayment   decimal.Decimal `json:"totalPayment"`
	TotalInterest  decimal.Decimal `json:"totalInterest"`
	Currency       string          `json:"currency"`
	Symbol         string          `json:"symbol"`
	Formatted      Formatted       `json:"formatted"`
}

type Formatted struct {
	MonthlyPayment string `json:"monthlyPayment"`
	TotalPayment   string `json:"totalPayment"`
	TotalInterest  string `json:"totalInterest"`
	AnnualRate     string `json:"annualRate"`
}

type ScheduleEntry struct {
	Period           int             `json:"period"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	Total            decimal.Decimal `json:"total"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
}

// RateForCreditScore is the estimated APR, in percent, for a credit score.
func RateForCreditScore(score int) float64 {
	switch {
	case score < 600:
		return 8.5
	case score < 650:
		return 6.5
	case score < 700:
		return 5.0
	case score < 750:
		return 4.0
	default:
		return 3.2
	}
}

// Calculate amortizes amount over termYears at annualRate percent. A zero
// rate splits the principal evenly. The monthly payment is rounded to cents
// and the totals are what that rounded payment adds up to.
func Calculate(amount, annualRate float64, termYears int, currencyCode string) (*Quote, error) {
	if amount <= 0 || termYears <= 0 || annualRate < 0 {
		return nil, ErrInvalidTerms
	}

	principal := decimal.NewFromFloat(amount)
	months := termYears * 12
	payment := monthlyPayment(principal, annualRate, months)

	total := payment.Mul(decimal.NewFromInt(int64(months))).Round(2)
	interest := total.Sub(principal).Round(2)
	if interest.IsNegative() {
		interest = decimal.Zero
	}

	rate := decimal.NewFromFloat(annualRate)
	c, ok := currency.Lookup(currencyCode)
	if !ok {
		c = currency.Currency{Code: currencyCode, Symbol: currency.DefaultSymbol}
	}

	return &Quote{
		Principal:      principal,
		AnnualRate:     rate,
		TermMonths:     months,
		MonthlyPayment: payment,
		TotalPayment:   total,
		TotalInterest:  interest,
		Currency:       c.Code,
		Symbol:         c.Symbol,
		Formatted: Formatted{
			MonthlyPayment: currency.Format(payment.InexactFloat64(), c.Code),
			TotalPayment:   currency.Format(total.InexactFloat64(), c.Code),
			TotalInterest:  currency.Format(interest.InexactFloat64(), c.Code),
			AnnualRate:     rate.StringFixed(2) + "% APR",
		},
	}, nil
}

func monthlyPayment(principal decimal.Decimal, annualRate float64, months int) decimal.Decimal {
	monthlyRate := annualRate / 100 / 12
	if monthlyRate == 0 {
		return principal.Div(decimal.NewFromInt(int64(months))).Round(2)
	}

	// P * r * (1+r)^n / ((1+r)^n - 1)
	factor := math.Pow(1+monthlyRate, float64(months))
	payment := principal.InexactFloat64() * monthlyRate * factor / (factor - 1)
	return decimal.NewFromFloat(payment).Round(2)
}

// Schedule expands q into per-month entries. The last period absorbs
// rounding so the balance closes at exactly zero.
func (q *Quote) Schedule() []ScheduleEntry {
	monthlyRate := q.AnnualRate.Div(decimal.NewFromInt(1200))
	remaining := q.Principal
	entries := make([]ScheduleEntry, 0, q.TermMonths)

	for period := 1; period <= q.TermMonths; period++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		principalPart := q.MonthlyPayment.Sub(interest)
		if period == q.TermMonths || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}

		remaining = remaining.Sub(principalPart)
		entries = append(entries, ScheduleEntry{
			Period:           period,
			Principal:        principalPart,
			Interest:         interest,
			Total:            principalPart.Add(interest),
			RemainingBalance: remaining,
		})
		if remaining.IsZero() {
			break
		}
	}
	return entries
}
