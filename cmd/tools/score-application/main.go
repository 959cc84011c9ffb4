package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"loan-assessment-workers/internal/common/validation"
	"loan-assessment-workers/internal/models"
	"loan-assessment-workers/internal/quote"
	"loan-assessment-workers/internal/risk"
)

// Report is everything the rule engine says about one application.
type Report struct {
	Validation  *validation.ValidationResult `json:"validation"`
	ScoreResult risk.ScoreResult             `json:"scoreResult"`
	Assessment  models.Assessment            `json:"assessment"`
	Ratios      risk.Ratios                  `json:"ratios"`
	Quote       *quote.Quote                 `json:"quote,omitempty"`
}

func main() {
	file := flag.String("file", "-", "Application JSON file, - for stdin")
	rate := flag.Float64("rate", 0, "Annual rate override in percent (0 uses the credit score tier)")
	flag.Parse()

	data, err := readInput(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	report, err := buildReport(data, *rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// buildReport accepts either a bare application or {"application": {...}}.
func buildReport(data []byte, rateOverride float64) (*Report, error) {
	var wrapper struct {
		Application *models.LoanApplication `json:"application"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse application: %w", err)
	}

	var app models.LoanApplication
	if wrapper.Application != nil {
		app = *wrapper.Application
	} else if err := json.Unmarshal(data, &app); err != nil {
		return nil, fmt.Errorf("parse application: %w", err)
	}

	validation.NormalizeApplication(&app)
	result, err := validation.ValidateStruct(app)
	if err != nil {
		return nil, err
	}

	score := risk.Score(app)
	report := &Report{
		Validation:  result,
		ScoreResult: score,
		Assessment:  risk.AssessmentFromScore(score),
		Ratios:      risk.ComputeRatios(app),
	}

	rate := rateOverride
	if rate == 0 {
		rate = quote.RateForCreditScore(app.FinancialInfo.CreditScore)
	}
	if q, err := quote.Calculate(app.LoanDetails.Amount, rate, app.LoanDetails.TermYears, app.LoanDetails.Currency); err == nil {
		report.Quote = q
	}

	return report, nil
}
