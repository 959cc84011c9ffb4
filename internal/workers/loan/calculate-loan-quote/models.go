package calculateloanquote

import (
	"loan-assessment-workers/internal/models"
	"loan-assessment-workers/internal/quote"
)

type Input struct {
	Application models.LoanApplication `json:"application"`
	// AnnualRate overrides the credit-tier rate, e.g. for promotional offers.
	AnnualRate      *float64 `json:"annualRate,omitempty"`
	IncludeSchedule bool     `json:"includeSchedule,omitempty"`
}

type Output struct {
	Quote    *quote.Quote          `json:"quote"`
	Schedule []quote.ScheduleEntry `json:"schedule,omitempty"`
}
