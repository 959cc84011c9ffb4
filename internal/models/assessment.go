package models

type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

type FactorStatus string

const (
	FactorPositive FactorStatus = "positive"
	FactorNeutral  FactorStatus = "neutral"
	FactorNegative FactorStatus = "negative"
)

type AssessmentSource string

const (
	SourceAI    AssessmentSource = "ai"
	SourceRules AssessmentSource = "rules"
	SourceError AssessmentSource = "error"
)

// Factor is one line of a decision explanation. Weight is a display label,
// not necessarily the weight used by the scorer.
type Factor struct {
	Name        string       `json:"name"`
	Weight      float64      `json:"impact"`
	Value       float64      `json:"value"`
	Status      FactorStatus `json:"status"`
	Description string       `json:"description"`
}

type Assessment struct {
	Decision        Decision         `json:"decision"`
	Score           float64          `json:"score"`
	Confidence      float64          `json:"confidence"`
	RiskScore       float64          `json:"riskScore"`
	Reasoning       string           `json:"reasoning"`
	Factors         []Factor         `json:"factors"`
	Recommendations []string         `json:"recommendations"`
	Source          AssessmentSource `json:"source"`
	Error           string           `json:"error,omitempty"`
}

func (a Assessment) Approved() bool {
	return a.Decision == DecisionApproved
}

// Status is the lower-case form stored with the application record.
func (a Assessment) Status() string {
	if a.Approved() {
		return "approved"
	}
	return "rejected"
}

// Explanation is the JSON document persisted next to the decision.
type Explanation struct {
	Score           float64  `json:"score"`
	Confidence      float64  `json:"confidence"`
	Factors         []Factor `json:"factors"`
	Reasoning       string   `json:"reasoning"`
	Recommendations []string `json:"recommendations"`
}

func (a Assessment) Explanation() Explanation {
	factors := a.Factors
	if factors == nil {
		factors = []Factor{}
	}
	return Explanation{
		Score:           a.Score,
		Confidence:      a.Confidence,
		Factors:         factors,
		Reasoning:       a.Reasoning,
		Recommendations: a.Recommendations,
	}
}
