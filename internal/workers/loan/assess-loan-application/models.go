package assessloanapplication

import "loan-assessment-workers/internal/models"

type Input struct {
	Application models.LoanApplication `json:"application"`
}

type Output struct {
	Assessment     models.Assessment       `json:"assessment"`
	Source         models.AssessmentSource `json:"source"`
	FallbackReason string                  `json:"fallbackReason,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// aiAssessment is the JSON object the model is asked to return.
type aiAssessment struct {
	Decision        models.Decision `json:"decision"`
	Confidence      float64         `json:"confidence"`
	RiskScore       float64         `json:"riskScore"`
	Reasoning       string          `json:"reasoning"`
	Factors         []models.Factor `json:"factors"`
	Recommendations []string        `json:"recommendations"`
}
