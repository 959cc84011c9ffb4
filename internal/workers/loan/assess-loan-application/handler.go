package assessloanapplication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	commonhttp "loan-assessment-workers/internal/common/http"
	"loan-assessment-workers/internal/common/logger"
	"loan-assessment-workers/internal/common/metrics"
	"loan-assessment-workers/internal/common/observability"
	"loan-assessment-workers/internal/models"
	"loan-assessment-workers/internal/risk"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	TaskType = "assess-loan-application"

	confidenceThreshold = 50.0
)

var (
	ErrAIDisabled         = errors.New("AI_DISABLED")
	ErrAIAssessmentFailed = errors.New("AI_ASSESSMENT_FAILED")
	ErrAITimeout          = errors.New("AI_ASSESSMENT_TIMEOUT")
	ErrAIResponseInvalid  = errors.New("AI_RESPONSE_INVALID")
)

type Handler struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: commonhttp.NewClient(config.Timeout),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		// The process still needs a decision to show the applicant.
		h.logger.Error("failed to parse job variables", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		assessment := risk.TechnicalError(err)
		h.completeJob(client, job, &Output{
			Assessment:     assessment,
			Source:         models.SourceError,
			FallbackReason: "PARSE_ERROR",
		}, start)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, _ := h.Execute(ctx, &input)
	h.completeJob(client, job, output, start)
}

// Execute asks the model for an assessment and falls back to rule-based
// scoring on any failure. The model is called at most once.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := otel.Tracer(observability.TracerName).Start(ctx, "loan.assessment.ai")
	defer span.End()

	assessment, err := h.assess(ctx, input.Application)
	if err == nil {
		span.SetAttributes(attribute.String("loan.assessment.source", string(models.SourceAI)))
		metrics.RecordDecision(string(assessment.Decision), string(models.SourceAI), assessment.RiskScore)
		h.logger.Info("AI assessment completed", map[string]interface{}{
			"decision":   assessment.Decision,
			"confidence": assessment.Confidence,
			"riskScore":  assessment.RiskScore,
		})
		return &Output{Assessment: *assessment, Source: models.SourceAI}, nil
	}

	reason := fallbackReason(err)
	span.SetAttributes(
		attribute.String("loan.assessment.source", string(models.SourceRules)),
		attribute.String("loan.assessment.fallback_reason", reason),
	)
	if !errors.Is(err, ErrAIDisabled) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	fallback := risk.Fallback(input.Application)
	metrics.RecordFallback(reason)
	metrics.RecordDecision(string(fallback.Decision), string(fallback.Source), fallback.RiskScore)

	h.logger.Warn("AI assessment unavailable, using rule-based fallback", map[string]interface{}{
		"reason":   reason,
		"error":    err,
		"decision": fallback.Decision,
	})

	return &Output{
		Assessment:     fallback,
		Source:         models.SourceRules,
		FallbackReason: err.Error(),
	}, nil
}

func (h *Handler) assess(ctx context.Context, app models.LoanApplication) (*models.Assessment, error) {
	if !h.config.Enabled() {
		return nil, ErrAIDisabled
	}

	content, err := h.complete(ctx, buildPrompt(app))
	if err != nil {
		return nil, err
	}

	return parseAssessment(content)
}

func (h *Handler) complete(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model: h.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: h.config.Temperature,
		MaxTokens:   h.config.MaxTokens,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + h.config.APIKey,
	}

	url := strings.TrimRight(h.config.BaseURL, "/") + "/v1/chat/completions"
	body, err := h.client.PostJSON(ctx, url, headers, req)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", fmt.Errorf("%w: %v", ErrAITimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrAIAssessmentFailed, err)
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrAIResponseInvalid, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrAIResponseInvalid)
	}
	return resp.Choices[0].Message.Content, nil
}

// parseAssessment decodes the model output and applies the confidence
// threshold. A zero decision, confidence or riskScore counts as missing.
func parseAssessment(content string) (*models.Assessment, error) {
	var ai aiAssessment
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &ai); err != nil {
		return nil, fmt.Errorf("%w: invalid AI response format: %v", ErrAIResponseInvalid, err)
	}

	if ai.Decision == "" || ai.Confidence == 0 || ai.RiskScore == 0 {
		return nil, fmt.Errorf("%w: incomplete AI assessment", ErrAIResponseInvalid)
	}
	if ai.Decision != models.DecisionApproved && ai.Decision != models.DecisionRejected {
		return nil, fmt.Errorf("%w: unknown decision %q", ErrAIResponseInvalid, ai.Decision)
	}

	if ai.Confidence < confidenceThreshold {
		ai.Decision = models.DecisionRejected
		ai.Reasoning = fmt.Sprintf("%s Additionally, AI confidence (%s%%) is below the 50%% threshold required for approval.",
			ai.Reasoning, formatNumber(ai.Confidence))
	}

	factors := ai.Factors
	if factors == nil {
		factors = []models.Factor{}
	}
	recommendations := ai.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}

	return &models.Assessment{
		Decision:        ai.Decision,
		Score:           math.Max(0, math.Min(1, 1-ai.RiskScore/100)),
		Confidence:      ai.Confidence,
		RiskScore:       ai.RiskScore,
		Reasoning:       ai.Reasoning,
		Factors:         factors,
		Recommendations: recommendations,
		Source:          models.SourceAI,
	}, nil
}

func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func formatNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// fallbackReason is the metrics label for a failed AI assessment.
func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrAIDisabled):
		return "disabled"
	case errors.Is(err, ErrAITimeout):
		return "timeout"
	case errors.Is(err, ErrAIResponseInvalid):
		return "invalid_response"
	default:
		return "upstream_error"
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	metrics.RecordJobCompleted(TaskType, time.Since(start).Seconds())
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
		"source": output.Source,
	})
}
