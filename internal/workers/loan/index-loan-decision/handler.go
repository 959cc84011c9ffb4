package indexloandecision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "loan-assessment-workers/internal/common/errors"
	"loan-assessment-workers/internal/common/logger"
	"loan-assessment-workers/internal/common/metrics"
	"loan-assessment-workers/internal/models"
	"loan-assessment-workers/internal/risk"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	TaskType = "index-loan-decision"
)

var (
	ErrDecisionIndexFailed  = errors.New("DECISION_INDEX_FAILED")
	ErrClusterUnreachable   = errors.New("ELASTICSEARCH_CONNECTION_FAILED")
	ErrMissingApplicationID = errors.New("missing applicationId")
)

type Handler struct {
	config     *Config
	client     *elasticsearch.Client
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
	now        func() time.Time
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		client:     client,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
		now:        time.Now,
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
		h.failJob(client, job, apperrors.NewParseError(err), start)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		if errors.Is(err, ErrClusterUnreachable) {
			h.failJob(client, job, apperrors.NewElasticsearchConnectionFailedError(err), start)
			return
		}
		h.failJob(client, job, apperrors.NewDecisionIndexFailedError(input.ApplicationID, err), start)
		return
	}

	h.completeJob(client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, fmt.Errorf("%w: %w", ErrDecisionIndexFailed, ErrMissingApplicationID)
	}

	body, err := json.Marshal(h.buildDocument(input))
	if err != nil {
		return nil, fmt.Errorf("%w: marshal document: %v", ErrDecisionIndexFailed, err)
	}

	req := esapi.IndexRequest{
		Index:      h.config.Index,
		DocumentID: input.ApplicationID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, h.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrDecisionIndexFailed, ErrClusterUnreachable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrDecisionIndexFailed, res.Status())
	}

	var indexResp struct {
		ID     string `json:"_id"`
		Result string `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&indexResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrDecisionIndexFailed, err)
	}

	h.logger.Info("loan decision indexed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"index":         h.config.Index,
		"result":        indexResp.Result,
	})

	return &Output{
		Indexed:     true,
		DocumentID:  indexResp.ID,
		IndexResult: indexResp.Result,
	}, nil
}

func (h *Handler) buildDocument(input *Input) DecisionDocument {
	app := input.Application
	a := input.Assessment

	factors := a.Factors
	if factors == nil {
		factors = []models.Factor{}
	}

	return DecisionDocument{
		ApplicationID: input.ApplicationID,
		UserID:        input.UserID,
		Decision:      a.Decision,
		Source:        a.Source,
		Score:         a.Score,
		RiskScore:     a.RiskScore,
		Confidence:    a.Confidence,
		Reasoning:     a.Reasoning,
		Employment:    string(app.PersonalInfo.EmploymentStatus),
		CreditScore:   app.FinancialInfo.CreditScore,
		Amount:        app.LoanDetails.Amount,
		Currency:      app.LoanDetails.Currency,
		TermYears:     app.LoanDetails.TermYears,
		Ratios:        risk.ComputeRatios(app),
		Factors:       factors,
		Timestamp:     h.now().UTC().Format(time.RFC3339),
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.RecordJobCompleted(TaskType, time.Since(start).Seconds())
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *apperrors.StandardError, start time.Time) {
	metrics.RecordJobFailed(TaskType, string(stdErr.Code), time.Since(start).Seconds())
	h.errHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
