package calculateloanquote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "loan-assessment-workers/internal/common/errors"
	"loan-assessment-workers/internal/common/logger"
	"loan-assessment-workers/internal/common/metrics"
	"loan-assessment-workers/internal/quote"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-loan-quote"
)

var (
	ErrQuoteInvalid = errors.New("QUOTE_INVALID")
)

type Handler struct {
	config     *Config
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
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
		h.failJob(client, job, apperrors.NewQuoteInvalidError(err.Error()), start)
		return
	}

	h.completeJob(client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	details := input.Application.LoanDetails

	rate := quote.RateForCreditScore(input.Application.FinancialInfo.CreditScore)
	if input.AnnualRate != nil {
		rate = *input.AnnualRate
	}

	q, err := quote.Calculate(details.Amount, rate, details.TermYears, details.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: amount=%v term=%d rate=%v: %v", ErrQuoteInvalid, details.Amount, details.TermYears, rate, err)
	}

	output := &Output{Quote: q}
	if input.IncludeSchedule {
		output.Schedule = q.Schedule()
	}

	h.logger.Info("loan quote calculated", map[string]interface{}{
		"annualRate":     rate,
		"termMonths":     q.TermMonths,
		"monthlyPayment": q.MonthlyPayment.String(),
		"currency":       q.Currency,
	})
	return output, nil
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
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *apperrors.StandardError, start time.Time) {
	metrics.RecordJobFailed(TaskType, string(stdErr.Code), time.Since(start).Seconds())
	h.errHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
