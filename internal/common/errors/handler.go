package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

type JobAction string

const (
	ActionFail  JobAction = "fail"
	ActionThrow JobAction = "throw"
)

type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError fails the job with retries for retryable codes while the job
// still has retries left, and throws a BPMN error otherwise.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	action, retries := Resolve(stdErr, job.Retries)
	h.logError(job, stdErr, bpmnErr, action, retries)

	varsJSON, mErr := json.Marshal(bpmnErr.ToErrorVariables())
	if mErr != nil {
		varsJSON = []byte("{}")
	}

	switch action {
	case ActionFail:
		cmd, vErr := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retries).
			ErrorMessage(bpmnErr.Message).
			VariablesFromString(string(varsJSON))
		if vErr != nil {
			h.logSendError(job, vErr)
			return
		}
		if _, sErr := cmd.Send(ctx); sErr != nil {
			h.logSendError(job, sErr)
		}
	default:
		cmd, vErr := client.NewThrowErrorCommand().
			JobKey(job.Key).
			ErrorCode(bpmnErr.Code).
			ErrorMessage(bpmnErr.Message).
			VariablesFromString(string(varsJSON))
		if vErr != nil {
			h.logSendError(job, vErr)
			return
		}
		if _, sErr := cmd.Send(ctx); sErr != nil {
			h.logSendError(job, sErr)
		}
	}
}

// Resolve decides between failing with retries and throwing. The retries left
// on the job cap the count granted for the code; zero raises an incident.
func Resolve(stdErr *StandardError, jobRetries int32) (JobAction, int32) {
	if !stdErr.Retryable {
		return ActionThrow, 0
	}
	granted := int32(GetRetryCount(stdErr.Code))
	if granted == 0 || jobRetries <= 0 {
		return ActionThrow, 0
	}
	if jobRetries-1 < granted {
		granted = jobRetries - 1
	}
	return ActionFail, granted
}

func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError, action JobAction, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":        job.Key,
		"jobType":       job.Type,
		"errorCode":     string(stdErr.Code),
		"message":       bpmnErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"action":        string(action),
		"retries":       retries,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"workflowKey":   job.ProcessInstanceKey,
	})
}

func (h *ErrorHandler) logSendError(job entities.Job, err error) {
	h.logger.Error("failed to report job error", map[string]interface{}{
		"jobKey": job.Key,
		"error":  err.Error(),
	})
}
