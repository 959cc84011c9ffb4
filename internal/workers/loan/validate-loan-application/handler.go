package validateloanapplication

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "loan-assessment-workers/internal/common/errors"
	"loan-assessment-workers/internal/common/logger"
	"loan-assessment-workers/internal/common/metrics"
	"loan-assessment-workers/internal/common/validation"
	"loan-assessment-workers/internal/models"
	"loan-assessment-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-loan-application"
)

var (
	ErrParse = errors.New("PARSE_ERROR")
)

//go:embed input_schema.json
var defaultSchemaJSON []byte

type Handler struct {
	config     *Config
	schema     map[string]interface{}
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		schema:     loadSchema(config.RegistryPath, log),
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
	}
}

// loadSchema prefers the registry's inputSchema so it can be tightened
// without a rebuild.
func loadSchema(path string, log logger.Logger) map[string]interface{} {
	if path != "" {
		schema, err := registrySchema(path)
		if err == nil {
			return schema
		}
		log.Warn("registry schema unavailable, using embedded schema", map[string]interface{}{
			"registryPath": path,
			"error":        err,
		})
	}

	var schema map[string]interface{}
	if err := json.Unmarshal(defaultSchemaJSON, &schema); err != nil {
		panic(fmt.Sprintf("embedded input schema: %v", err))
	}
	return schema
}

func registrySchema(path string) (map[string]interface{}, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	return reg.InputSchemaFor(TaskType)
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
		h.failJob(client, job, apperrors.NewApplicationValidationFailedError(err.Error()), start)
		return
	}

	h.completeJob(client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Application == nil {
		return &Output{
			IsValid: false,
			ValidationErrors: []validation.ValidationError{{
				Field:   "application",
				Message: "required field missing",
				Code:    "REQUIRED_FIELD_MISSING",
			}},
		}, nil
	}

	document := map[string]interface{}{"application": input.Application}
	if input.UserID != "" {
		document["userId"] = input.UserID
	}

	result, err := validation.ValidateAgainstSchema(h.schema, document)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		h.logger.Info("application failed schema validation", map[string]interface{}{
			"errors": result.GetErrorMessages(),
		})
		return &Output{IsValid: false, ValidationErrors: relativeToApplication(result.Errors)}, nil
	}

	app, err := decodeApplication(input.Application)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	validation.NormalizeApplication(app)

	result, err = validation.ValidateStruct(app)
	if err != nil {
		return nil, err
	}

	output := &Output{
		IsValid:          result.Valid,
		ValidationErrors: result.Errors,
		Application:      app,
	}
	if output.ValidationErrors == nil {
		output.ValidationErrors = []validation.ValidationError{}
	}

	h.logger.Info("application validated", map[string]interface{}{
		"isValid":    output.IsValid,
		"errorCount": len(output.ValidationErrors),
	})
	return output, nil
}

// relativeToApplication strips the leading "application." so schema and struct errors
// share one field naming.
func relativeToApplication(errs []validation.ValidationError) []validation.ValidationError {
	out := make([]validation.ValidationError, len(errs))
	for i, e := range errs {
		e.Field = strings.TrimPrefix(e.Field, "application.")
		out[i] = e
	}
	return out
}

func decodeApplication(raw map[string]interface{}) (*models.LoanApplication, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var app models.LoanApplication
	if err := json.Unmarshal(data, &app); err != nil {
		return nil, err
	}
	return &app, nil
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
