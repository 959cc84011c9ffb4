package createloanapplicationrecord

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "loan-assessment-workers/internal/common/errors"
	"loan-assessment-workers/internal/common/logger"
	"loan-assessment-workers/internal/common/metrics"
	"loan-assessment-workers/internal/risk"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "create-loan-application-record"

	submissionKeyPrefix = "loan:submission:"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateSubmission  = errors.New("DUPLICATE_SUBMISSION")
)

type Handler struct {
	config     *Config
	db         *sql.DB
	redis      redis.Cmdable
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

// NewHandler accepts a nil redis client, in which case duplicate
// submissions are not detected.
func NewHandler(config *Config, db *sql.DB, rdb redis.Cmdable, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		redis:      rdb,
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
		h.failJob(client, job, standardError(err), start)
		return
	}

	h.completeJob(client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	fingerprint, err := Fingerprint(input)
	if err != nil {
		return nil, fmt.Errorf("%w: fingerprint: %v", ErrDatabaseInsertFailed, err)
	}

	claimed, err := h.claimSubmission(ctx, fingerprint, input.UserID)
	if err != nil {
		return nil, err
	}

	out, err := h.insert(ctx, input)
	if err != nil {
		if claimed {
			h.releaseSubmission(fingerprint)
		}
		return nil, err
	}
	return out, nil
}

func (h *Handler) insert(ctx context.Context, input *Input) (*Output, error) {
	app := input.Application
	assessment := input.Assessment

	appID := uuid.New().String()
	createdAt := time.Now().UTC()
	dti := risk.DebtToIncome(app)

	explanationJSON, err := json.Marshal(assessment.Explanation())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal explanation: %v", ErrDatabaseInsertFailed, err)
	}

	source := string(assessment.Source)
	if source == "" {
		source = "rules"
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO loan_applications (
			id, user_id, loan_amount, loan_purpose, employment_type, annual_income,
			credit_score, loan_term, collateral_value, debt_to_income_ratio,
			credit_history_length, status, ai_decision, ai_confidence, risk_score,
			explanation, assessment_source, currency, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		appID,
		input.UserID,
		app.LoanDetails.Amount,
		app.LoanDetails.Purpose,
		string(app.PersonalInfo.EmploymentStatus),
		app.PersonalInfo.AnnualIncome,
		app.FinancialInfo.CreditScore,
		app.LoanDetails.TermYears,
		app.FinancialInfo.CollateralValue(),
		dti,
		app.PersonalInfo.YearsExperience,
		assessment.Status(),
		assessment.Reasoning,
		assessment.Confidence,
		assessment.RiskScore,
		explanationJSON,
		source,
		app.LoanDetails.Currency,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %w", ErrDatabaseInsertFailed, err)
	}

	h.writeAudit(ctx, input, appID, createdAt)

	h.logger.Info("loan application record created", map[string]interface{}{
		"applicationId": appID,
		"userId":        input.UserID,
		"status":        assessment.Status(),
		"source":        source,
	})

	return &Output{
		ApplicationID:     appID,
		ApplicationStatus: assessment.Status(),
		DebtToIncomeRatio: dti,
		CreatedAt:         createdAt.Format(time.RFC3339),
	}, nil
}

func standardError(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrDuplicateSubmission):
		return apperrors.NewDuplicateSubmissionError(err.Error())
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return apperrors.NewDatabaseConnectionFailedError(err)
	default:
		return apperrors.NewDatabaseInsertFailedError(err)
	}
}

// writeAudit is best effort: a failed audit insert is logged only.
func (h *Handler) writeAudit(ctx context.Context, input *Input, appID string, createdAt time.Time) {
	details, err := json.Marshal(map[string]interface{}{
		"decision":   input.Assessment.Decision,
		"source":     input.Assessment.Source,
		"loanAmount": input.Application.LoanDetails.Amount,
		"currency":   input.Application.LoanDetails.Currency,
	})
	if err != nil {
		details = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, user_id, action, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New().String(),
		input.UserID,
		"loan_application_created",
		appID,
		details,
		createdAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": appID,
		})
	}
}

// claimSubmission reports whether this call owns the submission key. Redis
// being unreachable never blocks persistence.
func (h *Handler) claimSubmission(ctx context.Context, fingerprint, userID string) (bool, error) {
	if h.redis == nil {
		return false, nil
	}

	ok, err := h.redis.SetNX(ctx, submissionKeyPrefix+fingerprint, userID, h.config.DuplicateWindow).Result()
	if err != nil {
		h.logger.Warn("duplicate submission check skipped", map[string]interface{}{
			"error": err,
		})
		return false, nil
	}
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrDuplicateSubmission, fingerprint)
	}
	return true, nil
}

func (h *Handler) releaseSubmission(fingerprint string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.redis.Del(ctx, submissionKeyPrefix+fingerprint).Err(); err != nil {
		h.logger.Warn("failed to release submission key", map[string]interface{}{
			"error": err,
		})
	}
}

// Fingerprint identifies a submission by user and application content.
func Fingerprint(input *Input) (string, error) {
	data, err := json.Marshal(input.Application)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(append([]byte(input.UserID+"|"), data...))
	return hex.EncodeToString(sum[:]), nil
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
	_, err = cmd.Send(context.Background())
	if err != nil {
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
