package sendloandecision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "loan-assessment-workers/internal/common/errors"
	"loan-assessment-workers/internal/common/logger"
	"loan-assessment-workers/internal/common/metrics"
	"loan-assessment-workers/internal/common/validation"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	TaskType = "send-loan-decision"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config     *Config
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
	sesClient  SESService
	snsClient  SNSService
}

func NewHandler(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
		sesClient:  sesClient,
		snsClient:  snsClient,
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
		h.failJob(client, job, apperrors.NewNotificationSendFailedError("all", err), start)
		return
	}

	h.completeJob(client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	notificationID := uuid.New().String()
	email := input.Application.PersonalInfo.Email
	phone := input.Application.PersonalInfo.Phone

	sendEmail := h.config.EmailEnabled && h.sesClient != nil && email != ""
	if sendEmail && !validation.ValidateEmail(email) {
		h.logger.Warn("skipping email with invalid address", map[string]interface{}{
			"applicationId": input.ApplicationID,
		})
		sendEmail = false
	}

	sendSMS := h.config.SMSEnabled && h.snsClient != nil && phone != ""
	if sendSMS && !validation.ValidatePhone(phone) {
		h.logger.Warn("skipping sms with invalid phone number", map[string]interface{}{
			"applicationId": input.ApplicationID,
		})
		sendSMS = false
	}

	output := &Output{
		NotificationID: notificationID,
		EmailStatus:    StatusSkipped,
		SMSStatus:      StatusSkipped,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	if !sendEmail && !sendSMS {
		output.Status = StatusDisabled
		h.logger.Info("no notification channel available", map[string]interface{}{
			"applicationId": input.ApplicationID,
		})
		return output, nil
	}

	tmpl := templateFor(input.Assessment.Decision)
	data := templateData(input)

	var emailErr, smsErr error
	var g errgroup.Group
	if sendEmail {
		g.Go(func() error {
			emailErr = h.sendEmail(ctx, email, renderTemplate(tmpl.Subject, data), renderTemplate(tmpl.Body, data))
			return emailErr
		})
	}
	if sendSMS {
		g.Go(func() error {
			smsErr = h.sendSMS(ctx, phone, renderTemplate(tmpl.SMS, data))
			return smsErr
		})
	}
	_ = g.Wait()

	attempted, delivered := 0, 0
	if sendEmail {
		attempted++
		output.EmailStatus = channelStatus(emailErr)
		if emailErr == nil {
			delivered++
		} else {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":         emailErr,
				"applicationId": input.ApplicationID,
			})
		}
	}
	if sendSMS {
		attempted++
		output.SMSStatus = channelStatus(smsErr)
		if smsErr == nil {
			delivered++
		} else {
			h.logger.Error("sms send failed", map[string]interface{}{
				"error":         smsErr,
				"applicationId": input.ApplicationID,
			})
		}
	}

	switch {
	case delivered == 0:
		output.Status = StatusFailed
		return nil, fmt.Errorf("%w: %v", ErrNotificationSendFailed, errors.Join(emailErr, smsErr))
	case delivered < attempted:
		output.Status = StatusPartial
	default:
		output.Status = StatusSent
	}

	h.logger.Info("loan decision notification sent", map[string]interface{}{
		"applicationId":  input.ApplicationID,
		"notificationId": notificationID,
		"status":         output.Status,
	})

	return output, nil
}

func channelStatus(err error) string {
	if err != nil {
		return StatusFailed
	}
	return StatusSent
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	in := &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	}
	if h.config.SenderID != "" {
		in.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(h.config.SenderID),
			},
		}
	}
	_, err := h.snsClient.Publish(ctx, in)
	return err
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
