package camunda

import (
	"context"
	"fmt"
	"time"

	"loan-assessment-workers/internal/common/config"
	"loan-assessment-workers/internal/common/metrics"
	"loan-assessment-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// StartWorker opens a job worker for taskType. The returned worker is nil
// when the worker is disabled in configuration.
func StartWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler worker.JobHandler,
	obs *observability.Observability,
	log *zap.Logger,
) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, obs, log)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return jobWorker
}

// Instrument wraps handler with the active-job gauge, a span and the otel job
// metrics. A panicking handler is logged and the job is left to time out.
func Instrument(taskType string, handler worker.JobHandler, obs *observability.Observability, log *zap.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		status := "handled"

		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		ctx, span := obs.StartSpan(context.Background(), taskType)
		span.SetAttributes(
			attribute.Int64("job.key", job.Key),
			attribute.Int64("process.instance.key", job.ProcessInstanceKey),
		)

		defer func() {
			if r := recover(); r != nil {
				status = "panic"
				span.RecordError(fmt.Errorf("panic: %v", r))
				log.Error("handler panicked",
					zap.String("taskType", taskType),
					zap.Int64("jobKey", job.Key),
					zap.Any("panic", r),
				)
			}
			span.End()
			obs.RecordJobProcessed(ctx, taskType, status)
			obs.RecordJobDuration(ctx, taskType, time.Since(start), status)
		}()

		handler(client, job)
	}
}
