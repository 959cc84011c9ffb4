package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	awsclients "loan-assessment-workers/internal/common/aws"
	"loan-assessment-workers/internal/common/camunda"
	"loan-assessment-workers/internal/common/config"
	"loan-assessment-workers/internal/common/database"
	"loan-assessment-workers/internal/common/logger"
	"loan-assessment-workers/internal/common/observability"

	ala "loan-assessment-workers/internal/workers/loan/assess-loan-application"
	clq "loan-assessment-workers/internal/workers/loan/calculate-loan-quote"
	clr "loan-assessment-workers/internal/workers/loan/create-loan-application-record"
	ild "loan-assessment-workers/internal/workers/loan/index-loan-decision"
	slr "loan-assessment-workers/internal/workers/loan/score-loan-risk"
	sld "loan-assessment-workers/internal/workers/loan/send-loan-decision"
	vla "loan-assessment-workers/internal/workers/loan/validate-loan-application"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOptions(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	})
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("starting loan assessment workers", zap.String("environment", cfg.App.Environment))

	tracing, err := observability.NewTracing(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	if err != nil {
		zapLog.Warn("tracing disabled", zap.Error(err))
	}
	obs := observability.New(cfg.Observability.ServiceName).WithTracing(tracing)
	defer obs.Shutdown()

	ctx := context.Background()

	zeebe, err := camunda.NewClientWithConfig(ctx, camunda.ClientConfigFrom(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			return err
		}
		return pg.EnsureSchema(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		if err := esClient.Ping(); err != nil {
			return err
		}
		return esClient.EnsureIndex(ctx, cfg.Lending.DecisionIndex)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis client failed", zap.Error(err))
	}
	defer redisClient.Close()

	// Redis only guards against double submits, so an outage is not fatal.
	var submissions redis.Cmdable
	if err := retryWithBackoff(func() error { return redisClient.Ping(ctx) }, 5, time.Second, zapLog, "Redis connection"); err != nil {
		zapLog.Warn("redis unavailable, duplicate submission guard disabled", zap.Error(err))
	} else {
		submissions = redisClient.Submissions()
		zapLog.Info("Redis connected successfully")
	}

	var sesService sld.SESService
	var snsService sld.SNSService
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		clients, err := awsclients.NewClients(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("aws clients unavailable, notifications disabled", zap.Error(err))
		} else {
			sesService = clients.SES
			snsService = clients.SNS
		}
	}

	client := zeebe.GetClient()
	var workers []worker.JobWorker
	start := func(taskType string, handler worker.JobHandler) {
		if w := camunda.StartWorker(client, taskType, cfg.Workers[taskType], handler, obs, zapLog); w != nil {
			workers = append(workers, w)
		}
	}

	{
		wcfg := vla.LoadConfig()
		wcfg.RegistryPath = cfg.Registry.Path
		start(vla.TaskType, vla.NewHandler(wcfg, log).Handle)
	}

	start(clq.TaskType, clq.NewHandler(clq.LoadConfig(), log).Handle)
	start(slr.TaskType, slr.NewHandler(slr.LoadConfig(), log).Handle)
	start(ala.TaskType, ala.NewHandler(ala.ConfigFrom(cfg.APIs.GenAI), log).Handle)

	{
		wcfg := clr.LoadConfig()
		if window := cfg.Lending.DuplicateWindowDuration(); window > 0 {
			wcfg.DuplicateWindow = window
		}
		start(clr.TaskType, clr.NewHandler(wcfg, pg.GetDB(), submissions, log).Handle)
	}

	{
		wcfg := ild.LoadConfig()
		wcfg.Index = cfg.Lending.DecisionIndex
		start(ild.TaskType, ild.NewHandler(wcfg, esClient.Client, log).Handle)
	}

	start(sld.TaskType, sld.NewHandler(sld.ConfigFrom(cfg.Notifications), sesService, snsService, log).Handle)

	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	checks := map[string]readinessCheck{
		"zeebe":    zeebe.HealthCheck,
		"postgres": pg.Ping,
	}
	if submissions != nil {
		checks["redis"] = redisClient.Ping
	}
	server := &http.Server{
		Addr:              cfg.Observability.MetricsAddr,
		Handler:           newHealthMux(checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("health/metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("health/metrics server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	for _, w := range workers {
		w.AwaitClose()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("worker manager stopped gracefully")
}
