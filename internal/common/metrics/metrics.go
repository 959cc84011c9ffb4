package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	LoanDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_decisions_total",
			Help: "Loan decisions by outcome and by the assessor that produced them",
		},
		[]string{"decision", "source"},
	)

	LoanRiskScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loan_risk_score",
			Help:    "Distribution of assessed risk scores (0-100)",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	LoanAIFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_ai_fallbacks_total",
			Help: "AI assessments replaced by the rule-based fallback",
		},
		[]string{"reason"},
	)
)

func RecordDecision(decision, source string, riskScore float64) {
	LoanDecisions.WithLabelValues(decision, source).Inc()
	LoanRiskScore.Observe(riskScore)
}

func RecordFallback(reason string) {
	LoanAIFallbacks.WithLabelValues(reason).Inc()
}

func RecordJobCompleted(taskType string, seconds float64) {
	WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	WorkerJobDuration.WithLabelValues(taskType).Observe(seconds)
}

func RecordJobFailed(taskType, errorCode string, seconds float64) {
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
	WorkerJobDuration.WithLabelValues(taskType).Observe(seconds)
}
