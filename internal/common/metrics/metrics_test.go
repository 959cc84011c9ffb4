package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDecision(t *testing.T) {
	before := testutil.ToFloat64(LoanDecisions.WithLabelValues("APPROVED", "rules"))

	RecordDecision("APPROVED", "rules", 12.5)

	assert.Equal(t, before+1, testutil.ToFloat64(LoanDecisions.WithLabelValues("APPROVED", "rules")))
}

func TestRecordFallback(t *testing.T) {
	before := testutil.ToFloat64(LoanAIFallbacks.WithLabelValues("timeout"))

	RecordFallback("timeout")
	RecordFallback("timeout")

	assert.Equal(t, before+2, testutil.ToFloat64(LoanAIFallbacks.WithLabelValues("timeout")))
}

func TestRecordJob(t *testing.T) {
	RecordJobCompleted("score-loan-risk", 0.01)
	RecordJobFailed("send-loan-decision", "NOTIFICATION_SEND_FAILED", 0.2)

	assert.GreaterOrEqual(t, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("score-loan-risk")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("send-loan-decision", "NOTIFICATION_SEND_FAILED")), 1.0)
}
