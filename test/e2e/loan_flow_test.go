package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-assessment-workers/internal/common/logger"

	ala "loan-assessment-workers/internal/workers/loan/assess-loan-application"
	clq "loan-assessment-workers/internal/workers/loan/calculate-loan-quote"
	clr "loan-assessment-workers/internal/workers/loan/create-loan-application-record"
	ild "loan-assessment-workers/internal/workers/loan/index-loan-decision"
	slr "loan-assessment-workers/internal/workers/loan/score-loan-risk"
	sld "loan-assessment-workers/internal/workers/loan/send-loan-decision"
	vla "loan-assessment-workers/internal/workers/loan/validate-loan-application"
)

const submittedApplication = `{
  "userId": "user-42",
  "application": {
    "personalInfo": {
      "fullName": "Jane Doe", "age": 34, "employment": "Full Time",
      "income": 100000, "experience": 6, "email": "jane@example.com"
    },
    "loanDetails": {"amount": 150000, "purpose": "home improvement", "term": 15, "currency": "USD"},
    "financialInfo": {
      "creditScore": 760, "existingLoans": 1,
      "existingLoanDetails": [{"type": "auto", "amount": 12000}],
      "collateral": "house"
    }
  }
}`

// processVariables mimics how the engine merges each job's output into the
// process instance variables.
type processVariables map[string]json.RawMessage

func (v processVariables) merge(t *testing.T, output interface{}) {
	t.Helper()
	data, err := json.Marshal(output)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	for k, val := range fields {
		v[k] = val
	}
}

func (v processVariables) into(t *testing.T, input interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, input))
}

type sesRecorder struct {
	mu   sync.Mutex
	sent []*ses.SendEmailInput
}

func (s *sesRecorder) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, params)
	return &ses.SendEmailOutput{}, nil
}

func newLLMServer(t *testing.T, content string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func newESServer(t *testing.T, indexed *int) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		*indexed++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_index":"loan-decisions","_id":"doc","result":"created"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLoanApplicationFlow(t *testing.T) {
	tests := []struct {
		name           string
		aiContent      string
		apiKey         string
		wantDecision   string
		wantSource     string
		wantRecordStat string
	}{
		{
			name:           "AI approves",
			aiContent:      `{"decision":"APPROVED","confidence":88,"riskScore":18,"reasoning":"Strong profile.","factors":[],"recommendations":["Set up autopay"]}`,
			apiKey:         "test-key",
			wantDecision:   "APPROVED",
			wantSource:     "ai",
			wantRecordStat: "approved",
		},
		{
			name:           "AI unsure is rejected",
			aiContent:      `{"decision":"APPROVED","confidence":40,"riskScore":35,"reasoning":"Mixed signals.","factors":[],"recommendations":[]}`,
			apiKey:         "test-key",
			wantDecision:   "REJECTED",
			wantSource:     "ai",
			wantRecordStat: "rejected",
		},
		{
			name:           "AI disabled falls back to rules",
			apiKey:         "",
			wantDecision:   "APPROVED",
			wantSource:     "rules",
			wantRecordStat: "approved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			log := logger.NewTestLogger(t)

			vars := processVariables{}
			require.NoError(t, json.Unmarshal([]byte(submittedApplication), &vars))

			// validate
			validateCfg := vla.LoadConfig()
			validateCfg.RegistryPath = "../../configs/activity-registry.json"
			var validateIn vla.Input
			vars.into(t, &validateIn)
			validated, err := vla.NewHandler(validateCfg, log).Execute(ctx, &validateIn)
			require.NoError(t, err)
			require.True(t, validated.IsValid, "validation errors: %v", validated.ValidationErrors)
			vars.merge(t, validated)

			// quote
			var quoteIn clq.Input
			vars.into(t, &quoteIn)
			quoted, err := clq.NewHandler(clq.LoadConfig(), log).Execute(ctx, &quoteIn)
			require.NoError(t, err)
			assert.Equal(t, "1050.36", quoted.Quote.MonthlyPayment.StringFixed(2))
			vars.merge(t, quoted)

			// rule score
			var scoreIn slr.Input
			vars.into(t, &scoreIn)
			scored, err := slr.NewHandler(slr.LoadConfig(), log).Execute(ctx, &scoreIn)
			require.NoError(t, err)
			assert.Equal(t, "APPROVED", string(scored.ScoreResult.Decision))

			// AI assessment
			assessCfg := ala.LoadConfig()
			assessCfg.BaseURL = newLLMServer(t, tt.aiContent).URL
			assessCfg.APIKey = tt.apiKey
			var assessIn ala.Input
			vars.into(t, &assessIn)
			assessed, err := ala.NewHandler(assessCfg, log).Execute(ctx, &assessIn)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDecision, string(assessed.Assessment.Decision))
			assert.Equal(t, tt.wantSource, string(assessed.Source))
			vars.merge(t, assessed)

			// record
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			mock.ExpectExec(`INSERT INTO loan_applications`).WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectExec(`INSERT INTO audit_log`).WillReturnResult(sqlmock.NewResult(1, 1))

			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			defer rdb.Close()

			var recordIn clr.Input
			vars.into(t, &recordIn)
			recorder := clr.NewHandler(clr.LoadConfig(), db, rdb, log)
			recorded, err := recorder.Execute(ctx, &recordIn)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRecordStat, recorded.ApplicationStatus)
			assert.NoError(t, mock.ExpectationsWereMet())
			vars.merge(t, recorded)

			_, err = recorder.Execute(ctx, &recordIn)
			assert.ErrorIs(t, err, clr.ErrDuplicateSubmission)

			// index
			indexed := 0
			es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{newESServer(t, &indexed).URL}})
			require.NoError(t, err)
			var indexIn ild.Input
			vars.into(t, &indexIn)
			indexOut, err := ild.NewHandler(ild.LoadConfig(), es, log).Execute(ctx, &indexIn)
			require.NoError(t, err)
			assert.True(t, indexOut.Indexed)
			assert.Equal(t, 1, indexed)

			// notify
			mail := &sesRecorder{}
			notifyCfg := sld.LoadConfig()
			notifyCfg.Timeout = 5 * time.Second
			var notifyIn sld.Input
			vars.into(t, &notifyIn)
			notified, err := sld.NewHandler(notifyCfg, mail, nil, log).Execute(ctx, &notifyIn)
			require.NoError(t, err)
			assert.Equal(t, sld.StatusSent, notified.Status)
			require.Len(t, mail.sent, 1)
			assert.Equal(t, []string{"jane@example.com"}, mail.sent[0].Destination.ToAddresses)
		})
	}
}
