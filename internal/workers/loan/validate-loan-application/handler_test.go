package validateloanapplication

import (
	"context"
	"testing"
	"time"

	"loan-assessment-workers/internal/common/logger"
	"loan-assessment-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	t *testing.T
}

func (l *testLogger) Debug(msg string, fields map[string]interface{}) { l.t.Logf("[DEBUG] %s %v", msg, fields) }
func (l *testLogger) Info(msg string, fields map[string]interface{})  { l.t.Logf("[INFO] %s %v", msg, fields) }
func (l *testLogger) Warn(msg string, fields map[string]interface{})  { l.t.Logf("[WARN] %s %v", msg, fields) }
func (l *testLogger) Error(msg string, fields map[string]interface{}) { l.t.Logf("[ERROR] %s %v", msg, fields) }
func (l *testLogger) WithFields(fields map[string]interface{}) logger.Logger { return l }
func (l *testLogger) WithError(err error) logger.Logger                     { return l }
func (l *testLogger) With(fields map[string]interface{}) logger.Logger      { return l }

const shippedRegistry = "../../../../configs/activity-registry.json"

func createTestConfig() *Config {
	return &Config{
		RegistryPath: shippedRegistry,
		Timeout:      5 * time.Second,
	}
}

func createTestApplication() map[string]interface{} {
	return map[string]interface{}{
		"personalInfo": map[string]interface{}{
			"fullName":   "Jane Doe",
			"age":        34,
			"employment": "Full Time",
			"income":     85000,
			"experience": 6,
			"email":      "jane@example.com",
		},
		"loanDetails": map[string]interface{}{
			"amount":   150000,
			"purpose":  "home improvement",
			"term":     15,
			"currency": "usd",
		},
		"financialInfo": map[string]interface{}{
			"creditScore":   720,
			"existingLoans": 1,
			"existingLoanDetails": []interface{}{
				map[string]interface{}{"type": "auto", "amount": 12000},
			},
			"collateral": "none",
		},
	}
}

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(createTestConfig(), &testLogger{t: t})
}

func TestExecute_ValidApplicationIsNormalised(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{Application: createTestApplication(), UserID: "user-1"})
	require.NoError(t, err)

	assert.True(t, output.IsValid)
	assert.Empty(t, output.ValidationErrors)
	assert.NotNil(t, output.ValidationErrors)
	require.NotNil(t, output.Application)
	assert.Equal(t, models.EmploymentFullTime, output.Application.PersonalInfo.EmploymentStatus)
	assert.Equal(t, "USD", output.Application.LoanDetails.Currency)
	assert.Equal(t, 720, output.Application.FinancialInfo.CreditScore)
	assert.Equal(t, 12000.0, output.Application.FinancialInfo.ExistingLoanDetails[0].Amount)
}

func TestExecute_SchemaViolations(t *testing.T) {
	h := newTestHandler(t)

	app := createTestApplication()
	delete(app["loanDetails"].(map[string]interface{}), "amount")
	app["personalInfo"].(map[string]interface{})["income"] = "a lot"

	output, err := h.Execute(context.Background(), &Input{Application: app})
	require.NoError(t, err)

	assert.False(t, output.IsValid)
	assert.Nil(t, output.Application)

	fields := map[string]string{}
	for _, e := range output.ValidationErrors {
		fields[e.Field] = e.Code
	}
	assert.Equal(t, "SCHEMA_REQUIRED", fields["loanDetails.amount"])
	assert.Equal(t, "SCHEMA_INVALID_TYPE", fields["personalInfo.income"])
}

func TestExecute_BusinessRuleViolations(t *testing.T) {
	h := newTestHandler(t)

	app := createTestApplication()
	app["personalInfo"].(map[string]interface{})["age"] = 16
	app["personalInfo"].(map[string]interface{})["employment"] = "contractor"
	app["loanDetails"].(map[string]interface{})["currency"] = "XYZ"
	app["financialInfo"].(map[string]interface{})["creditScore"] = 910

	output, err := h.Execute(context.Background(), &Input{Application: app})
	require.NoError(t, err)

	assert.False(t, output.IsValid)
	require.NotNil(t, output.Application)

	fields := map[string]string{}
	for _, e := range output.ValidationErrors {
		fields[e.Field] = e.Code
	}
	assert.Equal(t, "MINIMUM_VIOLATION", fields["personalInfo.age"])
	assert.Equal(t, "INVALID_EMPLOYMENT_STATUS", fields["personalInfo.employment"])
	assert.Equal(t, "UNSUPPORTED_CURRENCY", fields["loanDetails.currency"])
	assert.Equal(t, "MAXIMUM_VIOLATION", fields["financialInfo.creditScore"])
}

func TestExecute_MissingApplication(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)

	assert.False(t, output.IsValid)
	require.Len(t, output.ValidationErrors, 1)
	assert.Equal(t, "application", output.ValidationErrors[0].Field)
}

func TestLoadSchema_FallsBackToEmbedded(t *testing.T) {
	log := &testLogger{t: t}

	fromRegistry := loadSchema(shippedRegistry, log)
	embedded := loadSchema("does/not/exist.json", log)
	none := loadSchema("", log)

	assert.Equal(t, "object", fromRegistry["type"])
	assert.Equal(t, embedded, none)
	assert.Equal(t, fromRegistry["required"], []interface{}{"application"})
	assert.Equal(t, embedded["required"], []interface{}{"application"})
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "configs/activity-registry.json", cfg.RegistryPath)
}
