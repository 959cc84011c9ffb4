package registry

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shippedRegistry = "../../configs/activity-registry.json"

func TestShippedRegistryIsValid(t *testing.T) {
	reg, err := LoadRegistry(shippedRegistry)
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	activity, err := reg.FindByTaskType("validate-loan-application")
	require.NoError(t, err)
	assert.Equal(t, "loan.application.validate", activity.ID)
	assert.Equal(t, "object", activity.InputSchema["type"])
}

func TestFind_NotFound(t *testing.T) {
	reg := &ActivityRegistry{}

	_, err := reg.Find("loan.application.unknown")
	assert.True(t, errors.Is(err, ErrActivityNotFound))

	_, err = reg.FindByTaskType("unknown")
	assert.True(t, errors.Is(err, ErrActivityNotFound))
}

func TestAddSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")

	reg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Empty(t, reg.Activities)

	activity := Activity{
		ID:          "loan.risk.score",
		DisplayName: "Score Loan Risk",
		Category:    "lending",
		TaskType:    "score-loan-risk",
	}
	require.NoError(t, reg.Add(activity))
	assert.Error(t, reg.Add(activity))
	require.NoError(t, reg.Save(path))

	reloaded, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reloaded.Activities, 1)
	assert.Equal(t, "score-loan-risk", reloaded.Activities[0].TaskType)
}

func TestValidate(t *testing.T) {
	valid := Activity{ID: "loan.risk.score", DisplayName: "Score", Category: "lending", TaskType: "score-loan-risk"}

	tests := []struct {
		name    string
		mutate  func(a []Activity) []Activity
		wantErr string
	}{
		{"empty", func(a []Activity) []Activity { return nil }, "no activities"},
		{"duplicate", func(a []Activity) []Activity { return append(a, a[0]) }, "duplicate activity ID"},
		{"bad name", func(a []Activity) []Activity { a[0].ID = "score-loan-risk"; return a }, "domain.subdomain.action"},
		{"missing task type", func(a []Activity) []Activity { a[0].TaskType = ""; return a }, "TaskType"},
		{"broken schema", func(a []Activity) []Activity {
			a[0].InputSchema = map[string]interface{}{"type": 7}
			return a
		}, "inputSchema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: tt.mutate([]Activity{valid})}
			err := reg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestShippedRegistry_ActivityDetails(t *testing.T) {
	reg, err := LoadRegistry(shippedRegistry)
	require.NoError(t, err)

	schema, err := reg.InputSchemaFor("validate-loan-application")
	require.NoError(t, err)
	assert.Contains(t, schema["required"], "application")

	record, err := reg.FindByTaskType("create-loan-application-record")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, record.ImplementationStatus)
	assert.True(t, record.RaisesError("DUPLICATE_SUBMISSION"))
	assert.False(t, record.RaisesError("QUOTE_INVALID"))

	timeout, err := record.TimeoutDuration()
	require.NoError(t, err)
	assert.Positive(t, timeout)
}

func TestInputSchemaFor_Missing(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{{ID: "loan.risk.score", TaskType: "score-loan-risk"}}}

	_, err := reg.InputSchemaFor("score-loan-risk")
	assert.ErrorContains(t, err, "no inputSchema")

	_, err = reg.InputSchemaFor("unknown")
	assert.ErrorIs(t, err, ErrActivityNotFound)
}

func TestTimeoutDuration(t *testing.T) {
	a := Activity{ID: "loan.risk.score", Timeout: "1m"}
	d, err := a.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	a.Timeout = "soon"
	_, err = a.TimeoutDuration()
	assert.Error(t, err)
}
