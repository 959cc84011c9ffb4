package main

import (
	"path/filepath"
	"testing"

	"loan-assessment-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUpdateValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")

	require.NoError(t, runAdd([]string{
		"-path", path,
		"-id", "loan.application.archive",
		"-displayName", "Archive Loan Application",
		"-description", "Archives closed applications",
		"-taskType", "archive-loan-application",
	}))
	require.NoError(t, runUpdate([]string{"-path", path, "-id", "loan.application.archive", "-field", "retries", "-value", "2"}))
	require.NoError(t, runValidate([]string{"-path", path}))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	activity, err := reg.Find("loan.application.archive")
	require.NoError(t, err)
	assert.Equal(t, 2, activity.Retries)
	assert.Equal(t, "lending", activity.Category)
}

func TestSetField_Errors(t *testing.T) {
	activity := &registry.Activity{}
	assert.Error(t, setField(activity, "retries", "many"))
	assert.Error(t, setField(activity, "owner", "lending-team"))
}
