package registry

import (
	"fmt"
	"time"
)

type ImplementationStatus string

const (
	StatusPlanned    ImplementationStatus = "planned"
	StatusInProgress ImplementationStatus = "in-progress"
	StatusCompleted  ImplementationStatus = "completed"
	StatusVerified   ImplementationStatus = "verified"
)

type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one BPMN service task of the loan process and the
// worker that serves it.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus ImplementationStatus   `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}

// TimeoutDuration parses Timeout ("10s", "1m"). An empty value is zero.
func (a *Activity) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("activity %s: invalid timeout %q: %w", a.ID, a.Timeout, err)
	}
	return d, nil
}

// RaisesError reports whether code is one of the BPMN error codes the
// activity declares.
func (a *Activity) RaisesError(code string) bool {
	for _, c := range a.ErrorCodes {
		if c == code {
			return true
		}
	}
	return false
}

// InputSchemaFor returns the input schema registered for taskType.
func (r *ActivityRegistry) InputSchemaFor(taskType string) (map[string]interface{}, error) {
	activity, err := r.FindByTaskType(taskType)
	if err != nil {
		return nil, err
	}
	if len(activity.InputSchema) == 0 {
		return nil, fmt.Errorf("activity %s has no inputSchema", activity.ID)
	}
	return activity.InputSchema, nil
}
