package models

// Status represents the outcome status of a single capability scenario.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// ModelInfo is one entry from the API's model-listing endpoint.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	Created int64  `json:"created,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ScenarioResult is the outcome of one capability scenario against one model.
// Created when the scenario completes and immutable thereafter.
type ScenarioResult struct {
	Scenario     string         `json:"test_name"`
	Status       Status         `json:"status"`
	LatencyMs    int64          `json:"latency_ms"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// ModelResult aggregates the scenario outcomes for a single model.
type ModelResult struct {
	ModelID        string                    `json:"model_id"`
	OwnedBy        string                    `json:"owned_by"`
	Scenarios      map[string]ScenarioResult `json:"tests"`
	OverallScore   float64                   `json:"overall_score"`
	Recommendation string                    `json:"recommendation"`
	TotalLatencyMs int64                     `json:"total_latency_ms"`
}

// CountByStatus returns how many scenarios finished with the given status.
func (m *ModelResult) CountByStatus(s Status) int {
	n := 0
	for _, r := range m.Scenarios {
		if r.Status == s {
			n++
		}
	}
	return n
}

// HasStatus reports whether any scenario finished with the given status.
func (m *ModelResult) HasStatus(s Status) bool {
	return m.CountByStatus(s) > 0
}

// ComputeTotalLatency sums scenario latencies, excluding skipped scenarios
// since those never completed a real request cycle.
func (m *ModelResult) ComputeTotalLatency() int64 {
	var total int64
	for _, r := range m.Scenarios {
		if r.Status == StatusSkipped {
			continue
		}
		total += r.LatencyMs
	}
	return total
}
