package models

import "time"

// Report is the write-once artifact produced at the end of a run.
type Report struct {
	Summary  Summary        `json:"summary"`
	Results  []ModelResult  `json:"results"`
	Metadata ReportMetadata `json:"metadata"`
}

// Summary holds per-tier model lists and aggregate counts for a run.
type Summary struct {
	Timestamp     time.Time      `json:"timestamp"`
	APIEndpoint   string         `json:"api_endpoint"`
	TotalModels   int            `json:"total_models"`
	TestedModels  int            `json:"tested_models"`
	Recommended   []string       `json:"recommended"`
	Partial       []string       `json:"partial_support"`
	NoToolCalling []string       `json:"no_tool_calling"`
	Statistics    map[string]int `json:"test_statistics"`
}

// ReportMetadata records the run configuration alongside the results.
type ReportMetadata struct {
	APIURL    string             `json:"api_url"`
	QuickMode bool               `json:"quick_mode"`
	Weights   map[string]float64 `json:"test_weights"`
}

// FindResult returns the result for the given model id, or nil.
func (r *Report) FindResult(modelID string) *ModelResult {
	for i := range r.Results {
		if r.Results[i].ModelID == modelID {
			return &r.Results[i]
		}
	}
	return nil
}
