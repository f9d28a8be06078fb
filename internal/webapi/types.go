package webapi

import "time"

// RunSummary is the API response for a single capability run in the list.
type RunSummary struct {
	ID           string    `json:"id"`
	Endpoint     string    `json:"endpoint"`
	Timestamp    time.Time `json:"timestamp"`
	TotalModels  int       `json:"totalModels"`
	TestedModels int       `json:"testedModels"`
	Recommended  int       `json:"recommended"`
	Partial      int       `json:"partial"`
	NoSupport    int       `json:"noSupport"`
	TopScore     float64   `json:"topScore"`
	QuickMode    bool      `json:"quickMode"`
}

// RunDetail is the API response for a single run with per-model results.
type RunDetail struct {
	RunSummary
	Models []ModelEntry `json:"models"`
}

// ModelEntry is a per-model result within a run.
type ModelEntry struct {
	Model          string          `json:"model"`
	Score          float64         `json:"score"`
	Recommendation string          `json:"recommendation"`
	LatencyMs      int64           `json:"latencyMs"`
	Scenarios      []ScenarioEntry `json:"scenarios"`
}

// ScenarioEntry is a single scenario outcome.
type ScenarioEntry struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latencyMs"`
	Message   string `json:"message,omitempty"`
}

// SummaryResponse is the aggregate KPI response across all runs.
type SummaryResponse struct {
	TotalRuns       int     `json:"totalRuns"`
	TotalModels     int     `json:"totalModels"`
	RecommendedRate float64 `json:"recommendedRate"`
	AvgScore        float64 `json:"avgScore"`
	AvgLatencyMs    float64 `json:"avgLatencyMs"`
}

// SessionSummary is one planning session in the list response.
type SessionSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionDetail is a planning session with its plans and executions.
type SessionDetail struct {
	SessionSummary
	Brief      string           `json:"brief"`
	Plans      []PlanEntry      `json:"plans"`
	Executions []ExecutionEntry `json:"executions"`
}

// PlanEntry is one draft plan with the critiques it received.
type PlanEntry struct {
	ID        string          `json:"id"`
	Model     string          `json:"model"`
	Selected  bool            `json:"selected"`
	Consensus *float64        `json:"consensus,omitempty"`
	Content   string          `json:"content"`
	Critiques []CritiqueEntry `json:"critiques"`
}

// CritiqueEntry is one critic's review of a plan.
type CritiqueEntry struct {
	Critic  string  `json:"critic"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

// ExecutionEntry is one recorded model call within a session.
type ExecutionEntry struct {
	Phase     string `json:"phase"`
	Model     string `json:"model"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
