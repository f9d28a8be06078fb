// Package harness coordinates a capability run: it discovers candidate
// models, plays every scenario against each one in turn, scores the
// outcomes, and assembles the final report.
package harness

import (
	"context"
	"sync"
	"time"

	"github.com/toolgauge/toolgauge/internal/catalog"
	"github.com/toolgauge/toolgauge/internal/config"
	"github.com/toolgauge/toolgauge/internal/models"
	"github.com/toolgauge/toolgauge/internal/scenario"
	"github.com/toolgauge/toolgauge/internal/scoring"
	"github.com/toolgauge/toolgauge/internal/transport"
)

// Client is the slice of the API surface the runner needs. *transport.Client
// satisfies it; tests substitute fakes.
type Client interface {
	ListModels(ctx context.Context) ([]models.ModelInfo, error)
	ChatCompletion(ctx context.Context, req transport.ChatRequest) (*transport.ChatResponse, error)
}

var _ Client = (*transport.Client)(nil)

// DiscoveryError wraps a failure to list models. Nothing can run without the
// model list, so callers treat it as fatal rather than degrading.
type DiscoveryError struct {
	Err error
}

func (e *DiscoveryError) Error() string {
	return "model discovery failed: " + e.Err.Error()
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// ProgressListener receives progress updates during a run.
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event.
type EventType string

// EventType constants
const (
	EventRunStarted       EventType = "run_started"
	EventModelStarted     EventType = "model_started"
	EventScenarioFinished EventType = "scenario_finished"
	EventModelFinished    EventType = "model_finished"
	EventRunFinished      EventType = "run_finished"
)

// ProgressEvent represents a progress update. Fields beyond Type are filled
// per event kind: model events carry Model/ModelNum/TotalModels, scenario
// events add Scenario/Status/LatencyMs, and model completion adds Score/Tier.
type ProgressEvent struct {
	Type        EventType
	Model       string
	Scenario    string
	Status      models.Status
	LatencyMs   int64
	ModelNum    int
	TotalModels int
	Score       float64
	Tier        scoring.Tier
}

// Runner executes capability scenarios against every discovered model, one
// model at a time. Local gateways usually serve one loaded model at once, and
// interleaved requests would skew the latency numbers.
type Runner struct {
	cfg    *config.Config
	client Client
	cat    *catalog.Set
	scens  []scenario.Scenario
	now    func() time.Time

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithClient replaces the default transport client, e.g. for tests.
func WithClient(c Client) RunnerOption {
	return func(r *Runner) {
		if c != nil {
			r.client = c
		}
	}
}

// WithClock replaces the wall clock used for report timestamps.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner creates a runner for the given configuration. The scenario set is
// fixed at construction: quick mode reduces it, and project-file overrides
// drop or tune individual scenarios.
func NewRunner(cfg *config.Config, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:       cfg,
		cat:       catalog.Default(),
		now:       time.Now,
		listeners: []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	if r.client == nil {
		r.client = transport.NewClient(cfg.APIURL(), transport.WithTimeout(cfg.Timeout()))
	}
	r.scens = activeScenarios(cfg)
	return r
}

// activeScenarios resolves the scenario set for a config: quick mode first,
// then per-scenario overrides from the project file.
func activeScenarios(cfg *config.Config) []scenario.Scenario {
	base := scenario.All()
	if cfg.Quick() {
		base = scenario.Quick()
	}

	active := make([]scenario.Scenario, 0, len(base))
	for _, sc := range base {
		o, ok := cfg.OverrideFor(sc.Name)
		if !ok {
			active = append(active, sc)
			continue
		}
		if o.Disabled() {
			continue
		}
		active = append(active, tuned(sc, o))
	}
	return active
}

// tuned applies a project-file override's request adjustments to a scenario.
func tuned(sc scenario.Scenario, o config.ScenarioOverride) scenario.Scenario {
	if o.MaxTokens <= 0 && o.Temperature == nil {
		return sc
	}
	return sc.WithRequestTuner(func(req *transport.ChatRequest) {
		if o.MaxTokens > 0 {
			req.MaxTokens = o.MaxTokens
		}
		if o.Temperature != nil {
			req.Temperature = *o.Temperature
		}
	})
}

// Scenarios returns the names of the scenarios this runner will execute.
func (r *Runner) Scenarios() []string {
	names := make([]string, len(r.scens))
	for i, sc := range r.scens {
		names[i] = sc.Name
	}
	return names
}

// OnProgress registers a progress listener.
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run discovers models, tests each one, and returns the assembled report.
// Discovery failure is fatal and returned as a *DiscoveryError; per-model and
// per-scenario failures are recorded in the report instead.
func (r *Runner) Run(ctx context.Context) (*models.Report, error) {
	start := r.now()

	infos, err := r.client.ListModels(ctx)
	if err != nil {
		return nil, &DiscoveryError{Err: err}
	}

	candidates, err := FilterModels(infos, r.cfg.Filter())
	if err != nil {
		return nil, err
	}

	r.notifyProgress(ProgressEvent{
		Type:        EventRunStarted,
		TotalModels: len(candidates),
	})

	results := make([]models.ModelResult, 0, len(candidates))
	for i, info := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.notifyProgress(ProgressEvent{
			Type:        EventModelStarted,
			Model:       info.ID,
			ModelNum:    i + 1,
			TotalModels: len(candidates),
		})

		res := r.testModel(ctx, info)
		results = append(results, res)

		r.notifyProgress(ProgressEvent{
			Type:        EventModelFinished,
			Model:       info.ID,
			ModelNum:    i + 1,
			TotalModels: len(candidates),
			Score:       res.OverallScore,
			Tier:        scoring.Tier(res.Recommendation),
		})
	}

	report := r.buildReport(start, results)

	r.notifyProgress(ProgressEvent{
		Type:        EventRunFinished,
		TotalModels: len(candidates),
	})

	return report, nil
}

// testModel plays every active scenario against one model and scores the
// outcome. Scenario failures never abort the model; they are recorded and the
// next scenario runs.
func (r *Runner) testModel(ctx context.Context, info models.ModelInfo) models.ModelResult {
	outcomes := make(map[string]models.ScenarioResult, len(r.scens))

	for _, sc := range r.scens {
		res := scenario.Run(ctx, r.client, r.cat, info.ID, sc)
		outcomes[sc.Name] = res

		r.notifyProgress(ProgressEvent{
			Type:      EventScenarioFinished,
			Model:     info.ID,
			Scenario:  sc.Name,
			Status:    res.Status,
			LatencyMs: res.LatencyMs,
		})
	}

	score, tier := scoring.Score(outcomes)

	result := models.ModelResult{
		ModelID:        info.ID,
		OwnedBy:        info.OwnedBy,
		Scenarios:      outcomes,
		OverallScore:   score,
		Recommendation: string(tier),
	}
	result.TotalLatencyMs = result.ComputeTotalLatency()
	return result
}

// buildReport assembles the final artifact from per-model results, preserving
// run order in the per-tier lists.
func (r *Runner) buildReport(start time.Time, results []models.ModelResult) *models.Report {
	summary := models.Summary{
		Timestamp:     start.UTC(),
		APIEndpoint:   r.cfg.APIURL(),
		TotalModels:   len(results),
		Recommended:   []string{},
		Partial:       []string{},
		NoToolCalling: []string{},
	}

	for _, res := range results {
		// A model whose every scenario was skipped never completed a
		// request cycle and does not count as tested.
		for _, sr := range res.Scenarios {
			if sr.Status != models.StatusSkipped {
				summary.TestedModels++
				break
			}
		}

		switch scoring.Tier(res.Recommendation) {
		case scoring.TierRecommended:
			summary.Recommended = append(summary.Recommended, res.ModelID)
		case scoring.TierPartial:
			summary.Partial = append(summary.Partial, res.ModelID)
		default:
			summary.NoToolCalling = append(summary.NoToolCalling, res.ModelID)
		}
	}

	summary.Statistics = map[string]int{
		"total":                         len(results),
		string(scoring.TierRecommended): len(summary.Recommended),
		string(scoring.TierPartial):     len(summary.Partial),
		string(scoring.TierNone):        len(summary.NoToolCalling),
	}

	return &models.Report{
		Summary: summary,
		Results: results,
		Metadata: models.ReportMetadata{
			APIURL:    r.cfg.APIURL(),
			QuickMode: r.cfg.Quick(),
			Weights:   scoring.WeightMap(),
		},
	}
}
