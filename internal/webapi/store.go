package webapi

import (
	"errors"
	"sort"
	"sync"

	"github.com/toolgauge/toolgauge/internal/models"
	"github.com/toolgauge/toolgauge/internal/reporting"
	"github.com/toolgauge/toolgauge/internal/scoring"
)

// ErrRunNotFound is returned when a run ID does not match any stored run.
var ErrRunNotFound = errors.New("run not found")

// RunStore provides access to capability run data.
type RunStore interface {
	// ListRuns returns all runs, sorted by the given field and order.
	ListRuns(sortField, order string) ([]RunSummary, error)
	// GetRun returns a single run with full per-model details.
	GetRun(id string) (*RunDetail, error)
	// Summary returns aggregate metrics across all runs.
	Summary() (*SummaryResponse, error)
	// Reload re-reads the backing artifacts.
	Reload() error
}

// FileStore reads report artifacts saved by the run command from a directory.
type FileStore struct {
	dir string

	mu      sync.RWMutex
	reports map[string]*models.Report
	loaded  bool
}

// NewFileStore creates a FileStore that reads artifacts from dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:     dir,
		reports: make(map[string]*models.Report),
	}
}

// load reads every artifact from the configured directory. Unreadable files
// are skipped so one corrupt artifact never takes down the dashboard.
func (fs *FileStore) load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.reports = make(map[string]*models.Report)

	if fs.dir == "" {
		fs.loaded = true
		return nil
	}

	artifacts, err := reporting.ListArtifacts(fs.dir)
	if err != nil {
		return err
	}
	for _, a := range artifacts {
		report, err := reporting.LoadReport(a.Path)
		if err != nil {
			continue
		}
		fs.reports[a.ID()] = report
	}

	fs.loaded = true
	return nil
}

// ensureLoaded loads data if not already loaded.
func (fs *FileStore) ensureLoaded() error {
	fs.mu.RLock()
	if fs.loaded {
		fs.mu.RUnlock()
		return nil
	}
	fs.mu.RUnlock()
	return fs.load()
}

// Reload forces a fresh read of all artifacts from disk.
func (fs *FileStore) Reload() error {
	return fs.load()
}

func reportToSummary(id string, r *models.Report) RunSummary {
	top := 0.0
	for _, res := range r.Results {
		if res.OverallScore > top {
			top = res.OverallScore
		}
	}

	return RunSummary{
		ID:           id,
		Endpoint:     r.Summary.APIEndpoint,
		Timestamp:    r.Summary.Timestamp,
		TotalModels:  r.Summary.TotalModels,
		TestedModels: r.Summary.TestedModels,
		Recommended:  len(r.Summary.Recommended),
		Partial:      len(r.Summary.Partial),
		NoSupport:    len(r.Summary.NoToolCalling),
		TopScore:     top,
		QuickMode:    r.Metadata.QuickMode,
	}
}

func reportToDetail(id string, r *models.Report) *RunDetail {
	detail := &RunDetail{RunSummary: reportToSummary(id, r)}

	for _, res := range r.Results {
		entry := ModelEntry{
			Model:          res.ModelID,
			Score:          res.OverallScore,
			Recommendation: res.Recommendation,
			LatencyMs:      res.TotalLatencyMs,
		}
		for _, name := range scoring.ScenarioNames() {
			sr, ok := res.Scenarios[name]
			if !ok {
				continue
			}
			entry.Scenarios = append(entry.Scenarios, ScenarioEntry{
				Name:      name,
				Status:    string(sr.Status),
				LatencyMs: sr.LatencyMs,
				Message:   sr.ErrorMessage,
			})
		}
		if entry.Scenarios == nil {
			entry.Scenarios = []ScenarioEntry{}
		}
		detail.Models = append(detail.Models, entry)
	}
	if detail.Models == nil {
		detail.Models = []ModelEntry{}
	}

	return detail
}

// ListRuns returns all runs sorted by the given field and order.
func (fs *FileStore) ListRuns(sortField, order string) ([]RunSummary, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	runs := make([]RunSummary, 0, len(fs.reports))
	for id, r := range fs.reports {
		runs = append(runs, reportToSummary(id, r))
	}

	sortRuns(runs, sortField, order)
	return runs, nil
}

// GetRun returns a single run with full per-model details.
func (fs *FileStore) GetRun(id string) (*RunDetail, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	r, ok := fs.reports[id]
	if !ok {
		return nil, ErrRunNotFound
	}

	return reportToDetail(id, r), nil
}

// Summary returns aggregate metrics across all runs.
func (fs *FileStore) Summary() (*SummaryResponse, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	resp := &SummaryResponse{}
	if len(fs.reports) == 0 {
		return resp, nil
	}

	totalScore := 0.0
	totalLatency := 0.0
	scoredModels := 0
	recommended := 0
	tested := 0

	for _, r := range fs.reports {
		resp.TotalRuns++
		tested += r.Summary.TestedModels
		recommended += len(r.Summary.Recommended)

		for _, res := range r.Results {
			totalScore += res.OverallScore
			totalLatency += float64(res.TotalLatencyMs)
			scoredModels++
		}
	}

	resp.TotalModels = tested
	if tested > 0 {
		resp.RecommendedRate = float64(recommended) / float64(tested) * 100.0
	}
	if scoredModels > 0 {
		resp.AvgScore = totalScore / float64(scoredModels)
		resp.AvgLatencyMs = totalLatency / float64(scoredModels)
	}

	return resp, nil
}

func sortRuns(runs []RunSummary, field, order string) {
	less := func(i, j int) bool {
		switch field {
		case "score":
			return runs[i].TopScore < runs[j].TopScore
		case "models":
			return runs[i].TestedModels < runs[j].TestedModels
		default: // "timestamp" or empty
			return runs[i].Timestamp.Before(runs[j].Timestamp)
		}
	}

	if order == "asc" {
		sort.Slice(runs, less)
	} else {
		sort.Slice(runs, func(i, j int) bool { return less(j, i) })
	}
}

// Ensure FileStore satisfies RunStore.
var _ RunStore = (*FileStore)(nil)
