// Package config assembles the effective run configuration from hard
// defaults, the nearest .toolgauge.yaml project file, TOOLGAUGE_*
// environment variables, and explicit options, in that order. The resulting
// Config is an immutable value handed to the harness and the planner.
package config

import (
	"maps"
	"slices"
	"time"

	"github.com/toolgauge/toolgauge/internal/transport"
)

// Defaults not owned by the transport layer. These are the single source of
// truth; no other code should duplicate them.
const (
	DefaultMaxWorkers = 5
	DefaultOutputDir  = "output"
	DefaultDBPath     = "toolgauge.db"
)

// Config carries everything a run needs to know. Construct it with New or
// Load; read it through the getters.
type Config struct {
	apiURL     string
	timeout    time.Duration
	maxWorkers int
	filter     string
	quick      bool
	outputDir  string
	dbPath     string

	planners      []string
	critics       []string
	refiner       string
	criticWeights map[string]float64

	overrides map[string]ScenarioOverride
}

// Option mutates a Config under construction.
type Option func(*Config)

// New builds a Config from defaults plus options. Later options win.
// Passing a nil Option is a programming error and panics.
func New(opts ...Option) *Config {
	cfg := &Config{
		apiURL:     transport.DefaultBaseURL,
		timeout:    transport.DefaultTimeout,
		maxWorkers: DefaultMaxWorkers,
		outputDir:  DefaultOutputDir,
		dbPath:     DefaultDBPath,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithAPIURL sets the OpenAI-compatible endpoint base URL.
func WithAPIURL(u string) Option {
	return func(c *Config) { c.apiURL = u }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.timeout = d }
}

// WithMaxWorkers bounds parallel fan-out where it is allowed (the planner's
// critique phase). The capability harness itself always runs sequentially.
func WithMaxWorkers(n int) Option {
	return func(c *Config) { c.maxWorkers = n }
}

// WithFilter sets the inclusion regular expression matched against model ids.
func WithFilter(pattern string) Option {
	return func(c *Config) { c.filter = pattern }
}

// WithQuick toggles quick mode: only the basic scenario runs.
func WithQuick(quick bool) Option {
	return func(c *Config) { c.quick = quick }
}

// WithOutputDir sets where report artifacts are written.
func WithOutputDir(dir string) Option {
	return func(c *Config) { c.outputDir = dir }
}

// WithDBPath sets the SQLite database used by planning sessions.
func WithDBPath(path string) Option {
	return func(c *Config) { c.dbPath = path }
}

// WithPlanners sets the models asked to draft plans.
func WithPlanners(ms []string) Option {
	return func(c *Config) { c.planners = slices.Clone(ms) }
}

// WithCritics sets the models asked to review plans.
func WithCritics(ms []string) Option {
	return func(c *Config) { c.critics = slices.Clone(ms) }
}

// WithRefiner sets the model that rewrites the winning plan.
func WithRefiner(m string) Option {
	return func(c *Config) { c.refiner = m }
}

// WithCriticWeights sets per-critic vote weights. Unlisted critics weigh 1.
func WithCriticWeights(w map[string]float64) Option {
	return func(c *Config) { c.criticWeights = maps.Clone(w) }
}

// WithScenarioOverride attaches a per-scenario adjustment from the project
// file.
func WithScenarioOverride(name string, o ScenarioOverride) Option {
	return func(c *Config) {
		if c.overrides == nil {
			c.overrides = make(map[string]ScenarioOverride)
		}
		c.overrides[name] = o
	}
}

// APIURL returns the endpoint base URL.
func (c *Config) APIURL() string { return c.apiURL }

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration { return c.timeout }

// MaxWorkers returns the parallel fan-out bound.
func (c *Config) MaxWorkers() int { return c.maxWorkers }

// Filter returns the inclusion regex, or "" for all models.
func (c *Config) Filter() string { return c.filter }

// Quick reports whether only the basic scenario runs.
func (c *Config) Quick() bool { return c.quick }

// OutputDir returns the report artifact directory.
func (c *Config) OutputDir() string { return c.outputDir }

// DBPath returns the planning-session database path.
func (c *Config) DBPath() string { return c.dbPath }

// Planners returns the plan-drafting models.
func (c *Config) Planners() []string { return slices.Clone(c.planners) }

// Critics returns the plan-reviewing models.
func (c *Config) Critics() []string { return slices.Clone(c.critics) }

// Refiner returns the model that rewrites the winning plan.
func (c *Config) Refiner() string { return c.refiner }

// CriticWeights returns per-critic vote weights.
func (c *Config) CriticWeights() map[string]float64 { return maps.Clone(c.criticWeights) }

// OverrideFor returns the project-file adjustment for a scenario, if any.
func (c *Config) OverrideFor(name string) (ScenarioOverride, bool) {
	o, ok := c.overrides[name]
	return o, ok
}

// Overrides returns all per-scenario adjustments keyed by scenario name.
func (c *Config) Overrides() map[string]ScenarioOverride { return maps.Clone(c.overrides) }
