// Package scenario defines the capability checks run against each candidate
// model: short scripted conversations paired with predicates over the
// responses. Scenarios are data; the Run function executes them one request
// at a time and maps every outcome, including transport failures and panics,
// onto a single ScenarioResult.
package scenario

import (
	"fmt"

	"github.com/toolgauge/toolgauge/internal/catalog"
	"github.com/toolgauge/toolgauge/internal/scoring"
	"github.com/toolgauge/toolgauge/internal/transport"
)

// Verdict is a step's judgment of one response.
type Verdict struct {
	OK      bool
	Reason  string         // failure reason, set when !OK
	Details map[string]any // carried into the result when the final step passes
}

func pass(details map[string]any) Verdict {
	return Verdict{OK: true, Details: details}
}

func fail(format string, args ...any) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

// Step is one request/response exchange within a scenario.
type Step struct {
	// Build constructs the request for this step. prior is the previous
	// step's response, nil on the first step.
	Build func(cat *catalog.Set, model string, prior *transport.ChatResponse) transport.ChatRequest

	// Evaluate judges the step's response. A failing verdict on any step
	// fails the whole scenario.
	Evaluate func(cat *catalog.Set, resp *transport.ChatResponse) Verdict
}

// Scenario is one capability check. Weight is its share of the overall score.
type Scenario struct {
	Name        string
	Description string
	Weight      float64
	Steps       []Step
}

// All returns the five capability scenarios in canonical execution order.
func All() []Scenario {
	return []Scenario{
		basicToolCalling(),
		toolOutputReasoning(),
		multiToolCalling(),
		jsonMode(),
		streamingToolCalls(),
	}
}

// Quick returns the reduced set run in quick mode.
func Quick() []Scenario {
	return []Scenario{basicToolCalling()}
}

// ByName returns the named scenario from All, if it exists.
func ByName(name string) (Scenario, bool) {
	for _, sc := range All() {
		if sc.Name == name {
			return sc, true
		}
	}
	return Scenario{}, false
}

// WithRequestTuner returns a copy of s whose built requests pass through tune
// before being sent. Project files use this to override request parameters
// for individual scenarios.
func (s Scenario) WithRequestTuner(tune func(*transport.ChatRequest)) Scenario {
	out := s
	out.Steps = make([]Step, len(s.Steps))
	for i, step := range s.Steps {
		build := step.Build
		out.Steps[i] = Step{
			Build: func(cat *catalog.Set, model string, prior *transport.ChatResponse) transport.ChatRequest {
				req := build(cat, model, prior)
				tune(&req)
				return req
			},
			Evaluate: step.Evaluate,
		}
	}
	return out
}

func weightOf(name string) float64 {
	return scoring.Weight(name)
}
