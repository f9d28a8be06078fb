package scoring

import "github.com/toolgauge/toolgauge/internal/models"

// scenarioWeight pairs a scenario name with its share of the overall score.
// The slice order is the canonical execution order; weights sum to 1.0.
var scenarioWeights = []struct {
	name   string
	weight float64
}{
	{models.ScenarioBasicToolCalling, 0.25},
	{models.ScenarioToolOutputReasoning, 0.35},
	{models.ScenarioMultiToolCalling, 0.25},
	{models.ScenarioJSONMode, 0.10},
	{models.ScenarioStreamingToolCalls, 0.05},
}

// ScenarioNames returns the scenario names in canonical execution order.
func ScenarioNames() []string {
	out := make([]string, len(scenarioWeights))
	for i, sw := range scenarioWeights {
		out[i] = sw.name
	}
	return out
}

// Weight returns a scenario's share of the overall score, or 0 for an
// unknown name.
func Weight(name string) float64 {
	for _, sw := range scenarioWeights {
		if sw.name == name {
			return sw.weight
		}
	}
	return 0
}

// WeightMap returns the weight table keyed by scenario name, for embedding
// in report metadata.
func WeightMap() map[string]float64 {
	out := make(map[string]float64, len(scenarioWeights))
	for _, sw := range scenarioWeights {
		out[sw.name] = sw.weight
	}
	return out
}

// Score computes the weighted percentage and tier for one model's scenario
// results. Passed scenarios earn their weight; failed and errored scenarios
// earn nothing but still count toward the denominator. Skipped scenarios and
// scenarios absent from the map (not executed, e.g. quick mode) are excluded
// from both sides, renormalizing the score over what actually ran. When
// nothing ran the score is 0 and the tier is TierNone.
func Score(results map[string]models.ScenarioResult) (float64, Tier) {
	var earned, executed float64

	for _, sw := range scenarioWeights {
		res, ok := results[sw.name]
		if !ok || res.Status == models.StatusSkipped {
			continue
		}
		executed += sw.weight
		if res.Status == models.StatusPassed {
			earned += sw.weight
		}
	}

	if executed == 0 {
		return 0, TierNone
	}

	pct := 100 * earned / executed
	return pct, TierForScore(pct)
}
