package reporting

import (
	"fmt"
	"strings"

	"github.com/toolgauge/toolgauge/internal/models"
	"github.com/toolgauge/toolgauge/internal/scoring"
)

// InterpretScore returns a plain-language label for an overall score (0-100).
func InterpretScore(score float64) string {
	switch {
	case score >= scoring.RecommendedThreshold:
		return "Full tool-calling support"
	case score >= scoring.PartialThreshold:
		return "Partial tool-calling support"
	case score > 0:
		return "Minimal tool-calling support"
	default:
		return "No tool-calling support"
	}
}

// InterpretTier explains what a recommendation tier means for callers.
func InterpretTier(tier scoring.Tier) string {
	switch tier {
	case scoring.TierRecommended:
		return "Suitable for agent workloads without caveats"
	case scoring.TierPartial:
		return "Usable when callers handle the unsupported capabilities"
	default:
		return "Not suitable for tool-calling workloads"
	}
}

// failedScenarios lists the scenarios that failed or errored for a model, in
// canonical execution order.
func failedScenarios(res models.ModelResult) []string {
	var failed []string
	for _, name := range scoring.ScenarioNames() {
		sr, ok := res.Scenarios[name]
		if !ok {
			continue
		}
		if sr.Status == models.StatusFailed || sr.Status == models.StatusError {
			failed = append(failed, name)
		}
	}
	return failed
}

// FormatSummaryReport produces a full plain-language interpretation of a run
// report.
func FormatSummaryReport(report *models.Report) string {
	var b strings.Builder

	s := report.Summary
	b.WriteString("=== Interpretation ===\n\n")

	b.WriteString(fmt.Sprintf("Endpoint:       %s\n", s.APIEndpoint))
	b.WriteString(fmt.Sprintf("Models:         %d listed, %d tested\n", s.TotalModels, s.TestedModels))
	b.WriteString(fmt.Sprintf("Recommended:    %d\n", len(s.Recommended)))
	b.WriteString(fmt.Sprintf("Partial:        %d\n", len(s.Partial)))
	b.WriteString(fmt.Sprintf("No tool calls:  %d\n", len(s.NoToolCalling)))

	if len(report.Results) > 0 {
		b.WriteString("\nPer-Model Interpretation:\n")
		for _, res := range report.Results {
			icon := "✓"
			if scoring.Tier(res.Recommendation) != scoring.TierRecommended {
				icon = "✗"
			}
			b.WriteString(fmt.Sprintf("  %s %s: %.1f - %s\n",
				icon, res.ModelID, res.OverallScore, InterpretScore(res.OverallScore)))
			b.WriteString(fmt.Sprintf("    %s\n", InterpretTier(scoring.Tier(res.Recommendation))))
			if failed := failedScenarios(res); len(failed) > 0 {
				b.WriteString(fmt.Sprintf("    Failing: %s\n", strings.Join(failed, ", ")))
			}
			if skipped := res.CountByStatus(models.StatusSkipped); skipped > 0 {
				b.WriteString(fmt.Sprintf("    Skipped: %d scenario(s) not counted against the score\n", skipped))
			}
		}
	}

	return b.String()
}
