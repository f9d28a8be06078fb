package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toolgauge/toolgauge/internal/scoring"
)

func TestInterpretScore(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "Full tool-calling support"},
		{90, "Full tool-calling support"},
		{89.9, "Partial tool-calling support"},
		{50, "Partial tool-calling support"},
		{49.9, "Minimal tool-calling support"},
		{10, "Minimal tool-calling support"},
		{0, "No tool-calling support"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, InterpretScore(tt.score), "score %.1f", tt.score)
	}
}

func TestInterpretTier(t *testing.T) {
	assert.Contains(t, InterpretTier(scoring.TierRecommended), "Suitable")
	assert.Contains(t, InterpretTier(scoring.TierPartial), "Usable")
	assert.Contains(t, InterpretTier(scoring.TierNone), "Not suitable")
}

func TestFormatSummaryReport(t *testing.T) {
	report := newTestReport()
	out := FormatSummaryReport(report)

	assert.Contains(t, out, "=== Interpretation ===")
	assert.Contains(t, out, "http://localhost:8317/v1")
	assert.Contains(t, out, "3 listed, 2 tested")
	assert.Contains(t, out, "Recommended:    1")

	assert.Contains(t, out, "✓ llama-3: 100.0 - Full tool-calling support")
	assert.Contains(t, out, "✗ tiny-llm: 85.0 - Partial tool-calling support")
	assert.Contains(t, out, "Failing: json_mode, streaming_tool_calls")
	assert.Contains(t, out, "✗ phantom")
	assert.Contains(t, out, "Skipped: 5 scenario(s)")
}

func TestFormatSummaryReportEmptyRun(t *testing.T) {
	report := newTestReport()
	report.Results = nil
	report.Summary.TotalModels = 0
	report.Summary.TestedModels = 0

	out := FormatSummaryReport(report)
	assert.Contains(t, out, "0 listed, 0 tested")
	assert.NotContains(t, out, "Per-Model Interpretation")
}
