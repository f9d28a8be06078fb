package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/toolgauge/toolgauge/internal/models"
	"github.com/toolgauge/toolgauge/internal/reporting"
)

const (
	// maxListedModels caps each tier list in the summary; the full lists
	// live in the saved report.
	maxListedModels = 5

	// topModelCount is how many models the ranking table shows.
	topModelCount = 3
)

// formatDuration formats a duration in a consistent, human-readable way.
// This ensures stable output regardless of Go version changes.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	// Use the built-in formatting but ensure we control it
	return d.String()
}

// FormatRunSummary renders the result banner, the per-tier model lists, and
// a ranking table of the strongest models.
func FormatRunSummary(report *models.Report) string {
	var b strings.Builder

	b.WriteString("=" + strings.Repeat("=", 50) + "\n")
	b.WriteString(" MODEL CAPABILITY RESULTS\n")
	b.WriteString("=" + strings.Repeat("=", 50) + "\n\n")

	s := report.Summary
	b.WriteString(fmt.Sprintf("Endpoint:      %s\n", s.APIEndpoint))
	b.WriteString(fmt.Sprintf("Models tested: %d of %d discovered\n", s.TestedModels, s.TotalModels))
	if report.Metadata.QuickMode {
		b.WriteString("Mode:          quick (basic tool calling only)\n")
	}
	b.WriteString("\n")

	writeTierSection(&b, "✓ Recommended", s.Recommended)
	writeTierSection(&b, "⚠ Partial support", s.Partial)
	writeTierSection(&b, "✗ No tool calling", s.NoToolCalling)

	top := reporting.Top(report.Results, topModelCount)
	if len(top) > 0 {
		width := runewidth.StringWidth("Model")
		for _, res := range top {
			if w := runewidth.StringWidth(res.ModelID); w > width {
				width = w
			}
		}

		b.WriteString("Top models:\n")
		b.WriteString(fmt.Sprintf("  %s  %6s  %-19s %s\n", padRight("Model", width), "Score", "Tier", "Latency"))
		for _, res := range top {
			latency := time.Duration(res.TotalLatencyMs) * time.Millisecond
			b.WriteString(fmt.Sprintf("  %s  %6.1f  %-19s %s\n",
				padRight(res.ModelID, width), res.OverallScore, res.Recommendation, formatDuration(latency)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// writeTierSection prints one tier heading with up to maxListedModels ids.
func writeTierSection(b *strings.Builder, heading string, ids []string) {
	b.WriteString(fmt.Sprintf("%s (%d):\n", heading, len(ids)))

	shown := ids
	if len(shown) > maxListedModels {
		shown = shown[:maxListedModels]
	}
	for _, id := range shown {
		b.WriteString("  - " + id + "\n")
	}
	if rest := len(ids) - len(shown); rest > 0 {
		b.WriteString(fmt.Sprintf("  ... and %d more\n", rest))
	}
	b.WriteString("\n")
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
