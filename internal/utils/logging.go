package utils

import (
	"context"
	"log/slog"

	"github.com/toolgauge/toolgauge/internal/models"
)

// ResultToSlog emits a debug record for one finished scenario. The attribute
// list is only assembled when debug logging is enabled.
func ResultToSlog(model string, res models.ScenarioResult) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{
		"model", model,
		"scenario", res.Scenario,
		"status", string(res.Status),
		"latency_ms", res.LatencyMs,
	}

	attrs = addIf(attrs, "error", res.ErrorMessage)
	if len(res.Details) > 0 {
		attrs = append(attrs, "details", res.Details)
	}

	slog.Debug("Scenario finished", attrs...)
}

func addIf[T comparable](attrs []any, name string, v T) []any {
	var zero T
	if v != zero {
		attrs = append(attrs, name)
		attrs = append(attrs, v)
	}

	return attrs
}
