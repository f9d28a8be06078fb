package reporting

import (
	"sort"

	"github.com/toolgauge/toolgauge/internal/models"
)

// Rank orders model results best-first: higher score wins, lower total
// latency breaks ties. The sort is stable so listing order breaks remaining
// ties and rankings stay reproducible run to run.
func Rank(results []models.ModelResult) []models.ModelResult {
	ranked := append([]models.ModelResult{}, results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].OverallScore != ranked[j].OverallScore {
			return ranked[i].OverallScore > ranked[j].OverallScore
		}
		return ranked[i].TotalLatencyMs < ranked[j].TotalLatencyMs
	})
	return ranked
}

// Top returns the best n results, or all of them when the report is smaller.
func Top(results []models.ModelResult, n int) []models.ModelResult {
	ranked := Rank(results)
	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
