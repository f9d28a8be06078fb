package planner

import (
	"regexp"
	"strconv"
)

// verdictRe matches the "SCORE: n" line critics are instructed to end with.
var verdictRe = regexp.MustCompile(`(?m)SCORE:\s*([0-9]+(?:\.[0-9]+)?)\s*$`)

// parseVerdictScore extracts a critic's verdict from its review text. The
// last line that parses to a value in [0, 10] wins; -1 means the review
// carries no usable verdict.
func parseVerdictScore(review string) float64 {
	matches := verdictRe.FindAllStringSubmatch(review, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		score, err := strconv.ParseFloat(matches[i][1], 64)
		if err == nil && score <= 10 {
			return score
		}
	}
	return -1
}
