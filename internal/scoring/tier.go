// Package scoring turns per-scenario outcomes into a weighted percentage and
// a recommendation tier. Scoring is pure: the same results always produce the
// same score, and nothing here performs I/O.
package scoring

import (
	"fmt"
	"strings"
)

// Tier is the recommendation band derived from a model's weighted score.
type Tier string

const (
	TierRecommended Tier = "recommended"
	TierPartial     Tier = "partial_support"
	TierNone        Tier = "no_tool_calling"
)

// Score thresholds, in percent. Boundaries are inclusive: a score of exactly
// 90 is recommended, exactly 50 is partial support.
const (
	RecommendedThreshold = 90.0
	PartialThreshold     = 50.0
)

var tierRank = map[Tier]int{
	TierNone:        0,
	TierPartial:     1,
	TierRecommended: 2,
}

func (t Tier) String() string {
	return string(t)
}

// AtLeast returns true if t is at or above the target tier.
func (t Tier) AtLeast(target Tier) bool {
	return tierRank[t] >= tierRank[target]
}

// ParseTier converts a string flag value to a Tier.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "recommended":
		return TierRecommended, nil
	case "partial", "partial_support", "partial-support":
		return TierPartial, nil
	case "none", "no_tool_calling", "no-tool-calling":
		return TierNone, nil
	default:
		return TierNone, fmt.Errorf("invalid tier %q: must be recommended, partial, or none", s)
	}
}

// TierForScore maps a weighted percentage onto a tier.
func TierForScore(pct float64) Tier {
	switch {
	case pct >= RecommendedThreshold:
		return TierRecommended
	case pct >= PartialThreshold:
		return TierPartial
	default:
		return TierNone
	}
}
