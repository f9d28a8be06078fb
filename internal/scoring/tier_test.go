package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTierAtLeast(t *testing.T) {
	tests := []struct {
		name   string
		tier   Tier
		target Tier
		want   bool
	}{
		{"none >= none", TierNone, TierNone, true},
		{"none >= partial", TierNone, TierPartial, false},
		{"none >= recommended", TierNone, TierRecommended, false},
		{"partial >= none", TierPartial, TierNone, true},
		{"partial >= partial", TierPartial, TierPartial, true},
		{"partial >= recommended", TierPartial, TierRecommended, false},
		{"recommended >= none", TierRecommended, TierNone, true},
		{"recommended >= partial", TierRecommended, TierPartial, true},
		{"recommended >= recommended", TierRecommended, TierRecommended, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.tier.AtLeast(tt.target))
		})
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		input   string
		want    Tier
		wantErr bool
	}{
		{"recommended", TierRecommended, false},
		{"Recommended", TierRecommended, false},
		{" partial ", TierPartial, false},
		{"partial_support", TierPartial, false},
		{"partial-support", TierPartial, false},
		{"none", TierNone, false},
		{"no_tool_calling", TierNone, false},
		{"excellent", TierNone, true},
		{"", TierNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTier(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTierForScoreBoundaries(t *testing.T) {
	tests := []struct {
		name string
		pct  float64
		want Tier
	}{
		{"exactly 100", 100.0, TierRecommended},
		{"exactly 90", 90.0, TierRecommended},
		{"just under 90", 89.999, TierPartial},
		{"exactly 50", 50.0, TierPartial},
		{"just under 50", 49.999, TierNone},
		{"zero", 0.0, TierNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, TierForScore(tt.pct))
		})
	}
}
