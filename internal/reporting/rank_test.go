package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolgauge/toolgauge/internal/models"
)

func rankFixture() []models.ModelResult {
	return []models.ModelResult{
		{ModelID: "slow-but-partial", OverallScore: 85, TotalLatencyMs: 9000},
		{ModelID: "best", OverallScore: 100, TotalLatencyMs: 5000},
		{ModelID: "fast-but-partial", OverallScore: 85, TotalLatencyMs: 3000},
		{ModelID: "none", OverallScore: 0, TotalLatencyMs: 100},
	}
}

func TestRank(t *testing.T) {
	input := rankFixture()
	ranked := Rank(input)

	got := make([]string, len(ranked))
	for i, r := range ranked {
		got[i] = r.ModelID
	}
	assert.Equal(t, []string{"best", "fast-but-partial", "slow-but-partial", "none"}, got)

	// The input slice is left untouched.
	assert.Equal(t, "slow-but-partial", input[0].ModelID)
}

func TestRankStableOnFullTies(t *testing.T) {
	input := []models.ModelResult{
		{ModelID: "a", OverallScore: 50, TotalLatencyMs: 1000},
		{ModelID: "b", OverallScore: 50, TotalLatencyMs: 1000},
	}
	ranked := Rank(input)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].ModelID)
	assert.Equal(t, "b", ranked[1].ModelID)
}

func TestTop(t *testing.T) {
	input := rankFixture()

	top := Top(input, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "best", top[0].ModelID)
	assert.Equal(t, "fast-but-partial", top[1].ModelID)

	assert.Len(t, Top(input, 10), 4)
	assert.Empty(t, Top(input, 0))
}
