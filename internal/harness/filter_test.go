package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolgauge/toolgauge/internal/models"
)

func infos(ids ...string) []models.ModelInfo {
	out := make([]models.ModelInfo, len(ids))
	for i, id := range ids {
		out[i] = models.ModelInfo{ID: id}
	}
	return out
}

func ids(infos []models.ModelInfo) []string {
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.ID
	}
	return out
}

func TestFilterModels(t *testing.T) {
	tests := []struct {
		name    string
		input   []models.ModelInfo
		pattern string
		want    []string
	}{
		{
			name:  "no pattern keeps everything",
			input: infos("llama-3", "mistral-7b"),
			want:  []string{"llama-3", "mistral-7b"},
		},
		{
			name:  "gpt models always dropped",
			input: infos("gpt-4o", "llama-3", "GPT-3.5-turbo", "MyGPT-mini"),
			want:  []string{"llama-3"},
		},
		{
			name:    "pattern narrows the list",
			input:   infos("llama-3", "llama-3-70b", "mistral-7b"),
			pattern: "llama",
			want:    []string{"llama-3", "llama-3-70b"},
		},
		{
			name:    "pattern is a real regex",
			input:   infos("llama-3", "llama-3-70b", "mistral-7b"),
			pattern: "^llama-3$",
			want:    []string{"llama-3"},
		},
		{
			name:    "pattern match is case-sensitive",
			input:   infos("Llama-3", "llama-3"),
			pattern: "llama",
			want:    []string{"llama-3"},
		},
		{
			name:    "gpt exclusion applies before the pattern",
			input:   infos("gpt-4o", "llama-3"),
			pattern: "gpt|llama",
			want:    []string{"llama-3"},
		},
		{
			name:  "empty input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterModels(tt.input, tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterModelsInvalidPattern(t *testing.T) {
	_, err := FilterModels(infos("llama-3"), "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model filter pattern")
}

func TestFilterModelsPreservesMetadata(t *testing.T) {
	input := []models.ModelInfo{
		{ID: "llama-3", OwnedBy: "meta", Created: 1700000000},
	}
	got, err := FilterModels(input, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "meta", got[0].OwnedBy)
	assert.Equal(t, int64(1700000000), got[0].Created)
}
