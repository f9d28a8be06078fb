package reporting

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	report := newTestReport()

	path, err := Save(dir, report, false)
	require.NoError(t, err)
	assert.Equal(t, "model_capabilities_20250615_120000.json", filepath.Base(path))

	loaded, err := LoadReport(path)
	require.NoError(t, err)
	assert.True(t, loaded.Summary.Timestamp.Equal(report.Summary.Timestamp))
	assert.Equal(t, report.Summary.TotalModels, loaded.Summary.TotalModels)
	require.Len(t, loaded.Results, 3)
	assert.Equal(t, "llama-3", loaded.Results[0].ModelID)
	assert.InDelta(t, 100.0, loaded.Results[0].OverallScore, 0.001)

	// Scenario results survive the round trip under their wire names.
	res := loaded.FindResult("tiny-llm")
	require.NotNil(t, res)
	assert.Equal(t, "Response is not valid JSON: unexpected end of JSON input",
		res.Scenarios["json_mode"].ErrorMessage)
}

func TestSaveCompressed(t *testing.T) {
	dir := t.TempDir()
	report := newTestReport()

	path, err := Save(dir, report, true)
	require.NoError(t, err)
	assert.Equal(t, "model_capabilities_20250615_120000.json.gz", filepath.Base(path))

	// Gzip magic bytes prove the artifact is actually compressed.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 2)
	assert.Equal(t, byte(0x1f), data[0])
	assert.Equal(t, byte(0x8b), data[1])

	loaded, err := LoadReport(path)
	require.NoError(t, err)
	assert.Equal(t, report.Summary.TotalModels, loaded.Summary.TotalModels)
	assert.Len(t, loaded.Results, 3)
}

func TestListArtifacts(t *testing.T) {
	dir := t.TempDir()

	older := newTestReport()
	older.Summary.Timestamp = time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)
	_, err := Save(dir, older, false)
	require.NoError(t, err)

	newer := newTestReport()
	_, err = Save(dir, newer, true)
	require.NoError(t, err)

	// Foreign files and directories are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	artifacts, err := ListArtifacts(dir)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	assert.Equal(t, "model_capabilities_20250615_120000", artifacts[0].ID())
	assert.Equal(t, "model_capabilities_20250614_093000", artifacts[1].ID())
	assert.True(t, artifacts[0].Timestamp.After(artifacts[1].Timestamp))
}

func TestListArtifactsMissingDir(t *testing.T) {
	artifacts, err := ListArtifacts(filepath.Join(t.TempDir(), "never-created"))
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestLoadReportMissing(t *testing.T) {
	_, err := LoadReport(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestParseArtifactName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"model_capabilities_20250615_120000.json", true},
		{"model_capabilities_20250615_120000.json.gz", true},
		{"model_capabilities_20250615_120000.txt", false},
		{"report_20250615_120000.json", false},
		{"model_capabilities_notadate.json", false},
		{"model_capabilities_20250615_120000", false},
	}

	for _, tt := range tests {
		_, ok := parseArtifactName(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
	}
}
