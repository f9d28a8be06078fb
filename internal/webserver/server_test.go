package webserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolgauge/toolgauge/internal/models"
	"github.com/toolgauge/toolgauge/internal/reporting"
)

func newTestServer(t *testing.T, resultsDir string) http.Handler {
	t.Helper()
	srv, err := New(Config{
		Port:       0,
		ResultsDir: resultsDir,
		DBPath:     filepath.Join(t.TempDir(), "sessions.db"),
		NoBrowser:  true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv.Handler()
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "ok", body["status"])
}

func TestAPISummaryReturnsJSON(t *testing.T) {
	handler := newTestServer(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Contains(t, body, "totalRuns")
}

func TestRunsEndpointServesArtifacts(t *testing.T) {
	resultsDir := t.TempDir()
	report := &models.Report{
		Summary: models.Summary{
			Timestamp:    time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC),
			APIEndpoint:  "http://localhost:1234/v1",
			TotalModels:  1,
			TestedModels: 1,
			Recommended:  []string{"llama-3.1-8b"},
		},
		Results: []models.ModelResult{
			{ModelID: "llama-3.1-8b", OverallScore: 92.5, Recommendation: "recommended"},
		},
	}
	_, err := reporting.Save(resultsDir, report, false)
	require.NoError(t, err)

	handler := newTestServer(t, resultsDir)

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var runs []map[string]any
	err = json.Unmarshal(rec.Body.Bytes(), &runs)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "model_capabilities_20260312_093000", runs[0]["id"])
}

func TestSessionsEndpointEmpty(t *testing.T) {
	handler := newTestServer(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestDashboardServesIndex(t *testing.T) {
	handler := newTestServer(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!doctype html>")
	assert.Contains(t, rec.Body.String(), "toolgauge")
}

func TestDashboardFallbackForClientRoutes(t *testing.T) {
	handler := newTestServer(t, t.TempDir())

	// A bookmarked route like /runs/abc should still get the page.
	req := httptest.NewRequest(http.MethodGet, "/runs/abc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!doctype html>")
}

func TestUnknownAPIEndpointReturnsJSON404(t *testing.T) {
	handler := newTestServer(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/bogus", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
