// Package webapi exposes capability runs and planning sessions as a
// read-only REST surface for the dashboard.
package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/toolgauge/toolgauge/internal/store"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// SessionStore provides access to planning sessions. *store.Store
// satisfies it.
type SessionStore interface {
	ListSessions(ctx context.Context) ([]store.Session, error)
	GetSession(ctx context.Context, id string) (*store.SessionDetail, error)
}

var _ SessionStore = (*store.Store)(nil)

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	runs     RunStore
	sessions SessionStore
}

// NewHandlers creates a new Handlers over the run and session stores.
func NewHandlers(runs RunStore, sessions SessionStore) *Handlers {
	return &Handlers{runs: runs, sessions: sessions}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleSummary returns aggregate KPI metrics across all runs.
func (h *Handlers) HandleSummary(w http.ResponseWriter, _ *http.Request) {
	summary, err := h.runs.Summary()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleRuns returns a list of all runs, with optional sort/order query params.
func (h *Handlers) HandleRuns(w http.ResponseWriter, r *http.Request) {
	sortField := r.URL.Query().Get("sort")
	order := r.URL.Query().Get("order")

	runs, err := h.runs.ListRuns(sortField, order)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// HandleRunDetail returns full run detail with per-model results.
func (h *Handlers) HandleRunDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		// Fallback: extract from URL path for compatibility.
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/runs/"), "/")
		if len(parts) > 0 {
			id = parts[0]
		}
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "run id is required")
		return
	}

	detail, err := h.runs.GetRun(id)
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleReload re-reads run artifacts from disk.
func (h *Handlers) HandleReload(w http.ResponseWriter, _ *http.Request) {
	if err := h.runs.Reload(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

// HandleSessions returns all planning sessions, newest first.
func (h *Handlers) HandleSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, sessionToSummary(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSessionDetail returns one session with its plans, critiques, and
// executions.
func (h *Handlers) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), "/")
		if len(parts) > 0 {
			id = parts[0]
		}
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	detail, err := h.sessions.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, sessionToDetail(detail))
}

func sessionToSummary(s store.Session) SessionSummary {
	return SessionSummary{
		ID:        s.ID,
		Title:     s.Title,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func sessionToDetail(d *store.SessionDetail) *SessionDetail {
	detail := &SessionDetail{
		SessionSummary: sessionToSummary(d.Session),
		Brief:          d.Brief,
	}

	critiquesByPlan := make(map[string][]CritiqueEntry)
	for _, c := range d.Critiques {
		critiquesByPlan[c.PlanID] = append(critiquesByPlan[c.PlanID], CritiqueEntry{
			Critic:  c.CriticModel,
			Score:   c.Score,
			Content: c.Content,
		})
	}

	for _, p := range d.Plans {
		entry := PlanEntry{
			ID:        p.ID,
			Model:     p.Model,
			Selected:  p.Selected,
			Consensus: p.ConsensusScore,
			Content:   p.Content,
			Critiques: critiquesByPlan[p.ID],
		}
		if entry.Critiques == nil {
			entry.Critiques = []CritiqueEntry{}
		}
		detail.Plans = append(detail.Plans, entry)
	}
	if detail.Plans == nil {
		detail.Plans = []PlanEntry{}
	}

	for _, e := range d.Executions {
		detail.Executions = append(detail.Executions, ExecutionEntry{
			Phase:     e.Phase,
			Model:     e.Model,
			Status:    e.Status,
			LatencyMs: e.LatencyMs,
			Error:     e.Error,
		})
	}
	if detail.Executions == nil {
		detail.Executions = []ExecutionEntry{}
	}

	return detail
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, runs RunStore, sessions SessionStore) {
	h := NewHandlers(runs, sessions)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/summary", h.HandleSummary)
	mux.HandleFunc("GET /api/runs", h.HandleRuns)
	mux.HandleFunc("GET /api/runs/{id}", h.HandleRunDetail)
	mux.HandleFunc("GET /api/sessions", h.HandleSessions)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleSessionDetail)
	mux.HandleFunc("POST /api/reload", h.HandleReload)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
