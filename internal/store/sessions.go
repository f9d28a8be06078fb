package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session id matches nothing.
var ErrSessionNotFound = errors.New("session not found")

// Session statuses.
const (
	SessionStatusRunning = "running"
	SessionStatusDone    = "done"
	SessionStatusFailed  = "failed"
)

// Session is one planning run.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Brief     string    `json:"brief"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Plan is one model's draft for a session.
type Plan struct {
	ID             string   `json:"id"`
	SessionID      string   `json:"session_id"`
	Model          string   `json:"model"`
	Content        string   `json:"content"`
	ConsensusScore *float64 `json:"consensus_score,omitempty"`
	Selected       bool     `json:"selected"`
}

// Critique is one critic's review of one plan. A negative score records a
// review whose verdict could not be parsed; consensus ignores those.
type Critique struct {
	ID          string  `json:"id"`
	SessionID   string  `json:"session_id"`
	PlanID      string  `json:"plan_id"`
	CriticModel string  `json:"critic_model"`
	Score       float64 `json:"score"`
	Content     string  `json:"content"`
}

// Execution records one model call made during a session.
type Execution struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Phase     string    `json:"phase"`
	Model     string    `json:"model"`
	Status    string    `json:"status"`
	LatencyMs int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionDetail is a session with everything recorded under it.
type SessionDetail struct {
	Session
	Plans      []Plan      `json:"plans"`
	Critiques  []Critique  `json:"critiques"`
	Executions []Execution `json:"executions"`
}

// CreateSession inserts a new running session and returns it.
func (s *Store) CreateSession(ctx context.Context, title, brief string) (*Session, error) {
	session := &Session{
		ID:        uuid.NewString(),
		Title:     title,
		Brief:     brief,
		Status:    SessionStatusRunning,
		CreatedAt: time.Now().UTC(),
	}
	session.UpdatedAt = session.CreatedAt

	query := `
		INSERT INTO sessions (id, title, brief, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		session.ID, session.Title, session.Brief, session.Status,
		timeText(session.CreatedAt), timeText(session.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// FinishSession sets the session's terminal status.
func (s *Store) FinishSession(ctx context.Context, id, status string) error {
	query := `UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, status, timeText(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// InsertPlan records one planner's draft.
func (s *Store) InsertPlan(ctx context.Context, sessionID, model, content string) (*Plan, error) {
	plan := &Plan{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Model:     model,
		Content:   content,
	}

	query := `
		INSERT INTO plans (id, session_id, model, content, selected)
		VALUES (?, ?, ?, ?, 0)
	`
	_, err := s.db.ExecContext(ctx, query, plan.ID, plan.SessionID, plan.Model, plan.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to insert plan: %w", err)
	}
	return plan, nil
}

// SetPlanConsensus records a plan's weighted consensus score.
func (s *Store) SetPlanConsensus(ctx context.Context, planID string, score float64) error {
	query := `UPDATE plans SET consensus_score = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, score, planID); err != nil {
		return fmt.Errorf("failed to set consensus for plan %s: %w", planID, err)
	}
	return nil
}

// MarkPlanSelected marks the winning plan and clears the flag on its
// session siblings, so at most one plan per session is ever selected.
func (s *Store) MarkPlanSelected(ctx context.Context, sessionID, planID string) error {
	query := `UPDATE plans SET selected = CASE WHEN id = ? THEN 1 ELSE 0 END WHERE session_id = ?`
	if _, err := s.db.ExecContext(ctx, query, planID, sessionID); err != nil {
		return fmt.Errorf("failed to mark plan %s selected: %w", planID, err)
	}
	return nil
}

// InsertCritique records one critic's review of one plan.
func (s *Store) InsertCritique(ctx context.Context, sessionID, planID, criticModel string, score float64, content string) (*Critique, error) {
	critique := &Critique{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		PlanID:      planID,
		CriticModel: criticModel,
		Score:       score,
		Content:     content,
	}

	query := `
		INSERT INTO critiques (id, session_id, plan_id, critic_model, score, content)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		critique.ID, critique.SessionID, critique.PlanID,
		critique.CriticModel, critique.Score, critique.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to insert critique: %w", err)
	}
	return critique, nil
}

// InsertExecution records one model call.
func (s *Store) InsertExecution(ctx context.Context, sessionID, phase, model, status string, latencyMs int64, errMsg string) error {
	var errText sql.NullString
	if errMsg != "" {
		errText = sql.NullString{String: errMsg, Valid: true}
	}

	query := `
		INSERT INTO executions (id, session_id, phase, model, status, latency_ms, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.NewString(), sessionID, phase, model, status, latencyMs, errText,
		timeText(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to insert execution: %w", err)
	}
	return nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	query := `
		SELECT id, title, brief, status, created_at, updated_at
		FROM sessions ORDER BY created_at DESC, id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// GetSession returns a session with its plans, critiques, and executions.
func (s *Store) GetSession(ctx context.Context, id string) (*SessionDetail, error) {
	query := `
		SELECT id, title, brief, status, created_at, updated_at
		FROM sessions WHERE id = ?
	`
	row := s.db.QueryRowContext(ctx, query, id)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	detail := &SessionDetail{Session: session}
	if detail.Plans, err = s.sessionPlans(ctx, id); err != nil {
		return nil, err
	}
	if detail.Critiques, err = s.sessionCritiques(ctx, id); err != nil {
		return nil, err
	}
	if detail.Executions, err = s.sessionExecutions(ctx, id); err != nil {
		return nil, err
	}
	return detail, nil
}

// DeleteSession removes a session; plans, critiques, and executions go with
// it via the cascade.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var session Session
	var created, updated string

	err := row.Scan(&session.ID, &session.Title, &session.Brief, &session.Status, &created, &updated)
	if err != nil {
		return Session{}, err
	}

	session.CreatedAt = parseTimeText(created)
	session.UpdatedAt = parseTimeText(updated)
	return session, nil
}

func (s *Store) sessionPlans(ctx context.Context, sessionID string) ([]Plan, error) {
	query := `
		SELECT id, session_id, model, content, consensus_score, selected
		FROM plans WHERE session_id = ? ORDER BY rowid
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plans: %w", err)
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var plan Plan
		var consensus sql.NullFloat64
		var selected int

		if err := rows.Scan(&plan.ID, &plan.SessionID, &plan.Model, &plan.Content, &consensus, &selected); err != nil {
			return nil, err
		}
		if consensus.Valid {
			v := consensus.Float64
			plan.ConsensusScore = &v
		}
		plan.Selected = selected != 0
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func (s *Store) sessionCritiques(ctx context.Context, sessionID string) ([]Critique, error) {
	query := `
		SELECT id, session_id, plan_id, critic_model, score, content
		FROM critiques WHERE session_id = ? ORDER BY rowid
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load critiques: %w", err)
	}
	defer rows.Close()

	var critiques []Critique
	for rows.Next() {
		var critique Critique
		if err := rows.Scan(&critique.ID, &critique.SessionID, &critique.PlanID,
			&critique.CriticModel, &critique.Score, &critique.Content); err != nil {
			return nil, err
		}
		critiques = append(critiques, critique)
	}
	return critiques, rows.Err()
}

func (s *Store) sessionExecutions(ctx context.Context, sessionID string) ([]Execution, error) {
	query := `
		SELECT id, session_id, phase, model, status, latency_ms, error, created_at
		FROM executions WHERE session_id = ? ORDER BY rowid
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load executions: %w", err)
	}
	defer rows.Close()

	var executions []Execution
	for rows.Next() {
		var execution Execution
		var errText sql.NullString
		var created string

		if err := rows.Scan(&execution.ID, &execution.SessionID, &execution.Phase,
			&execution.Model, &execution.Status, &execution.LatencyMs, &errText, &created); err != nil {
			return nil, err
		}
		if errText.Valid {
			execution.Error = errText.String
		}
		execution.CreatedAt = parseTimeText(created)
		executions = append(executions, execution)
	}
	return executions, rows.Err()
}
