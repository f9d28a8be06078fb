package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolgauge/toolgauge/internal/store"
)

func seedSession(t *testing.T, dbPath string) string {
	t.Helper()

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	ctx := context.Background()
	session, err := st.CreateSession(ctx, "Search Rollout", "# Search Rollout\n\nBody.")
	require.NoError(t, err)

	plan, err := st.InsertPlan(ctx, session.ID, "llama-3.1-8b", "Step one. Step two.")
	require.NoError(t, err)
	require.NoError(t, st.SetPlanConsensus(ctx, plan.ID, 7.5))
	require.NoError(t, st.MarkPlanSelected(ctx, session.ID, plan.ID))

	_, err = st.InsertCritique(ctx, session.ID, plan.ID, "qwen-2.5-7b", 7.5, "Solid.\nSCORE: 7.5")
	require.NoError(t, err)
	require.NoError(t, st.InsertExecution(ctx, session.ID, "plan", "llama-3.1-8b", "ok", 1200, ""))
	require.NoError(t, st.FinishSession(ctx, session.ID, store.SessionStatusDone))

	return session.ID
}

func TestSessionsListCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	seedSession(t, dbPath)

	root := newRootCommand()
	root.SetArgs([]string{"sessions", "list", "--db", dbPath})
	require.NoError(t, root.Execute())
}

func TestSessionsListCommand_EmptyDatabase(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"sessions", "list", "--db", filepath.Join(t.TempDir(), "sessions.db")})
	require.NoError(t, root.Execute())
}

func TestSessionsShowCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	id := seedSession(t, dbPath)

	root := newRootCommand()
	root.SetArgs([]string{"sessions", "show", id, "--db", dbPath})
	require.NoError(t, root.Execute())
}

func TestSessionsShowCommand_NotFound(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"sessions", "show", "missing", "--db", filepath.Join(t.TempDir(), "sessions.db")})
	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}

func TestSessionsDeleteCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	id := seedSession(t, dbPath)

	root := newRootCommand()
	root.SetArgs([]string{"sessions", "delete", id, "--db", dbPath})
	require.NoError(t, root.Execute())

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	sessions, err := st.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionsDeleteCommand_NotFound(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"sessions", "delete", "missing", "--db", filepath.Join(t.TempDir(), "sessions.db")})
	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}
