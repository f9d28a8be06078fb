package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolgauge/toolgauge/internal/models"
)

func TestFormatModelTable(t *testing.T) {
	infos := []models.ModelInfo{
		{ID: "llama-3.1-8b", Object: "model", Created: 1710000000, OwnedBy: "meta"},
		{ID: "phi-3-mini", Object: "model"},
	}

	out := formatModelTable(infos)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[0], "OWNED BY")
	assert.Contains(t, lines[0], "CREATED")

	assert.Contains(t, lines[1], "llama-3.1-8b")
	assert.Contains(t, lines[1], "meta")
	assert.Contains(t, lines[1], "2024-03-09")

	// Missing metadata renders as placeholders.
	assert.Contains(t, lines[2], "phi-3-mini")
	assert.Contains(t, lines[2], "-")
}

func TestModelsCommand_AgainstEndpoint(t *testing.T) {
	srv := newToolCallingEndpoint(t)

	root := newRootCommand()
	root.SetArgs([]string{"models", "--api-url", srv.URL})
	require.NoError(t, root.Execute())
}

func TestModelsCommand_EndpointErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	root := newRootCommand()
	root.SetArgs([]string{"models", "--api-url", srv.URL, "--all"})
	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing models")
}
