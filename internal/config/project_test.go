package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeProjectFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("NoProjectFile", func(t *testing.T) {
		cfg, err := Load(t.TempDir())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got := cfg.APIURL(); got == "" {
			t.Fatalf("APIURL should fall back to the default")
		}
		if got := cfg.OutputDir(); got != DefaultOutputDir {
			t.Fatalf("OutputDir = %q, want %q", got, DefaultOutputDir)
		}
	})

	t.Run("FullProjectFile", func(t *testing.T) {
		dir := t.TempDir()
		writeProjectFile(t, dir, `
api_url: http://project.test/v1
timeout: 60
max_workers: 2
output_dir: artifacts
db_path: data/sessions.db
quick: true
scenarios:
  json_mode:
    enabled: false
  basic_tool_calling:
    max_tokens: 2000
    temperature: 0.2
planner:
  planners: [model-a, model-b]
  critics: [model-c]
  refiner: model-d
  critic_weights:
    model-c: 2.5
`)

		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}

		if got := cfg.APIURL(); got != "http://project.test/v1" {
			t.Fatalf("APIURL = %q", got)
		}
		if got := cfg.Timeout(); got != 60*time.Second {
			t.Fatalf("Timeout = %v", got)
		}
		if got := cfg.MaxWorkers(); got != 2 {
			t.Fatalf("MaxWorkers = %d", got)
		}
		if !cfg.Quick() {
			t.Fatalf("Quick = false, want true")
		}

		// Relative paths resolve against the directory holding the file.
		if got, want := cfg.OutputDir(), filepath.Join(dir, "artifacts"); got != want {
			t.Fatalf("OutputDir = %q, want %q", got, want)
		}
		if got, want := cfg.DBPath(), filepath.Join(dir, "data", "sessions.db"); got != want {
			t.Fatalf("DBPath = %q, want %q", got, want)
		}

		o, ok := cfg.OverrideFor("json_mode")
		if !ok || !o.Disabled() {
			t.Fatalf("json_mode override = %+v, ok=%v; want disabled", o, ok)
		}
		o, ok = cfg.OverrideFor("basic_tool_calling")
		if !ok || o.MaxTokens != 2000 {
			t.Fatalf("basic_tool_calling override = %+v, ok=%v", o, ok)
		}
		if o.Temperature == nil || *o.Temperature != 0.2 {
			t.Fatalf("Temperature = %v, want 0.2", o.Temperature)
		}

		if got := cfg.Planners(); len(got) != 2 || got[0] != "model-a" {
			t.Fatalf("Planners = %v", got)
		}
		if got := cfg.Refiner(); got != "model-d" {
			t.Fatalf("Refiner = %q", got)
		}
		if got := cfg.CriticWeights(); got["model-c"] != 2.5 {
			t.Fatalf("CriticWeights = %v", got)
		}
	})

	t.Run("WalksUpFromSubdirectory", func(t *testing.T) {
		root := t.TempDir()
		writeProjectFile(t, root, "max_workers: 4\n")

		nested := filepath.Join(root, "a", "b", "c")
		if err := os.MkdirAll(nested, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", nested, err)
		}

		cfg, err := Load(nested)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got := cfg.MaxWorkers(); got != 4 {
			t.Fatalf("MaxWorkers = %d, want 4", got)
		}
	})

	t.Run("RejectsUnknownKeys", func(t *testing.T) {
		dir := t.TempDir()
		writeProjectFile(t, dir, "api_urll: http://typo.test/v1\n")

		_, err := Load(dir)
		if err == nil {
			t.Fatalf("expected validation error for unknown key")
		}
		if !strings.Contains(err.Error(), "api_urll") {
			t.Fatalf("error should name the bad key: %v", err)
		}
	})

	t.Run("RejectsUnknownOverrideKeys", func(t *testing.T) {
		dir := t.TempDir()
		writeProjectFile(t, dir, `
scenarios:
  json_mode:
    max_token: 500
`)

		_, err := Load(dir)
		if err == nil {
			t.Fatalf("expected error for misspelled override key")
		}
	})

	t.Run("ExplicitOptionsWinOverFileAndEnv", func(t *testing.T) {
		dir := t.TempDir()
		writeProjectFile(t, dir, "timeout: 60\n")
		t.Setenv("TOOLGAUGE_TIMEOUT", "90")

		cfg, err := Load(dir, WithTimeout(15*time.Second))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got := cfg.Timeout(); got != 15*time.Second {
			t.Fatalf("Timeout = %v, want 15s", got)
		}
	})

	t.Run("EnvWinsOverFile", func(t *testing.T) {
		dir := t.TempDir()
		writeProjectFile(t, dir, "timeout: 60\n")
		t.Setenv("TOOLGAUGE_TIMEOUT", "90")

		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got := cfg.Timeout(); got != 90*time.Second {
			t.Fatalf("Timeout = %v, want 90s", got)
		}
	})

	t.Run("BadEnvValue", func(t *testing.T) {
		t.Setenv("TOOLGAUGE_TIMEOUT", "soon")

		_, err := Load(t.TempDir())
		if err == nil {
			t.Fatalf("expected error for malformed TOOLGAUGE_TIMEOUT")
		}
	})
}

func TestFindProjectFile(t *testing.T) {
	t.Run("SameDirectory", func(t *testing.T) {
		dir := t.TempDir()
		want := writeProjectFile(t, dir, "")

		got, err := findProjectFile(dir)
		if err != nil {
			t.Fatalf("findProjectFile: %v", err)
		}
		if got != want {
			t.Fatalf("findProjectFile = %q, want %q", got, want)
		}
	})

	t.Run("NearestAncestorWins", func(t *testing.T) {
		root := t.TempDir()
		writeProjectFile(t, root, "max_workers: 1\n")

		mid := filepath.Join(root, "mid")
		if err := os.MkdirAll(filepath.Join(mid, "leaf"), 0o755); err != nil {
			t.Fatalf("failed to create dirs: %v", err)
		}
		want := writeProjectFile(t, mid, "max_workers: 2\n")

		got, err := findProjectFile(filepath.Join(mid, "leaf"))
		if err != nil {
			t.Fatalf("findProjectFile: %v", err)
		}
		if got != want {
			t.Fatalf("findProjectFile = %q, want %q", got, want)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := findProjectFile(t.TempDir())
		if !os.IsNotExist(err) {
			t.Fatalf("expected os.ErrNotExist, got %v", err)
		}
	})
}
