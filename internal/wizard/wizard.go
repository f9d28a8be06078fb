// Package wizard drives the interactive project setup behind the init
// command.
package wizard

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/toolgauge/toolgauge/internal/config"
	"github.com/toolgauge/toolgauge/internal/transport"
)

// Settings holds all fields collected during the interactive wizard.
type Settings struct {
	APIURL     string
	Timeout    int // seconds
	MaxWorkers int
	OutputDir  string
	DBPath     string
	Quick      bool
	Planners   []string
	Critics    []string
	Refiner    string
}

// HasPlanner reports whether any plan-pipeline field was filled in.
func (s *Settings) HasPlanner() bool {
	return len(s.Planners) > 0 || len(s.Critics) > 0 || s.Refiner != ""
}

const configTemplate = `# toolgauge project configuration.
api_url: {{ .APIURL }}
timeout: {{ .Timeout }}
max_workers: {{ .MaxWorkers }}
output_dir: {{ .OutputDir }}
db_path: {{ .DBPath }}
quick: {{ .Quick }}
{{- if .HasPlanner }}

planner:
{{- if .Planners }}
  planners:
{{- range .Planners }}
    - {{ . }}
{{- end }}
{{- end }}
{{- if .Critics }}
  critics:
{{- range .Critics }}
    - {{ . }}
{{- end }}
{{- end }}
{{- if .Refiner }}
  refiner: {{ .Refiner }}
{{- end }}
{{- end }}
`

// RunSetupWizard runs an interactive huh form to collect project settings.
// Empty answers fall back to the defaults shown in each prompt.
func RunSetupWizard(in io.Reader, out io.Writer) (*Settings, error) {
	var (
		apiURL      string
		timeoutRaw  string
		workersRaw  string
		outputDir   string
		dbPath      string
		quick       bool
		plannersRaw string
		criticsRaw  string
		refiner     string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("OpenAI-compatible endpoint serving your local models").
				Placeholder(transport.DefaultBaseURL).
				Value(&apiURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Request timeout (seconds)").
				Description("How long to wait for a single completion").
				Placeholder("30").
				Value(&timeoutRaw).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Max workers").
				Description("Models probed concurrently during a run").
				Placeholder("5").
				Value(&workersRaw).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Output directory").
				Description("Where report artifacts are written").
				Placeholder(config.DefaultOutputDir).
				Value(&outputDir),
			huh.NewInput().
				Title("Session database").
				Description("SQLite file backing plan sessions").
				Placeholder(config.DefaultDBPath).
				Value(&dbPath),
			huh.NewConfirm().
				Title("Quick mode by default?").
				Description("Quick runs probe only basic tool calling").
				Value(&quick),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Planner models").
				Description("Comma-separated models that draft plans (optional)").
				Placeholder("llama-3.1-8b, mistral-7b").
				Value(&plannersRaw),
			huh.NewInput().
				Title("Critic models").
				Description("Comma-separated models that review drafts (optional)").
				Placeholder("qwen-2.5-7b").
				Value(&criticsRaw),
			huh.NewInput().
				Title("Refiner model").
				Description("Model that rewrites the winning plan (optional)").
				Value(&refiner),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	settings := &Settings{
		APIURL:     orDefault(apiURL, transport.DefaultBaseURL),
		Timeout:    intOrDefault(timeoutRaw, int(transport.DefaultTimeout.Seconds())),
		MaxWorkers: intOrDefault(workersRaw, config.DefaultMaxWorkers),
		OutputDir:  orDefault(outputDir, config.DefaultOutputDir),
		DBPath:     orDefault(dbPath, config.DefaultDBPath),
		Quick:      quick,
		Planners:   splitAndTrim(plannersRaw),
		Critics:    splitAndTrim(criticsRaw),
		Refiner:    strings.TrimSpace(refiner),
	}
	return settings, nil
}

// GenerateConfigYAML renders a .toolgauge.yaml from the given settings.
func GenerateConfigYAML(settings *Settings) (string, error) {
	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, settings); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil // empty keeps the default
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("enter a full URL like %s", transport.DefaultBaseURL)
	}
	return nil
}

func validatePositiveInt(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive whole number")
	}
	return nil
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}

func intOrDefault(s string, fallback int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
