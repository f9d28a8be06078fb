package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/toolgauge/toolgauge/internal/config"
	"github.com/toolgauge/toolgauge/internal/planner"
	"github.com/toolgauge/toolgauge/internal/spinner"
	"github.com/toolgauge/toolgauge/internal/store"
	"github.com/toolgauge/toolgauge/internal/transport"
)

var (
	planAPIURL     string
	planTimeoutSec int
	planMaxWorkers int
	planDBPath     string
	planPlanners   []string
	planCritics    []string
	planRefiner    string
	planWeights    []string
	planVerbose    bool
)

func newPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <brief.md>",
		Short: "Run a brief through the plan-critique-refine pipeline",
		Long: `Run a Markdown brief through the plan-critique-refine pipeline.

Planner models each draft a plan, critic models review every draft, a
weighted consensus picks the winner, and the refiner folds the feedback into
the final plan. Everything is recorded as a session in the database.

Models come from the project file; a YAML front matter block in the brief
overrides it, and flags override both.`,
		Args: cobra.ExactArgs(1),
		RunE: planCommandE,
	}

	cmd.Flags().StringVar(&planAPIURL, "api-url", "", "Endpoint base URL (default: http://localhost:8317/v1)")
	cmd.Flags().IntVar(&planTimeoutSec, "timeout", 0, "Per-request timeout in seconds (default: 30)")
	cmd.Flags().IntVar(&planMaxWorkers, "max-workers", 0, "Concurrent model calls within a phase (default: 5)")
	cmd.Flags().StringVar(&planDBPath, "db", "", "Session database path (default: toolgauge.db)")
	cmd.Flags().StringSliceVar(&planPlanners, "planners", nil, "Planner models (comma-separated, can be repeated)")
	cmd.Flags().StringSliceVar(&planCritics, "critics", nil, "Critic models (comma-separated, can be repeated)")
	cmd.Flags().StringVar(&planRefiner, "refiner", "", "Refiner model (default: first planner)")
	cmd.Flags().StringArrayVar(&planWeights, "weight", nil, "Critic weight as model=weight (can be repeated)")
	cmd.Flags().BoolVarP(&planVerbose, "verbose", "v", false, "Verbose output with per-call progress")

	return cmd
}

func planCommandE(cmd *cobra.Command, args []string) error {
	flagWeights, err := parseWeights(planWeights)
	if err != nil {
		return err
	}

	var opts []config.Option
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		opts = append(opts, config.WithAPIURL(planAPIURL))
	}
	if flags.Changed("timeout") {
		opts = append(opts, config.WithTimeout(time.Duration(planTimeoutSec)*time.Second))
	}
	if flags.Changed("max-workers") {
		opts = append(opts, config.WithMaxWorkers(planMaxWorkers))
	}
	if flags.Changed("db") {
		opts = append(opts, config.WithDBPath(planDBPath))
	}

	cfg, err := config.Load(".", opts...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	briefPath := args[0]
	src, err := os.ReadFile(briefPath)
	if err != nil {
		return fmt.Errorf("reading brief: %w", err)
	}
	brief, err := planner.ParseBrief(string(src))
	if err != nil {
		return fmt.Errorf("parsing brief %s: %w", briefPath, err)
	}

	pipeOpts := resolvePipelineOptions(cmd, cfg, brief, flagWeights)

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening session database: %w", err)
	}
	defer st.Close() //nolint:errcheck

	client := transport.NewClient(cfg.APIURL(), transport.WithTimeout(cfg.Timeout()))
	pipe, err := planner.New(client, st, pipeOpts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var spin *spinner.Spinner
	if planVerbose {
		pipe.OnProgress(verbosePlanListener)
	} else {
		spin = spinner.Start(os.Stderr, "planning")
		pipe.OnProgress(func(event planner.Event) {
			switch event.Type {
			case planner.EventPhaseStarted:
				spin.SetMessage(phaseMessage(event.Phase))
			case planner.EventCallFinished:
				spin.SetMessage(fmt.Sprintf("%s: %s finished", phaseMessage(event.Phase), event.Model))
			}
		})
	}

	outcome, err := pipe.Run(ctx, brief)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	printPlanOutcome(brief, outcome)
	return nil
}

// resolvePipelineOptions layers the model choices: project file first, then
// the brief's front matter, then flags that were explicitly set.
func resolvePipelineOptions(cmd *cobra.Command, cfg *config.Config, brief planner.Brief, flagWeights map[string]float64) planner.Options {
	opts := planner.Options{
		Planners:   cfg.Planners(),
		Critics:    cfg.Critics(),
		Refiner:    cfg.Refiner(),
		MaxWorkers: cfg.MaxWorkers(),
	}

	if len(brief.Planners) > 0 {
		opts.Planners = brief.Planners
	}
	if len(brief.Critics) > 0 {
		opts.Critics = brief.Critics
	}
	if brief.Refiner != "" {
		opts.Refiner = brief.Refiner
	}

	flags := cmd.Flags()
	if flags.Changed("planners") {
		opts.Planners = planPlanners
	}
	if flags.Changed("critics") {
		opts.Critics = planCritics
	}
	if flags.Changed("refiner") {
		opts.Refiner = planRefiner
	}

	weights := map[string]float64{}
	maps.Copy(weights, cfg.CriticWeights())
	maps.Copy(weights, brief.Weights)
	maps.Copy(weights, flagWeights)
	if len(weights) > 0 {
		opts.CriticWeights = weights
	}

	return opts
}

// parseWeights parses repeated model=weight flag values.
func parseWeights(entries []string) (map[string]float64, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	weights := make(map[string]float64, len(entries))
	for _, entry := range entries {
		model, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --weight %q: want model=weight", entry)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --weight %q: %w", entry, err)
		}
		weights[strings.TrimSpace(model)] = w
	}
	return weights, nil
}

func phaseMessage(phase string) string {
	switch phase {
	case planner.PhasePlan:
		return "drafting plans"
	case planner.PhaseCritique:
		return "collecting critiques"
	case planner.PhaseRefine:
		return "refining the winner"
	default:
		return phase
	}
}

func verbosePlanListener(event planner.Event) {
	switch event.Type {
	case planner.EventPhaseStarted:
		fmt.Printf("Phase: %s\n", event.Phase)
	case planner.EventCallFinished:
		duration := time.Duration(event.LatencyMs) * time.Millisecond
		if event.Err != nil {
			fmt.Printf("  ✗ %s (%s): %v\n", event.Model, formatDuration(duration), event.Err)
			return
		}
		fmt.Printf("  ✓ %s (%s)\n", event.Model, formatDuration(duration))
	case planner.EventWinnerChosen:
		fmt.Printf("Winner: %s (consensus %.1f)\n", event.Model, event.Score)
	}
}

func printPlanOutcome(brief planner.Brief, outcome *planner.Outcome) {
	fmt.Println()
	fmt.Println("=" + strings.Repeat("=", 50))
	fmt.Println(" PLANNING RESULTS")
	fmt.Println("=" + strings.Repeat("=", 50))
	fmt.Println()

	fmt.Printf("Brief:   %s\n", brief.Title)
	fmt.Printf("Session: %s\n", outcome.SessionID)
	fmt.Println()

	width := runewidth.StringWidth("Model")
	for _, draft := range outcome.Drafts {
		if w := runewidth.StringWidth(draft.Model); w > width {
			width = w
		}
	}

	fmt.Printf("  %s  %s\n", padRight("Model", width), "Consensus")
	for i, draft := range outcome.Drafts {
		marker := " "
		if i == outcome.Winner {
			marker = "*"
		}
		fmt.Printf("%s %s  %9.1f\n", marker, padRight(draft.Model, width), draft.Consensus)
	}
	fmt.Println()

	fmt.Println("-" + strings.Repeat("-", 50))
	fmt.Println(outcome.FinalPlan)
}
