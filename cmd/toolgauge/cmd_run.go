package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/toolgauge/toolgauge/internal/config"
	"github.com/toolgauge/toolgauge/internal/harness"
	"github.com/toolgauge/toolgauge/internal/models"
	"github.com/toolgauge/toolgauge/internal/reporting"
	"github.com/toolgauge/toolgauge/internal/scoring"
)

var (
	apiURL     string
	filterExpr string
	quick      bool
	timeoutSec int
	maxWorkers int
	outputDir  string
	compress   bool
	failUnder  string
	interpret  bool
	verbose    bool
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the capability scenarios against every model",
		Long: `Run the capability scenarios against every model behind the endpoint.

Models are discovered via the endpoint's /models listing, filtered, and then
tested one at a time so latency numbers stay comparable. The scored report is
saved as a timestamped JSON artifact in the output directory.`,
		Args: cobra.NoArgs,
		RunE: runCommandE,
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Endpoint base URL (default: http://localhost:8317/v1)")
	cmd.Flags().StringVar(&filterExpr, "filter", "", "Only test models whose id matches this regular expression")
	cmd.Flags().BoolVar(&quick, "quick", false, "Quick mode: run only the basic tool-calling scenario")
	cmd.Flags().IntVar(&timeoutSec, "timeout", 0, "Per-request timeout in seconds (default: 30)")
	cmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Concurrent model calls for the planning pipeline (default: 5)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for report artifacts (default: output)")
	cmd.Flags().BoolVar(&compress, "compress", false, "Gzip the saved report artifact")
	cmd.Flags().StringVar(&failUnder, "fail-under", "", "Exit non-zero unless some model reaches this tier (recommended, partial, none)")
	cmd.Flags().BoolVar(&interpret, "interpret", false, "Print a plain-language interpretation of the results")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output with per-scenario progress")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	var failTier scoring.Tier
	if failUnder != "" {
		tier, err := scoring.ParseTier(failUnder)
		if err != nil {
			return fmt.Errorf("invalid --fail-under value: %w", err)
		}
		failTier = tier
	}

	cfg, err := config.Load(".", runConfigOptions(cmd)...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := harness.NewRunner(cfg)

	if verbose {
		runner.OnProgress(verboseProgressListener)
	} else {
		runner.OnProgress(simpleProgressListener)
	}

	fmt.Printf("Testing endpoint: %s\n", cfg.APIURL())
	fmt.Printf("Scenarios: %s\n", strings.Join(runner.Scenarios(), ", "))
	if cfg.Filter() != "" {
		fmt.Printf("Filter: %s\n", cfg.Filter())
	}
	fmt.Println()

	report, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("capability run failed: %w", err)
	}

	fmt.Println()
	fmt.Print(FormatRunSummary(report))

	if interpret {
		fmt.Print(reporting.FormatSummaryReport(report))
		fmt.Println()
	}

	path, err := reporting.Save(cfg.OutputDir(), report, compress)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	fmt.Printf("Report saved to: %s\n", path)

	if failUnder != "" && !anyModelAtLeast(report, failTier) {
		return &ThresholdError{
			Message: fmt.Sprintf("no model reached the %s tier", failTier),
		}
	}

	return nil
}

// runConfigOptions maps the flags that were explicitly set onto config
// options, so unset flags never mask project-file or environment values.
func runConfigOptions(cmd *cobra.Command) []config.Option {
	var opts []config.Option
	flags := cmd.Flags()

	if flags.Changed("api-url") {
		opts = append(opts, config.WithAPIURL(apiURL))
	}
	if flags.Changed("filter") {
		opts = append(opts, config.WithFilter(filterExpr))
	}
	if flags.Changed("quick") {
		opts = append(opts, config.WithQuick(quick))
	}
	if flags.Changed("timeout") {
		opts = append(opts, config.WithTimeout(time.Duration(timeoutSec)*time.Second))
	}
	if flags.Changed("max-workers") {
		opts = append(opts, config.WithMaxWorkers(maxWorkers))
	}
	if flags.Changed("output-dir") {
		opts = append(opts, config.WithOutputDir(outputDir))
	}
	return opts
}

// anyModelAtLeast reports whether any tested model reached the target tier.
func anyModelAtLeast(report *models.Report, target scoring.Tier) bool {
	for _, res := range report.Results {
		if scoring.Tier(res.Recommendation).AtLeast(target) {
			return true
		}
	}
	return false
}

func verboseProgressListener(event harness.ProgressEvent) {
	switch event.Type {
	case harness.EventRunStarted:
		fmt.Printf("Testing %d model(s)...\n\n", event.TotalModels)
	case harness.EventModelStarted:
		fmt.Printf("[%d/%d] Testing model: %s\n", event.ModelNum, event.TotalModels, event.Model)
	case harness.EventScenarioFinished:
		duration := time.Duration(event.LatencyMs) * time.Millisecond
		fmt.Printf("  %s %s (%s)\n", statusIcon(event.Status), event.Scenario, formatDuration(duration))
	case harness.EventModelFinished:
		fmt.Printf("  Score: %.1f (%s)\n\n", event.Score, event.Tier)
	}
}

func simpleProgressListener(event harness.ProgressEvent) {
	if event.Type != harness.EventModelFinished {
		return
	}

	icon := "✓"
	if event.Tier == scoring.TierNone {
		icon = "✗"
	}
	fmt.Printf("%s [%d/%d] %s  %.1f (%s)\n",
		icon, event.ModelNum, event.TotalModels, event.Model, event.Score, event.Tier)
}

func statusIcon(status models.Status) string {
	switch status {
	case models.StatusPassed:
		return "✓"
	case models.StatusSkipped:
		return "-"
	default:
		return "✗"
	}
}
