package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toolgauge/toolgauge/internal/config"
	"github.com/toolgauge/toolgauge/internal/reporting"
)

func newReportCommand() *cobra.Command {
	var reportOutputDir string
	var junitPath string
	var reportInterpret bool

	cmd := &cobra.Command{
		Use:   "report [artifact]",
		Short: "Render a saved report",
		Long: `Render a saved report.

Without an argument the newest artifact in the output directory is used.
Gzipped artifacts are read transparently.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []config.Option
			if cmd.Flags().Changed("output-dir") {
				opts = append(opts, config.WithOutputDir(reportOutputDir))
			}

			cfg, err := config.Load(".", opts...)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			path := ""
			if len(args) > 0 {
				path = args[0]
			} else {
				artifacts, err := reporting.ListArtifacts(cfg.OutputDir())
				if err != nil {
					return fmt.Errorf("listing artifacts: %w", err)
				}
				if len(artifacts) == 0 {
					return fmt.Errorf("no report artifacts in %s; run `toolgauge run` first", cfg.OutputDir())
				}
				path = artifacts[0].Path
			}

			report, err := reporting.LoadReport(path)
			if err != nil {
				return fmt.Errorf("loading report: %w", err)
			}

			fmt.Print(FormatRunSummary(report))

			if reportInterpret {
				fmt.Print(reporting.FormatSummaryReport(report))
			}

			if junitPath != "" {
				if err := reporting.WriteJUnitXML(report, junitPath); err != nil {
					return fmt.Errorf("writing JUnit XML: %w", err)
				}
				fmt.Printf("JUnit XML saved to: %s\n", junitPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&reportOutputDir, "output-dir", "o", "", "Directory holding report artifacts (default: output)")
	cmd.Flags().StringVar(&junitPath, "junit", "", "Also write the report as JUnit XML to this path")
	cmd.Flags().BoolVar(&reportInterpret, "interpret", false, "Print a plain-language interpretation of the results")

	return cmd
}
