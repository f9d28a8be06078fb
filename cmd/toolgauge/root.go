package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/toolgauge/toolgauge/internal/webapi"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toolgauge",
		Short: "Toolgauge - capability testing for local OpenAI-compatible endpoints",
		Long: `Toolgauge probes every model behind an OpenAI-compatible endpoint for the
capabilities agent workloads depend on: tool calling, reasoning over tool
output, multi-tool requests, JSON mode, and streaming tool calls.

It scores each model, recommends the usable ones, and can drive a
plan-critique-refine pipeline across the models that pass.`,
		Version:      version,
		SilenceUsage: true,
	}

	webapi.Version = version

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newModelsCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newPlanCommand())
	cmd.AddCommand(newSessionsCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
