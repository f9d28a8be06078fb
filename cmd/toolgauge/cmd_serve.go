package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/toolgauge/toolgauge/internal/config"
	"github.com/toolgauge/toolgauge/internal/webserver"
)

func newServeCommand() *cobra.Command {
	var port int
	var resultsDir string
	var dbPath string
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the results dashboard",
		Long: `Serve the results dashboard on localhost.

The dashboard reads report artifacts from the results directory and planning
sessions from the database, and exposes both over a small JSON API under
/api/.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			serveCfg := webserver.Config{
				Port:       port,
				ResultsDir: cfg.OutputDir(),
				DBPath:     cfg.DBPath(),
				NoBrowser:  noBrowser,
			}
			if cmd.Flags().Changed("results-dir") {
				serveCfg.ResultsDir = resultsDir
			}
			if cmd.Flags().Changed("db") {
				serveCfg.DBPath = dbPath
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := webserver.New(serveCfg)
			if err != nil {
				return err
			}
			defer srv.Close() //nolint:errcheck

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 3000, "Port to listen on")
	cmd.Flags().StringVar(&resultsDir, "results-dir", "", "Directory holding report artifacts (default: output)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Session database path (default: toolgauge.db)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open the dashboard in a browser")

	return cmd
}
