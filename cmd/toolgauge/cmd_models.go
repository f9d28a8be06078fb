package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/toolgauge/toolgauge/internal/config"
	"github.com/toolgauge/toolgauge/internal/harness"
	"github.com/toolgauge/toolgauge/internal/models"
	"github.com/toolgauge/toolgauge/internal/transport"
)

func newModelsCommand() *cobra.Command {
	var modelsAPIURL string
	var modelsFilter string
	var all bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models behind the endpoint",
		Long: `List the models behind the endpoint.

By default the listing shows the candidates a run would test, after the
filter and the built-in exclusions. Use --all for the raw endpoint listing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []config.Option
			if cmd.Flags().Changed("api-url") {
				opts = append(opts, config.WithAPIURL(modelsAPIURL))
			}
			if cmd.Flags().Changed("filter") {
				opts = append(opts, config.WithFilter(modelsFilter))
			}

			cfg, err := config.Load(".", opts...)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := transport.NewClient(cfg.APIURL(), transport.WithTimeout(cfg.Timeout()))
			infos, err := client.ListModels(ctx)
			if err != nil {
				return fmt.Errorf("listing models: %w", err)
			}

			if !all {
				infos, err = harness.FilterModels(infos, cfg.Filter())
				if err != nil {
					return err
				}
			}

			if len(infos) == 0 {
				fmt.Println("No models found.")
				return nil
			}

			fmt.Print(formatModelTable(infos))
			return nil
		},
	}

	cmd.Flags().StringVar(&modelsAPIURL, "api-url", "", "Endpoint base URL (default: http://localhost:8317/v1)")
	cmd.Flags().StringVar(&modelsFilter, "filter", "", "Only list models whose id matches this regular expression")
	cmd.Flags().BoolVar(&all, "all", false, "Show the raw endpoint listing, including excluded models")

	return cmd
}

func formatModelTable(infos []models.ModelInfo) string {
	width := runewidth.StringWidth("ID")
	for _, info := range infos {
		if w := runewidth.StringWidth(info.ID); w > width {
			width = w
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %-20s %s\n", padRight("ID", width), "OWNED BY", "CREATED")
	for _, info := range infos {
		owner := info.OwnedBy
		if owner == "" {
			owner = "-"
		}
		created := "-"
		if info.Created > 0 {
			created = time.Unix(info.Created, 0).UTC().Format("2006-01-02")
		}
		fmt.Fprintf(&b, "%s  %-20s %s\n", padRight(info.ID, width), owner, created)
	}
	return b.String()
}
