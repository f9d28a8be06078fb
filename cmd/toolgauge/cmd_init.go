package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/toolgauge/toolgauge/internal/config"
	"github.com/toolgauge/toolgauge/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a project file",
		Long: `Initialize a project file through a short guided setup.

The wizard asks for the endpoint, request limits, and optionally the models
for the planning pipeline, then writes a ` + config.ConfigFileName + ` file.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing project file")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string, force bool) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	target := filepath.Join(dir, config.ConfigFileName)
	if !force {
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("%s already exists; use --force to overwrite", target)
		}
	}

	settings, err := wizard.RunSetupWizard(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	content, err := wizard.GenerateConfigYAML(settings)
	if err != nil {
		return fmt.Errorf("failed to generate project file: %w", err)
	}

	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Initialized project:") //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", target)        //nolint:errcheck

	return nil
}
