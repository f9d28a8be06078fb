package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/toolgauge/toolgauge/internal/config"
	"github.com/toolgauge/toolgauge/internal/store"
)

func newSessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "View and manage planning sessions",
		Long: `View and manage the planning sessions recorded by the plan command.

A session holds the drafted plans, every critique, and a log of the model
calls made along the way.`,
	}

	cmd.AddCommand(newSessionsListCommand())
	cmd.AddCommand(newSessionsShowCommand())
	cmd.AddCommand(newSessionsDeleteCommand())

	return cmd
}

// openSessionStore resolves the database path (flag over project file) and
// opens the store.
func openSessionStore(cmd *cobra.Command, dbPath string) (*store.Store, error) {
	var opts []config.Option
	if cmd.Flags().Changed("db") {
		opts = append(opts, config.WithDBPath(dbPath))
	}

	cfg, err := config.Load(".", opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}
	return st, nil
}

func newSessionsListCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openSessionStore(cmd, dbPath)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			sessions, err := st.ListSessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}

			if len(sessions) == 0 {
				fmt.Println("No sessions recorded.")
				return nil
			}

			fmt.Printf("%-36s %-28s %-8s %s\n", "ID", "Title", "Status", "Created")
			fmt.Println(strings.Repeat("─", 94))
			for _, s := range sessions {
				fmt.Printf("%-36s %-28s %-8s %s\n",
					s.ID, s.Title, s.Status, s.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Session database path (default: toolgauge.db)")

	return cmd
}

func newSessionsShowCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session's plans, critiques, and executions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openSessionStore(cmd, dbPath)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			detail, err := st.GetSession(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("loading session: %w", err)
			}

			printSessionDetail(detail)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Session database path (default: toolgauge.db)")

	return cmd
}

func newSessionsDeleteCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and everything recorded under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openSessionStore(cmd, dbPath)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			if err := st.DeleteSession(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deleting session: %w", err)
			}

			fmt.Printf("Deleted session %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Session database path (default: toolgauge.db)")

	return cmd
}

func printSessionDetail(detail *store.SessionDetail) {
	fmt.Printf("Session: %s\n", detail.ID)
	fmt.Printf("Title:   %s\n", detail.Title)
	fmt.Printf("Status:  %s\n", detail.Status)
	fmt.Printf("Created: %s\n", detail.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Println()

	critiques := make(map[string][]store.Critique, len(detail.Plans))
	for _, c := range detail.Critiques {
		critiques[c.PlanID] = append(critiques[c.PlanID], c)
	}

	fmt.Printf("Plans (%d):\n", len(detail.Plans))
	for _, plan := range detail.Plans {
		marker := " "
		if plan.Selected {
			marker = "*"
		}
		consensus := "-"
		if plan.ConsensusScore != nil {
			consensus = fmt.Sprintf("%.1f", *plan.ConsensusScore)
		}
		fmt.Printf("%s %s  %-24s consensus=%s\n", marker, plan.ID, plan.Model, consensus)
		for _, c := range critiques[plan.ID] {
			score := fmt.Sprintf("%.1f", c.Score)
			if c.Score < 0 {
				score = "unscored"
			}
			fmt.Printf("    %-24s %s\n", c.CriticModel, score)
		}
	}
	fmt.Println()

	fmt.Printf("Executions (%d):\n", len(detail.Executions))
	for _, e := range detail.Executions {
		duration := time.Duration(e.LatencyMs) * time.Millisecond
		line := fmt.Sprintf("  %-9s %-24s %-6s %s", e.Phase, e.Model, e.Status, formatDuration(duration))
		if e.Error != "" {
			line += "  " + e.Error
		}
		fmt.Println(line)
	}

	for _, plan := range detail.Plans {
		if !plan.Selected {
			continue
		}
		fmt.Println()
		fmt.Println("Winning draft:")
		fmt.Println("-" + strings.Repeat("-", 50))
		fmt.Println(plan.Content)
		break
	}
}
