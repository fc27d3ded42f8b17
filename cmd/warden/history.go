package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/history"
)

var historyFlags struct {
	audit   string
	outcome string
	trigger string
	runID   string
	since   string
	until   string
	limit   int
	offset  int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query recorded audit runs",
	Long: `Query and prune the audit history. Every audit run is recorded when
history.enabled is true in the configuration.

Subcommands:
  list   - list recorded runs, newest first
  prune  - apply the retention policy now

Examples:
  # Last 20 runs
  warden history list --limit 20

  # Failed scheduled enforcement audits this month
  warden history list --audit enforcement --outcome findings --trigger schedule --since 2026-10-01T00:00:00Z

  # Export to CSV
  warden history list --format csv > runs.csv`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded audit runs",
	Args:  cobra.NoArgs,
	RunE:  listHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs outside the retention policy",
	Args:  cobra.NoArgs,
	RunE:  pruneHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyPruneCmd)

	historyListCmd.Flags().StringVar(&historyFlags.audit, "audit", "", "filter by audit (coverage, logs, imports, enforcement)")
	historyListCmd.Flags().StringVar(&historyFlags.outcome, "outcome", "", "filter by outcome (clean, findings, error)")
	historyListCmd.Flags().StringVar(&historyFlags.trigger, "trigger", "", "filter by trigger (cli, watch, schedule)")
	historyListCmd.Flags().StringVar(&historyFlags.runID, "run-id", "", "filter by run ID")
	historyListCmd.Flags().StringVar(&historyFlags.since, "since", "", "runs started at or after this time (RFC3339)")
	historyListCmd.Flags().StringVar(&historyFlags.until, "until", "", "runs started at or before this time (RFC3339)")
	historyListCmd.Flags().IntVar(&historyFlags.limit, "limit", history.DefaultQueryLimit, "max results")
	historyListCmd.Flags().IntVar(&historyFlags.offset, "offset", 0, "pagination offset")
}

func listHistory(cmd *cobra.Command, args []string) error {
	query := &history.Query{
		Audit:   historyFlags.audit,
		Outcome: historyFlags.outcome,
		Trigger: historyFlags.trigger,
		RunID:   historyFlags.runID,
		Limit:   historyFlags.limit,
		Offset:  historyFlags.offset,
	}
	var err error
	if query.Since, err = parseRFC3339("since", historyFlags.since); err != nil {
		return cli.UsageError(err)
	}
	if query.Until, err = parseRFC3339("until", historyFlags.until); err != nil {
		return cli.UsageError(err)
	}
	if err := query.Validate(); err != nil {
		return cli.UsageError(err)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.requireHistory()
	if err != nil {
		return err
	}

	records, err := store.Query(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("history list", err)
	}
	if err := a.render(records); err != nil {
		return cli.NewCommandError("history list", err)
	}
	return nil
}

func pruneHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.requireHistory()
	if err != nil {
		return err
	}

	deleted, err := history.NewPruner(store, a.cfg.History.Retention, a.logger).Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("history prune", err)
	}
	fmt.Fprintf(a.out, "Pruned %d audit runs\n", deleted)
	return nil
}

func parseRFC3339(flag, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return &t, nil
}
