package main

import (
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/audit/scan"
	"mercator-hq/warden/pkg/cli"
)

var scanFlags struct {
	since string
	hours int
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan logs and sources for banned actions",
	Long: `Scan execution logs for delegations to banned sub-agent types, or
source files for imports of banned libraries.

Subcommands:
  logs     - scan execution logs
  imports  - scan source files

Timestamps without a zone are read as UTC. With --since (or --hours),
entries that are older or have no usable timestamp are skipped and
counted as skipped by time.

Examples:
  # Scan all execution logs
  warden scan logs

  # Scan the last 24 hours
  warden scan logs --hours 24

  # Scan sources modified since a date
  warden scan imports --since 2026-01-01`,
}

var scanLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Scan execution logs for banned delegations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, func(a *app, since *time.Time) *scan.Report {
			return a.runner.ScanLogs(cmd.Context(), since)
		})
	},
}

var scanImportsCmd = &cobra.Command{
	Use:   "imports",
	Short: "Scan source files for banned library imports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, func(a *app, since *time.Time) *scan.Report {
			return a.runner.ScanImports(cmd.Context(), since)
		})
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.AddCommand(scanLogsCmd, scanImportsCmd)

	scanCmd.PersistentFlags().StringVar(&scanFlags.since, "since", "", "only scan entries at or after this timestamp (RFC3339 or YYYY-MM-DD)")
	scanCmd.PersistentFlags().IntVar(&scanFlags.hours, "hours", 0, "only scan entries from the last N hours")
}

func runScan(cmd *cobra.Command, scanFn func(*app, *time.Time) *scan.Report) error {
	since, err := timeWindow(scanFlags.since, scanFlags.hours, time.Now())
	if err != nil {
		return cli.UsageError(err)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rep := scanFn(a, since)
	if err := a.render(rep); err != nil {
		return cli.NewCommandError("scan", err)
	}
	return cli.Exit(exitCode(rep))
}
