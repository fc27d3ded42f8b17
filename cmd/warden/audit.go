package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/audit"
	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/config"
	"mercator-hq/warden/pkg/report"
)

var auditFlags struct {
	only     []string
	since    string
	hours    int
	progress bool
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run every audit",
	Long: `Run the coverage, log scan, import scan and enforcement audits in
order and print each report. The exit status is the worst of the
individual audits.

Examples:
  # Run everything
  warden audit

  # Only the scans, limited to the last week
  warden audit --only logs,imports --hours 168

  # One JSON document with every report
  warden audit --format json`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringSliceVar(&auditFlags.only, "only", nil, "audits to run: "+strings.Join(config.AllAudits, ", "))
	auditCmd.Flags().StringVar(&auditFlags.since, "since", "", "scan entries at or after this timestamp")
	auditCmd.Flags().IntVar(&auditFlags.hours, "hours", 0, "scan entries from the last N hours")
	auditCmd.Flags().BoolVar(&auditFlags.progress, "progress", false, "show progress on stderr")
}

func runAudit(cmd *cobra.Command, args []string) error {
	for _, name := range auditFlags.only {
		if !slices.Contains(config.AllAudits, name) {
			return cli.UsageError(fmt.Errorf("unknown audit %q (want one of %s)", name, strings.Join(config.AllAudits, ", ")))
		}
	}
	since, err := timeWindow(auditFlags.since, auditFlags.hours, time.Now())
	if err != nil {
		return cli.UsageError(err)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	audits := auditFlags.only
	if len(audits) == 0 {
		audits = config.AllAudits
	}

	var progress cli.ProgressReporter = cli.NopProgress{}
	if auditFlags.progress {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr())
	}

	progress.Start(len(audits))
	results := make([]audit.Result, 0, len(audits))
	for _, name := range audits {
		progress.Step(name)
		res, err := a.runner.Run(cmd.Context(), name, since)
		if err != nil {
			progress.Error(err)
			return cli.NewCommandError("audit", err)
		}
		results = append(results, res)
	}
	progress.Finish()

	if err := renderResults(a, results); err != nil {
		return cli.NewCommandError("audit", err)
	}
	return cli.Exit(worstExitCode(results))
}

// renderResults writes one JSON document for all results, or each report
// in turn for the other formats.
func renderResults(a *app, results []audit.Result) error {
	if a.format == report.FormatJSON {
		return a.render(results)
	}
	for i, res := range results {
		if i > 0 && a.format != report.FormatCSV {
			if _, err := fmt.Fprintln(a.out); err != nil {
				return err
			}
		}
		if err := a.render(res.Report); err != nil {
			return err
		}
	}
	return nil
}
