package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/report"
	"mercator-hq/warden/pkg/telemetry/health"
)

const doctorCheckTimeout = 5 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the audit inputs are in place",
	Long: `Check the configuration and every input the audits read.

Required checks (exit 1 when one fails):
  rules_dir  - the rules directory exists
  history    - the history database answers (when history is enabled)

Optional checks (reported as warnings):
  agents_dir, logs_dir, source, status_file

Examples:
  warden doctor
  warden doctor --config ci/warden.yaml --format json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	status := newChecker(a).Run(cmd.Context())

	if a.format == report.FormatJSON {
		if err := a.render(status); err != nil {
			return cli.NewCommandError("doctor", err)
		}
	} else {
		for _, res := range status.Checks {
			line := fmt.Sprintf("%-8s %s", res.Status, res.Name)
			if res.Message != "" {
				line += ": " + res.Message
			}
			fmt.Fprintln(a.out, line)
		}
		fmt.Fprintf(a.out, "\nStatus: %s\n", status.Status)
	}

	if !status.Ready() {
		return cli.Exit(cli.ExitFindings)
	}
	return nil
}

func newChecker(a *app) *health.Checker {
	c := health.New(doctorCheckTimeout)

	c.Register("rules_dir", health.DirectoryCheck(a.cfg.Policy.RulesDir))
	c.RegisterOptional("agents_dir", health.DirectoryCheck(a.cfg.Policy.AgentsDir))
	c.RegisterOptional("logs_dir", health.DirectoryCheck(a.cfg.Scan.LogsDir))
	c.RegisterOptional("source", health.PathCheck(a.cfg.Scan.SourceDir))
	c.RegisterOptional("status_file", health.FileCheck(a.cfg.Enforcement.StatusFile))

	if a.history != nil {
		c.Register("history", health.PingCheck(a.history))
	}
	return c
}
