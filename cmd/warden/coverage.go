package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
)

var coverageFlags struct {
	agent string
}

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Report which rules apply to which agents",
	Long: `Load every rule and agent definition and classify each rule as
universal, partial or none. Partial rules list the agents they miss;
references to agents that do not exist are reported as warnings.

Exits 1 when a critical rule does not reach every agent or a rule fails
to parse, and 2 when the rules directory is missing.

Examples:
  # Full coverage report
  warden coverage

  # Rules that apply to one agent, highest priority first
  warden coverage --agent builder

  # Machine-readable report
  warden coverage --format json`,
	Args: cobra.NoArgs,
	RunE: runCoverage,
}

func init() {
	rootCmd.AddCommand(coverageCmd)

	coverageCmd.Flags().StringVar(&coverageFlags.agent, "agent", "", "only list the rules that apply to this agent")
}

func runCoverage(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rep := a.runner.Coverage(cmd.Context())

	if coverageFlags.agent == "" || rep.Error != nil {
		if err := a.render(rep); err != nil {
			return cli.NewCommandError("coverage", err)
		}
		return cli.Exit(exitCode(rep))
	}

	view := rep.ForAgent(coverageFlags.agent)
	if err := a.render(view); err != nil {
		return cli.NewCommandError("coverage", err)
	}
	if !view.Known {
		return cli.Exit(cli.ExitFindings)
	}
	return nil
}
