package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
)

var enforcementCmd = &cobra.Command{
	Use:   "enforcement",
	Short: "Report how many rules are enforced in code",
	Long: `Read the enforcement status document and report coverage: the share
of rules whose status is enforced, a breakdown by status, and the gaps
still to close.

Exits 1 when coverage is below 100% and a gap is listed, and 2 when
the status document is missing.

Examples:
  # Summary with gaps
  warden enforcement

  # Regenerate the enforcement documentation
  warden enforcement --format markdown > docs/enforcement.md`,
	Args: cobra.NoArgs,
	RunE: runEnforcement,
}

func init() {
	rootCmd.AddCommand(enforcementCmd)
}

func runEnforcement(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rep := a.runner.Enforcement(cmd.Context())
	if err := a.render(rep); err != nil {
		return cli.NewCommandError("enforcement", err)
	}
	return cli.Exit(exitCode(rep))
}
