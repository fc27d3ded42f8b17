package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/config"
)

// defaultConfigFile is read when present and --config is not given.
const defaultConfigFile = "warden.yaml"

var (
	// Global flags
	cfgFile      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Warden - policy enforcement and compliance audit engine",
	Long: `Warden audits a multi-agent automation setup against its declarative policy.

It answers four questions:
  - Which rules apply to which agents, and which agents are missed
  - Whether execution logs delegate to banned sub-agent types
  - Whether source files import banned libraries
  - How many rules are enforced in code rather than only documented

Every audit exits 0 when clean, 1 on findings and 2 when required
configuration is missing.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command and exits with the command's status.
// Commands see a context that is cancelled on SIGINT or SIGTERM.
func Execute() {
	err := rootCmd.ExecuteContext(cli.SetupSignalHandler())
	if err != nil && !cli.Silent(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.ExitCode(err))
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: "+defaultConfigFile+" if present)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "text", "output format: text, json, markdown, csv")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return cli.UsageError(err)
	})
}

// loadConfig initializes the global configuration. An explicit --config
// must exist; otherwise warden.yaml is used when present and the defaults
// when not.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, cli.NewConfigError("config", fmt.Sprintf("configuration file %q not found", path))
	}

	if err := config.Initialize(path); err != nil {
		return nil, cli.NewConfigError("config", err.Error())
	}

	cfg := config.GetConfig()
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	return cfg, nil
}
