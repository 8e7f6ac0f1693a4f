package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/cardvault/pkg/cli"
	"mercator-hq/cardvault/pkg/config"
	"mercator-hq/cardvault/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile      string
	outputFormat string
	verbose      bool
)

// loadedConfig is set by the root PersistentPreRunE for every command that
// needs configuration.
var loadedConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "cardvault",
	Short: "cardvault - archive and retention for card packs and decks",
	Long: `cardvault keeps deleted packs and decks in a trash and point-in-time
snapshots in a history, restores them on demand, and garbage-collects
both collections according to per-type retention policies.

Configuration is read from --config (YAML) and CARDVAULT_* environment
variables; without a file the built-in defaults apply.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults only when empty)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", string(cli.FormatText), "output format: text, json, table")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// setup loads configuration and installs the logger. Commands annotated
// with skipConfig run without it.
func setup(cmd *cobra.Command, args []string) error {
	if _, err := cli.ParseOutputFormat(outputFormat); err != nil {
		return err
	}
	if cmd.Annotations[skipConfig] == "true" {
		return nil
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logCfg := logging.FromConfig(cfg.Telemetry.Logging)
	logCfg.Writer = cmd.ErrOrStderr()
	if _, err := logging.Setup(logCfg); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	cmd.SetContext(logging.WithCommand(cmd.Context(), cmd.CommandPath()))
	loadedConfig = cfg
	return nil
}

const skipConfig = "skip_config"

// render prints v in the selected --output format.
func render(cmd *cobra.Command, v interface{}) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), v)
}
