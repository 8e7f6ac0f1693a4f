package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/cardvault/pkg/archive/policy"
	"mercator-hq/cardvault/pkg/cli"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect retention policies",
	Long: `Inspect the retention policies that drive the garbage collector.

Subcommands:
  show      - Print the effective policy of every (collection, type) pair
  validate  - Check a retention overrides file`,
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective retention policies",
	Long: `Print the effective policy of every (collection, type) pair: the
built-in defaults with the configured overrides applied. A limit of 0 is
shown as unlimited.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := loadedConfig.Retention.Policies
		if path := loadedConfig.Retention.PoliciesFile; path != "" {
			var err error
			if overrides, err = policy.LoadOverrides(path); err != nil {
				return cli.NewConfigError("retention.policies_file", err.Error())
			}
		}

		all, err := policy.NewResolver(&overrides).All()
		if err != nil {
			return cli.NewCommandError("policy show", err)
		}
		return render(cmd, newPolicyTable(all))
	},
}

var policyValidateCmd = &cobra.Command{
	Use:         "validate <file>",
	Short:       "Validate a retention overrides file",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := policy.LoadOverrides(args[0]); err != nil {
			return cli.NewConfigError(args[0], err.Error())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyShowCmd, policyValidateCmd)
}
