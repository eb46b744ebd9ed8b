package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/plint/internal/lints"
	tt "github.com/gnolang/plint/internal/types"
	"github.com/gnolang/plint/lint"
)

// newInitCmd: plint init
func newInitCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new linter configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.cfgFile
			if path == "" {
				path = lint.DefaultConfigName
			}
			if err := initConfigurationFile(path, force); err != nil {
				return fmt.Errorf("error initializing config file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	return cmd
}

// initConfigurationFile writes the default configuration with every
// default rule listed at its default severity.
func initConfigurationFile(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	config := lint.DefaultConfig()
	config.Rules = map[string]tt.ConfigRule{}
	for _, rule := range lints.NewRegistry().Rules() {
		if rule.Default {
			config.Rules[rule.Code] = tt.ConfigRule{Severity: rule.Severity}
		}
	}
	return lint.WriteConfig(path, config)
}
