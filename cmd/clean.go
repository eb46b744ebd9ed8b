package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// newCleanCmd: plint clean
func newCleanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove every cached lint result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.noCache {
				return errors.New("clean needs a cache; drop --no-cache")
			}
			l, err := opts.newLinter()
			if err != nil {
				return err
			}
			defer l.Close()

			if l.Settings.Config().CacheDir == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No cache configured.")
				return nil
			}
			n, err := l.ClearCache()
			if err != nil {
				return fmt.Errorf("error clearing cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached %s.\n", n, plural(n, "result"))
			return nil
		},
	}
}
