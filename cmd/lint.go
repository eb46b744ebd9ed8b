package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/plint/formatter"
	"github.com/gnolang/plint/lint"
)

func newLintCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Run the normal lint process",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			return runNormalLintProcess(ctx, cmd, opts, args)
		},
	}
}

func runNormalLintProcess(ctx context.Context, cmd *cobra.Command, opts *rootOptions, paths []string) error {
	format, err := formatter.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	l, err := opts.newLinter()
	if err != nil {
		return err
	}
	defer l.Close()

	report, err := lint.ProcessPaths(ctx, opts.logger, l.Engine, l.Settings, l.Scanner(paths),
		lint.ProcessFile, opts.processOptions(cmd))
	if err != nil {
		opts.logger.Error("Error processing files", zap.Error(err))
		if report == nil {
			return err
		}
	}

	issues := report.Issues()
	out := cmd.OutOrStdout()
	printer := formatter.NewPrinter(out, format, nil)
	for _, f := range report.Files {
		printer.SetSource(f.Filename, f.Source)
	}
	if err := printer.Print(issues); err != nil {
		return err
	}
	printSummary(out, format, len(issues), 0, report.Fixable(fixMode(l.Settings.Config(), false)), false)

	if err != nil {
		return err
	}
	if len(issues) > 0 {
		return ErrIssuesFound
	}
	return nil
}

func printSummary(w io.Writer, format formatter.Format, remaining, fixed, fixable int, fixing bool) {
	if format != formatter.FormatText {
		return
	}
	fmt.Fprint(w, formatter.Summary(remaining, fixed, fixable, fixing))
}

func (o *rootOptions) processOptions(cmd *cobra.Command) lint.ProcessOptions {
	var po lint.ProcessOptions
	if !o.noProgress {
		po.Progress = cmd.ErrOrStderr()
	}
	return po
}
