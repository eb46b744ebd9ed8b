package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/plint/formatter"
	"github.com/gnolang/plint/internal"
	"github.com/gnolang/plint/lint"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Lint the paths, then re-lint files as they change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runWatch(ctx, cmd, opts, args)
		},
	}
}

func runWatch(ctx context.Context, cmd *cobra.Command, opts *rootOptions, paths []string) error {
	format, err := formatter.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	l, err := opts.newLinter()
	if err != nil {
		return err
	}
	defer l.Close()

	out := cmd.OutOrStdout()
	scan := l.Scanner(paths)

	// initial run over every path
	report, err := lint.ProcessPaths(ctx, opts.logger, l.Engine, l.Settings, scan, lint.ProcessFile, lint.ProcessOptions{})
	if err != nil {
		return err
	}
	issues := report.Issues()
	if err := formatter.NewPrinter(out, format, nil).Print(issues); err != nil {
		return err
	}
	printSummary(out, format, len(issues), 0, report.Fixable(fixMode(l.Settings.Config(), false)), false)

	var dirs []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if info.IsDir() {
			dirs = append(dirs, p)
		} else {
			dirs = append(dirs, filepath.Dir(p))
		}
	}

	match := func(path string) bool {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return !l.Settings.Excluded(path)
		}
		return scan.Match(path)
	}
	onChange := func(ctx context.Context, path string) {
		res := l.Engine.Run(ctx, path, l.Settings.RuleSetFor(path))
		p := formatter.NewPrinter(out, format, nil)
		p.SetSource(path, res.Source)
		if err := p.Print(res.Issues); err != nil {
			opts.logger.Error("print", zap.String("file", path), zap.Error(err))
			return
		}
		if format == formatter.FormatText && len(res.Issues) == 0 {
			fmt.Fprintf(out, "%s: all checks passed\n", path)
		}
	}

	w, err := internal.NewWatcher(dirs, match, onChange, opts.logger)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Watching for file changes...")
	return w.Run(ctx)
}
