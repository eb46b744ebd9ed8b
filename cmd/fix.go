package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/plint/formatter"
	"github.com/gnolang/plint/internal"
	tt "github.com/gnolang/plint/internal/types"
	"github.com/gnolang/plint/lint"
)

type fixOptions struct {
	unsafe bool
	dryRun bool
	diff   bool
}

func newFixCmd(opts *rootOptions) *cobra.Command {
	fo := &fixOptions{}
	cmd := &cobra.Command{
		Use:   "fix [paths...]",
		Short: "Automatically fix issues",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			return runAutoFix(ctx, cmd, opts, fo, args)
		},
	}
	cmd.Flags().BoolVar(&fo.unsafe, "unsafe", false, "Also apply fixes that may change behavior")
	cmd.Flags().BoolVar(&fo.dryRun, "dry-run", false, "Run in dry-run mode (show fixes without applying them)")
	cmd.Flags().BoolVar(&fo.diff, "diff", false, "Print a unified diff of the fixes instead of applying them")
	return cmd
}

// fixMode returns the configured fix mode, defaulting to safe fixes.
func fixMode(config lint.Config, unsafe bool) tt.FixMode {
	if unsafe {
		return tt.FixAll
	}
	if config.Fix == tt.FixNone {
		return tt.FixSafe
	}
	return config.Fix
}

func runAutoFix(ctx context.Context, cmd *cobra.Command, opts *rootOptions, fo *fixOptions, paths []string) error {
	format, err := formatter.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	l, err := opts.newLinter()
	if err != nil {
		return err
	}
	defer l.Close()

	mode := fixMode(l.Settings.Config(), fo.unsafe)
	fixOpts, err := l.Settings.FixOptions(mode)
	if err != nil {
		return err
	}

	report, runErr := lint.ProcessPaths(ctx, opts.logger, l.Engine, l.Settings, l.Scanner(paths),
		lint.FixFile(fixOpts), opts.processOptions(cmd))
	if report == nil {
		return runErr
	}
	if runErr != nil {
		opts.logger.Error("Error processing files", zap.Error(runErr))
	}

	out := cmd.OutOrStdout()
	changed := 0
	for _, f := range report.Files {
		if f.FixedPointNotReached {
			opts.logger.Warn("fixes did not converge; remaining fixes left unapplied",
				zap.String("file", f.Filename), zap.Int("iterations", f.Iterations))
		}
		if !f.Changed() {
			continue
		}
		changed++
		switch {
		case fo.diff:
			if err := writeDiff(out, f); err != nil {
				return err
			}
		case fo.dryRun:
			fmt.Fprintf(out, "Would fix %d %s in %s\n", len(f.Fixed), plural(len(f.Fixed), "issue"), f.Filename)
		default:
			if err := writeFileAtomic(f.Filename, f.Source); err != nil {
				opts.logger.Error("error writing fixed file", zap.String("file", f.Filename), zap.Error(err))
				return err
			}
		}
	}

	if fo.diff {
		if runErr != nil {
			return runErr
		}
		if changed > 0 {
			return ErrIssuesFound
		}
		return nil
	}

	issues := report.Issues()
	printer := formatter.NewPrinter(out, format, nil)
	for _, f := range report.Files {
		printer.SetSource(f.Filename, f.Source)
	}
	if err := printer.Print(issues); err != nil {
		return err
	}
	printSummary(out, format, len(issues), report.Fixed(), report.Fixable(tt.FixAll), true)

	if runErr != nil {
		return runErr
	}
	if len(issues) > 0 {
		return ErrIssuesFound
	}
	return nil
}

func writeDiff(w io.Writer, f *internal.FileResult) error {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(f.Original)),
		B:        difflib.SplitLines(string(f.Source)),
		FromFile: f.Filename,
		ToFile:   f.Filename,
		Context:  3,
	}
	return difflib.WriteUnifiedDiff(w, diff)
}

// writeFileAtomic replaces path through a temporary file in the same
// directory, keeping the original permissions.
func writeFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
