package lint

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/plint/internal"
	"github.com/gnolang/plint/internal/fixer"
	tt "github.com/gnolang/plint/internal/types"
	"github.com/gnolang/plint/scanner"
)

// LintEngine runs the per-file pass. *internal.Engine implements it.
type LintEngine interface {
	Run(ctx context.Context, filename string, set tt.RuleSet) *internal.FileResult
	RunFix(ctx context.Context, filename string, set tt.RuleSet, opts fixer.Options) *internal.FileResult
}

// Processor produces the result of one file.
type Processor func(ctx context.Context, engine LintEngine, path string, set tt.RuleSet) *internal.FileResult

// ProcessFile lints a file without fixing it.
func ProcessFile(ctx context.Context, engine LintEngine, path string, set tt.RuleSet) *internal.FileResult {
	return engine.Run(ctx, path, set)
}

// FixFile returns a processor running the fix loop with opts.
func FixFile(opts fixer.Options) Processor {
	return func(ctx context.Context, engine LintEngine, path string, set tt.RuleSet) *internal.FileResult {
		return engine.RunFix(ctx, path, set, opts)
	}
}

// Linter bundles an engine with the settings it was configured from.
type Linter struct {
	Engine   *internal.Engine
	Settings *Settings
	cache    *internal.Cache
}

// New builds an engine for config. A cache is opened when the
// configuration names a cache directory.
func New(config Config, logger *zap.Logger) (*Linter, error) {
	opts := []internal.EngineOption{internal.WithLogger(logger)}
	if config.MaxIterations > 0 {
		opts = append(opts, internal.WithMaxIterations(config.MaxIterations))
	}

	var cache *internal.Cache
	if config.CacheDir != "" {
		var err error
		cache, err = internal.NewCache(config.CacheDir)
		if err != nil {
			return nil, err
		}
		cache.SetMaxAge(config.CacheMaxAge)
		opts = append(opts, internal.WithCache(cache))
	}

	engine := internal.NewEngine(opts...)
	settings, err := config.Compile(engine.Registry())
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		return nil, err
	}
	return &Linter{Engine: engine, Settings: settings, cache: cache}, nil
}

func (l *Linter) Close() error {
	if l.cache == nil {
		return nil
	}
	return l.cache.Close()
}

// ClearCache drops every cached result and returns how many were removed.
// It is a no-op without a cache.
func (l *Linter) ClearCache() (int, error) {
	if l.cache == nil {
		return 0, nil
	}
	n, err := l.cache.Len()
	if err != nil {
		return 0, err
	}
	if err := l.cache.InvalidateAll(); err != nil {
		return 0, err
	}
	return n, nil
}

// Scanner returns a scanner over paths honoring the exclude patterns.
func (l *Linter) Scanner(paths []string) *scanner.Scanner {
	return scanner.New(paths, l.Settings.Excluded)
}

// Report is the merged outcome of a multi-file run.
type Report struct {
	// Files are ordered by path.
	Files []*internal.FileResult
}

// Issues returns the issues of every file ordered by path, primary range
// and rule code.
func (r *Report) Issues() []tt.Issue {
	var issues []tt.Issue
	for _, f := range r.Files {
		issues = append(issues, f.Issues...)
	}
	tt.SortIssues(issues)
	return issues
}

// Fixed counts the issues resolved by applied fixes.
func (r *Report) Fixed() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Fixed)
	}
	return n
}

// Fixable counts the remaining issues with a fix allowed by mode.
func (r *Report) Fixable(mode tt.FixMode) int {
	n := 0
	for _, f := range r.Files {
		n += f.Fixable(mode)
	}
	return n
}

// ProcessOptions tune ProcessPaths.
type ProcessOptions struct {
	// Progress, when set, receives a progress bar for runs over more than
	// one file.
	Progress io.Writer
	Workers  int
}

// ProcessPaths expands paths with scan and runs processor on every file in
// a bounded worker pool. Each file gets the rule set resolved for its path.
// On cancellation no new file is started, files already started are
// finished, and the results gathered so far are returned with the context
// error.
func ProcessPaths(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	settings *Settings,
	scan *scanner.Scanner,
	processor Processor,
	opts ProcessOptions,
) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	files, err := scan.Scan()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return ProcessFiles(ctx, logger, engine, settings, paths, processor, opts)
}

// ProcessFiles runs processor on the given files.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	settings *Settings,
	paths []string,
	processor Processor,
	opts ProcessOptions,
) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil && len(paths) > 1 {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	results := make([]*internal.FileResult, len(paths))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if bar != nil {
				bar.Describe(filepath.Base(path))
			}
			// a started pass runs to completion
			res := processor(context.WithoutCancel(ctx), engine, path, settings.RuleSetFor(path))
			if res == nil {
				logger.Error("Error processing file", zap.String("file", path))
				return nil
			}
			results[i] = res
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	if bar != nil {
		_ = bar.Finish()
	}

	report := &Report{}
	for _, res := range results {
		if res != nil {
			report.Files = append(report.Files, res)
		}
	}
	sort.SliceStable(report.Files, func(i, j int) bool {
		return report.Files[i].Filename < report.Files[j].Filename
	})

	if err := ctx.Err(); err != nil {
		logger.Warn("run cancelled",
			zap.Int("processed", len(report.Files)), zap.Int("total", len(paths)))
		return report, fmt.Errorf("processing stopped: %w", err)
	}
	return report, nil
}
