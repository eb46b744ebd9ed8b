package internal

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"os"

	"go.uber.org/zap"

	"github.com/gnolang/plint/internal/checker"
	"github.com/gnolang/plint/internal/fixer"
	"github.com/gnolang/plint/internal/lints"
	"github.com/gnolang/plint/internal/nolint"
	"github.com/gnolang/plint/internal/syntax"
	tt "github.com/gnolang/plint/internal/types"
)

// Engine runs the per-file pass: parse, check, collect and suppress, and,
// in fix mode, the fix loop. An Engine holds no per-file state and may be
// shared by concurrent workers.
type Engine struct {
	registry      *lints.Registry
	cache         *Cache
	logger        *zap.Logger
	maxIterations int
}

// EngineOption configures NewEngine.
type EngineOption func(*Engine)

// WithCache reuses and stores lint results in c.
func WithCache(c *Cache) EngineOption {
	return func(e *Engine) { e.cache = c }
}

func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxIterations bounds the fix loop.
func WithMaxIterations(n int) EngineOption {
	return func(e *Engine) { e.maxIterations = n }
}

// NewEngine creates a new lint engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		registry:      lints.NewRegistry(),
		logger:        zap.NewNop(),
		maxIterations: fixer.DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Registry() *lints.Registry { return e.registry }

// FileResult is the outcome of processing one file.
type FileResult struct {
	Filename string
	// Issues are the diagnostics left in Source.
	Issues []tt.Issue
	// Fixed lists the diagnostics resolved by applied fixes.
	Fixed []tt.Issue
	// Original is the file as read; Source is the rewritten text, equal to
	// Original when nothing was fixed.
	Original []byte
	Source   []byte
	// FixedPointNotReached is set when fixes were still being accepted at
	// the iteration limit.
	FixedPointNotReached bool
	Iterations           int
	Cached               bool
}

// Changed reports whether fixes rewrote the file.
func (r *FileResult) Changed() bool { return len(r.Fixed) > 0 }

// Fixable counts the remaining issues carrying a fix allowed by mode.
func (r *FileResult) Fixable(mode tt.FixMode) int {
	n := 0
	for _, issue := range r.Issues {
		for _, f := range issue.Fixes {
			if mode.Allows(f.Applicability) {
				n++
				break
			}
		}
	}
	return n
}

// Run lints filename. Failures to read the file become an io-error issue;
// the cache entry of a file that no longer exists is dropped.
func (e *Engine) Run(ctx context.Context, filename string, set tt.RuleSet) *FileResult {
	src, err := os.ReadFile(filename)
	if err != nil {
		if e.cache != nil && errors.Is(err, os.ErrNotExist) {
			if ierr := e.cache.Invalidate(filename); ierr != nil {
				e.logger.Warn("cache invalidate", zap.String("file", filename), zap.Error(ierr))
			}
		}
		return e.ioFailure(filename, set, err)
	}
	return e.Lint(ctx, filename, src, set)
}

// Lint checks src without fixing it. Results are reused from the cache
// when the contents and the rule set are unchanged. A started pass runs to
// completion even if ctx is cancelled.
func (e *Engine) Lint(ctx context.Context, filename string, src []byte, set tt.RuleSet) *FileResult {
	ctx = context.WithoutCancel(ctx)
	res := &FileResult{Filename: filename, Original: src, Source: src}

	var key CacheKey
	if e.cache != nil {
		var err error
		if key, err = NewCacheKey(src, set); err != nil {
			e.logger.Warn("cache key", zap.String("file", filename), zap.Error(err))
		} else if issues, ok := e.cache.Get(filename, key); ok {
			res.Issues, res.Cached = issues, true
			return res
		}
	}

	issues, err := e.Check(ctx, filename, src, set)
	if err != nil {
		res.Issues = e.passFailure(filename, src, set, err)
		return res
	}
	res.Issues = issues

	if e.cache != nil && key.Content != "" {
		if err := e.cache.Set(filename, key, issues); err != nil {
			e.logger.Warn("cache store", zap.String("file", filename), zap.Error(err))
		}
	}
	return res
}

// RunFix reads filename and applies fixes to it in memory. The caller
// decides whether to write FileResult.Source back.
func (e *Engine) RunFix(ctx context.Context, filename string, set tt.RuleSet, opts fixer.Options) *FileResult {
	src, err := os.ReadFile(filename)
	if err != nil {
		return e.ioFailure(filename, set, err)
	}
	return e.Fix(ctx, filename, src, set, opts)
}

// Fix runs the fix loop over src until no more fixes apply or the
// iteration limit is hit. Like Lint, it ignores cancellation of ctx.
func (e *Engine) Fix(ctx context.Context, filename string, src []byte, set tt.RuleSet, opts fixer.Options) *FileResult {
	ctx = context.WithoutCancel(ctx)
	res := &FileResult{Filename: filename, Original: src, Source: src}

	pass := func(ctx context.Context, src []byte) ([]tt.Issue, error) {
		return e.Check(ctx, filename, src, set)
	}
	loop, err := fixer.Loop(ctx, src, e.maxIterations, opts, pass)
	if loop == nil {
		res.Issues = e.passFailure(filename, src, set, err)
		return res
	}

	res.Source = loop.Source
	res.Issues = loop.Issues
	res.Fixed = loop.Fixed
	res.Iterations = loop.Iterations
	switch {
	case err == nil:
	case errors.Is(err, fixer.ErrFixedPointNotReached):
		res.FixedPointNotReached = true
		e.logger.Warn("fixes did not converge",
			zap.String("file", filename), zap.Int("iterations", loop.Iterations))
	case errors.Is(err, fixer.ErrFixIntroducedError):
		e.logger.Error("fix produced invalid source, reverting to the last valid text",
			zap.String("file", filename), zap.Error(err))
	default:
		e.logger.Error("failed to apply fixes", zap.String("file", filename), zap.Error(err))
	}
	return res
}

// Check runs one pass over src and returns the surviving diagnostics in
// order. A syntax error is returned as *syntax.ParseError.
func (e *Engine) Check(ctx context.Context, filename string, src []byte, set tt.RuleSet) ([]tt.Issue, error) {
	tree, err := syntax.Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	res, err := checker.Run(tree, e.registry.Dispatch(set), filename)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", filename, err)
	}
	for _, f := range res.Failures {
		e.logger.Debug("rule failure", zap.String("file", filename), zap.Error(f))
	}

	mgr := nolint.Parse(src, tree.CommentRanges(), nolint.WithRedirect(e.registry.Redirect))
	issues := mgr.Filter(res.Issues)
	if cfg, ok := set[nolint.UnusedCode]; ok && cfg.Enabled() {
		issues = append(issues, mgr.Unused(filename, cfg.Severity, e.registry.Selection(set))...)
	}
	if cfg, ok := set[nolint.InvalidCode]; ok && cfg.Enabled() {
		issues = append(issues, mgr.Invalid(filename, cfg.Severity)...)
	}
	tt.SortIssues(issues)
	return issues, nil
}

// passFailure converts an error ending the first pass into issues.
func (e *Engine) passFailure(filename string, src []byte, set tt.RuleSet, err error) []tt.Issue {
	var perr *syntax.ParseError
	if errors.As(err, &perr) {
		cfg, ok := set[lints.SyntaxErrorCode]
		if !ok || !cfg.Enabled() {
			return nil
		}
		pos := perr.Position
		pos.Filename = filename
		end := syntax.NewLocator(src).Position(perr.Range.End)
		end.Filename = filename
		return []tt.Issue{{
			Rule:     lints.SyntaxErrorCode,
			Name:     "syntax-error",
			Category: "pycodestyle",
			Filename: filename,
			Message:  "SyntaxError: " + perr.Message,
			Severity: cfg.Severity,
			Range:    perr.Range,
			Start:    pos,
			End:      end,
		}}
	}
	e.logger.Error("failed to check file", zap.String("file", filename), zap.Error(err))
	return e.ioFailure(filename, set, err).Issues
}

func (e *Engine) ioFailure(filename string, set tt.RuleSet, err error) *FileResult {
	res := &FileResult{Filename: filename}
	cfg, ok := set[lints.IOErrorCode]
	if !ok || !cfg.Enabled() {
		return res
	}
	pos := token.Position{Filename: filename, Line: 1, Column: 1}
	res.Issues = []tt.Issue{{
		Rule:     lints.IOErrorCode,
		Name:     "io-error",
		Category: "pycodestyle",
		Filename: filename,
		Message:  err.Error(),
		Severity: cfg.Severity,
		Start:    pos,
		End:      pos,
	}}
	return res
}
