package fixer

import (
	"context"
	"errors"
	"fmt"

	tt "github.com/gnolang/plint/internal/types"
)

// DefaultMaxIterations bounds the fix loop when no limit is configured.
const DefaultMaxIterations = 100

var (
	// ErrFixedPointNotReached reports that fixes were still being accepted
	// when the iteration limit was hit. The result still carries the last
	// successfully rewritten source.
	ErrFixedPointNotReached = errors.New("fixed point not reached")
	// ErrFixIntroducedError reports that a pass over rewritten source
	// failed. The result carries the source as it was before that rewrite.
	ErrFixIntroducedError = errors.New("fix introduced an error")
)

// Pass runs the checker, collector and suppression filter over src and
// returns the surviving diagnostics.
type Pass func(ctx context.Context, src []byte) ([]tt.Issue, error)

// LoopResult is the outcome of a fix loop.
type LoopResult struct {
	Source []byte
	// Issues are the diagnostics of the last pass, positioned against
	// Source.
	Issues []tt.Issue
	// Fixed lists the diagnostics resolved across all iterations.
	Fixed      []tt.Issue
	Iterations int
}

// Changed reports whether any fix was applied.
func (r *LoopResult) Changed() bool { return len(r.Fixed) > 0 }

// Loop runs pass against src, applies the resolved fixes and starts over
// on the rewritten text until a pass accepts no fix. It stops after
// maxIterations rewrites; if fixes were still accepted at that point, the
// rewritten source is returned along with ErrFixedPointNotReached.
func Loop(ctx context.Context, src []byte, maxIterations int, opts Options, pass Pass) (*LoopResult, error) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	res := &LoopResult{Source: src}

	issues, err := pass(ctx, src)
	if err != nil {
		return nil, err
	}
	for {
		res.Issues = issues
		resolution := Resolve(issues, opts)
		if len(resolution.Edits) == 0 {
			return res, nil
		}
		if res.Iterations == maxIterations {
			return res, fmt.Errorf("%w after %d iterations", ErrFixedPointNotReached, maxIterations)
		}

		next, err := Apply(res.Source, resolution.Edits)
		if err != nil {
			return res, err
		}
		nextIssues, err := pass(ctx, next)
		if err != nil {
			return res, fmt.Errorf("%w: %w", ErrFixIntroducedError, err)
		}

		res.Iterations++
		res.Source = next
		for _, a := range resolution.Applied {
			res.Fixed = append(res.Fixed, a.Issue)
		}
		issues = nextIssues
	}
}
