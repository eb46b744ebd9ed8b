package checker

import (
	"fmt"
	"go/token"

	tt "github.com/gnolang/plint/internal/types"
)

const (
	InternalErrorCode = "RUF999"
	InternalErrorName = "internal-error"
)

// RuleError is a failure raised by a rule callback. The checker converts it
// into an internal-error issue and keeps traversing.
type RuleError struct {
	Rule     string
	Hook     string
	Position token.Position
	Err      error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s failed in %s at %d:%d: %v", e.Rule, e.Hook, e.Position.Line, e.Position.Column, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// panicError wraps a recovered panic value.
type panicError struct {
	value any
}

func (e panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }

func (c *checker) internalError(rule *Rule, hook string, rng tt.Range, err error) {
	rerr := &RuleError{
		Rule:     rule.Code,
		Hook:     hook,
		Position: c.position(rng.Start),
		Err:      err,
	}
	c.collector.addFailure(tt.Issue{
		Rule:     InternalErrorCode,
		Name:     InternalErrorName,
		Category: "internal",
		Filename: c.filename,
		Message:  rerr.Error(),
		Note:     fmt.Sprintf("the remaining diagnostics of %s for this node were dropped", rule.Code),
		Severity: tt.SeverityError,
		Range:    rng,
		Start:    c.position(rng.Start),
		End:      c.position(rng.End),
	})
	c.failures = append(c.failures, rerr)
}
