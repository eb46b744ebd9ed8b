package checker

import (
	"sort"

	"github.com/gnolang/plint/internal/binding"
	"github.com/gnolang/plint/internal/syntax"
	tt "github.com/gnolang/plint/internal/types"
)

// NodeCheck runs when the traversal enters or leaves a node of the kind it
// was registered for.
type NodeCheck func(ctx *Context, node *syntax.Node) error

// ScopeCheck runs once per scope after every reference in the file has been
// resolved.
type ScopeCheck func(ctx *Context, scope *binding.Scope) error

// LinesCheck runs once per file over its physical lines.
type LinesCheck func(ctx *Context) error

// Rule describes one lint rule and the extension points it hooks into.
type Rule struct {
	Code     string
	Name     string
	Category string
	Summary  string
	// Severity is used when the rule is enabled without an explicit level.
	Severity tt.Severity
	// Default marks rules enabled when no selection is configured.
	Default bool

	Enter     map[syntax.Kind]NodeCheck
	Leave     map[syntax.Kind]NodeCheck
	ScopeExit ScopeCheck
	Lines     LinesCheck
}

// Diagnostic is what a rule reports; the checker completes it into an issue.
type Diagnostic struct {
	Range      tt.Range
	Message    string
	Suggestion string
	Note       string
	Fixes      []tt.Fix
}

type nodeEntry struct {
	rule   *Rule
	config tt.ConfigRule
	check  NodeCheck
}

type scopeEntry struct {
	rule   *Rule
	config tt.ConfigRule
	check  ScopeCheck
}

type linesEntry struct {
	rule   *Rule
	config tt.ConfigRule
	check  LinesCheck
}

// Dispatch is the static table mapping node kinds and scope exits to the
// callbacks of the enabled rules. It is built once per active rule set and
// is safe for concurrent use by independent passes.
type Dispatch struct {
	enter map[syntax.Kind][]nodeEntry
	leave map[syntax.Kind][]nodeEntry
	scope []scopeEntry
	lines []linesEntry
}

// NewDispatch indexes the callbacks of every rule enabled in set. Callbacks
// registered for the same hook run in rule code order.
func NewDispatch(rules []*Rule, set tt.RuleSet) *Dispatch {
	enabled := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		if set.Enabled(r.Code) {
			enabled = append(enabled, r)
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i].Code < enabled[j].Code })

	d := &Dispatch{
		enter: make(map[syntax.Kind][]nodeEntry),
		leave: make(map[syntax.Kind][]nodeEntry),
	}
	for _, r := range enabled {
		cfg := set[r.Code]
		for kind, fn := range r.Enter {
			d.enter[kind] = append(d.enter[kind], nodeEntry{rule: r, config: cfg, check: fn})
		}
		for kind, fn := range r.Leave {
			d.leave[kind] = append(d.leave[kind], nodeEntry{rule: r, config: cfg, check: fn})
		}
		if r.ScopeExit != nil {
			d.scope = append(d.scope, scopeEntry{rule: r, config: cfg, check: r.ScopeExit})
		}
		if r.Lines != nil {
			d.lines = append(d.lines, linesEntry{rule: r, config: cfg, check: r.Lines})
		}
	}
	return d
}

