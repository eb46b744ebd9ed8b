package checker

import (
	"errors"
	"go/token"

	"github.com/gnolang/plint/internal/binding"
	"github.com/gnolang/plint/internal/syntax"
	tt "github.com/gnolang/plint/internal/types"
)

var errNilTree = errors.New("checker: nil syntax tree")

// Result is the outcome of checking one file.
type Result struct {
	Issues []tt.Issue
	Graph  *binding.Graph
	// Failures lists the rule callbacks that failed; each one also
	// produced an internal-error issue.
	Failures []*RuleError
}

type deferredBody struct {
	node  *syntax.Node
	scope binding.ScopeID
}

type checker struct {
	tree      *syntax.Tree
	graph     *binding.Graph
	dispatch  *Dispatch
	filename  string
	collector *Collector
	failures  []*RuleError

	scope    binding.ScopeID
	deferred []deferredBody
}

// Run walks tree once, building the binding graph and dispatching the rule
// callbacks of d. Rule failures never abort the walk.
func Run(tree *syntax.Tree, d *Dispatch, filename string) (*Result, error) {
	if tree == nil || tree.Root == nil {
		return nil, errNilTree
	}
	c := &checker{
		tree:      tree,
		graph:     binding.New(tree.Root.ID),
		dispatch:  d,
		filename:  filename,
		collector: NewCollector(),
	}
	c.scope = c.graph.Module()

	c.runLines()

	root := tree.Root
	c.enter(root)
	for _, stmt := range root.Children {
		c.visit(stmt)
	}
	// Function and lambda bodies run after the enclosing module body so that
	// forward references to later module bindings resolve. Nested bodies are
	// appended while draining.
	for i := 0; i < len(c.deferred); i++ {
		c.visitDeferred(c.deferred[i])
	}
	c.scope = c.graph.Module()
	c.markExports()
	c.exitScopes()
	c.leave(root)

	return &Result{
		Issues:   c.collector.Issues(),
		Graph:    c.graph,
		Failures: c.failures,
	}, nil
}

func (c *checker) position(offset int) token.Position {
	pos := c.tree.Lines.Position(offset)
	pos.Filename = c.filename
	return pos
}

// complete turns a rule diagnostic into an issue.
func (c *checker) complete(rule *Rule, cfg tt.ConfigRule, d Diagnostic) tt.Issue {
	fixes := d.Fixes
	if cfg.Fix != "" && len(fixes) > 0 {
		fixes = make([]tt.Fix, len(d.Fixes))
		copy(fixes, d.Fixes)
		for i := range fixes {
			switch cfg.Fix {
			case "safe":
				fixes[i].Applicability = tt.ApplicabilitySafe
			case "unsafe":
				fixes[i].Applicability = tt.ApplicabilityUnsafe
			}
		}
	}
	return tt.Issue{
		Rule:       rule.Code,
		Name:       rule.Name,
		Category:   rule.Category,
		Filename:   c.filename,
		Message:    d.Message,
		Suggestion: d.Suggestion,
		Note:       d.Note,
		Severity:   cfg.Severity,
		Range:      d.Range,
		Start:      c.position(d.Range.Start),
		End:        c.position(d.Range.End),
		Fixes:      fixes,
	}
}

// guard runs one rule callback, converting errors and panics into
// internal-error issues.
func (c *checker) guard(rule *Rule, hook string, rng tt.Range, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			c.internalError(rule, hook, rng, panicError{value: r})
		}
	}()
	if err := fn(); err != nil {
		c.internalError(rule, hook, rng, err)
	}
}

func (c *checker) context(rule *Rule, cfg tt.ConfigRule, scope binding.ScopeID) *Context {
	return &Context{c: c, rule: rule, config: cfg, scope: scope}
}

func (c *checker) enter(n *syntax.Node) {
	for _, e := range c.dispatch.enter[n.Kind] {
		ctx := c.context(e.rule, e.config, c.scope)
		c.guard(e.rule, "enter "+string(n.Kind), n.Range(), func() error {
			return e.check(ctx, n)
		})
	}
}

func (c *checker) leave(n *syntax.Node) {
	for _, e := range c.dispatch.leave[n.Kind] {
		ctx := c.context(e.rule, e.config, c.scope)
		c.guard(e.rule, "leave "+string(n.Kind), n.Range(), func() error {
			return e.check(ctx, n)
		})
	}
}

func (c *checker) runLines() {
	for _, e := range c.dispatch.lines {
		ctx := c.context(e.rule, e.config, c.graph.Module())
		c.guard(e.rule, "lines", tt.NewRange(0, 0), func() error {
			return e.check(ctx)
		})
	}
}

// exitScopes runs the scope-exit callbacks, innermost scopes first and the
// module scope last.
func (c *checker) exitScopes() {
	scopes := c.graph.Scopes()
	for i := len(scopes) - 1; i >= 0; i-- {
		scope := c.graph.Scope(scopes[i])
		rng := tt.NewRange(0, 0)
		if n := c.tree.Node(scope.Node); n != nil {
			rng = n.Range()
		}
		for _, e := range c.dispatch.scope {
			ctx := c.context(e.rule, e.config, scope.ID)
			c.guard(e.rule, "scope exit", rng, func() error {
				return e.check(ctx, scope)
			})
		}
	}
}

// markExports resolves every name listed in __all__ so that exported
// bindings count as used.
func (c *checker) markExports() {
	for i, export := range c.graph.Exports() {
		c.graph.AddReference(c.graph.Module(), export.Name, export.Range, -(i + 1))
	}
}
