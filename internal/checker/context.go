package checker

import (
	"go/token"

	"github.com/gnolang/plint/internal/binding"
	"github.com/gnolang/plint/internal/syntax"
	tt "github.com/gnolang/plint/internal/types"
)

// Context is handed to rule callbacks. It exposes the tree, the binding
// graph and the current scope, and collects what the rule reports.
type Context struct {
	c      *checker
	rule   *Rule
	config tt.ConfigRule
	scope  binding.ScopeID
}

func (ctx *Context) Tree() *syntax.Tree { return ctx.c.tree }

func (ctx *Context) Graph() *binding.Graph { return ctx.c.graph }

func (ctx *Context) Source() []byte { return ctx.c.tree.Source }

func (ctx *Context) Filename() string { return ctx.c.filename }

// Scope returns the scope visible to the callback.
func (ctx *Context) Scope() binding.ScopeID { return ctx.scope }

// Config returns the rule's resolved configuration.
func (ctx *Context) Config() tt.ConfigRule { return ctx.config }

// Text returns the source text of n.
func (ctx *Context) Text(n *syntax.Node) string { return ctx.c.tree.Text(n) }

// Position converts a byte offset into a 1-based position.
func (ctx *Context) Position(offset int) token.Position {
	pos := ctx.c.tree.Lines.Position(offset)
	pos.Filename = ctx.c.filename
	return pos
}

// Report records a diagnostic for the running rule.
func (ctx *Context) Report(d Diagnostic) {
	ctx.c.collector.Add(ctx.c.complete(ctx.rule, ctx.config, d))
}

// Reportf records a diagnostic without fixes.
func (ctx *Context) Reportf(rng tt.Range, message string, fixes ...tt.Fix) {
	ctx.Report(Diagnostic{Range: rng, Message: message, Fixes: fixes})
}
