package lints

import (
	"fmt"
	"strings"

	"github.com/gnolang/plint/internal/binding"
	"github.com/gnolang/plint/internal/checker"
	"github.com/gnolang/plint/internal/syntax"
	tt "github.com/gnolang/plint/internal/types"
)

func newUndefinedNameRule() *checker.Rule {
	return &checker.Rule{
		Code:     "F821",
		Name:     "undefined-name",
		Category: "pyflakes",
		Summary:  "Name is used but never defined",
		Severity: tt.SeverityError,
		Default:  true,
		Enter: map[syntax.Kind]checker.NodeCheck{
			syntax.KindIdentifier: checkUndefinedName,
		},
	}
}

// checkUndefinedName reports loads that resolve to nothing. Scopes under a
// wildcard import are left to import-star-usage.
func checkUndefinedName(ctx *checker.Context, n *syntax.Node) error {
	g := ctx.Graph()
	ref := g.ReferenceAt(n.ID)
	if ref == nil || ref.Binding.IsValid() || g.HasStarImport(ctx.Scope()) {
		return nil
	}
	if guardedByNameError(ctx.Tree(), n) {
		return nil
	}
	ctx.Reportf(n.Range(), fmt.Sprintf("Undefined name `%s`", ref.Name))
	return nil
}

// guardedByNameError reports whether n sits in the body of a try statement
// with a handler catching NameError.
func guardedByNameError(tree *syntax.Tree, n *syntax.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Is(syntax.KindFunctionDefinition, syntax.KindClassDefinition, syntax.KindLambda) {
			return false
		}
		if p.Kind != syntax.KindBlock || p.Field != "body" || !p.Parent.Is(syntax.KindTryStatement) {
			continue
		}
		for _, clause := range p.Parent.Children {
			if clause.Is(syntax.KindExceptClause) && handlesNameError(tree, clause) {
				return true
			}
		}
	}
	return false
}

func handlesNameError(tree *syntax.Tree, clause *syntax.Node) bool {
	handled := false
	clause.Walk(func(c *syntax.Node) bool {
		if handled || c.Is(syntax.KindBlock) {
			return false
		}
		if c.Is(syntax.KindIdentifier) && tree.Text(c) == "NameError" {
			handled = true
		}
		return true
	})
	return handled
}

func newUndefinedExportRule() *checker.Rule {
	return &checker.Rule{
		Code:     "F822",
		Name:     "undefined-export",
		Category: "pyflakes",
		Summary:  "Name listed in __all__ is never defined",
		Severity: tt.SeverityError,
		Default:  true,
		ScopeExit: func(ctx *checker.Context, scope *binding.Scope) error {
			g := ctx.Graph()
			if scope.Kind != binding.ScopeModule || g.HasStarImport(scope.ID) {
				return nil
			}
			for _, export := range g.Exports() {
				if g.Lookup(scope.ID, export.Name).IsValid() {
					continue
				}
				ctx.Reportf(export.Range, fmt.Sprintf("Undefined name `%s` in `__all__`", export.Name))
			}
			return nil
		},
	}
}

func newRedefinedWhileUnusedRule() *checker.Rule {
	return &checker.Rule{
		Code:      "F811",
		Name:      "redefined-while-unused",
		Category:  "pyflakes",
		Summary:   "Import, function or class redefined before use",
		Severity:  tt.SeverityWarning,
		Default:   true,
		ScopeExit: checkRedefinedWhileUnused,
	}
}

// checkRedefinedWhileUnused reports definitions that replace an unused
// definition of the same block. Definitions in different branches, such as
// try/except import fallbacks, are alternatives rather than
// redefinitions, and `typing.overload` stubs are meant to be replaced.
func checkRedefinedWhileUnused(ctx *checker.Context, scope *binding.Scope) error {
	tree := ctx.Tree()
	for _, pair := range ctx.Graph().Shadowed(scope.ID) {
		prev, cur := pair[0], pair[1]
		if !prev.Kind.IsDefinition() || !cur.Kind.IsDefinition() || prev.Used() {
			continue
		}
		if prev.Block != cur.Block || prev.Explicit {
			continue
		}
		if prev.Kind == binding.KindSubmoduleImport || cur.Kind == binding.KindSubmoduleImport {
			// `import os` next to `import os.path` binds the same package
			continue
		}
		if isOverload(tree, tree.Node(prev.StmtNode)) {
			continue
		}
		line := ctx.Position(prev.Range.Start).Line
		ctx.Report(checker.Diagnostic{
			Range:   cur.Range,
			Message: fmt.Sprintf("Redefinition of unused `%s` from line %d", cur.Name, line),
			Note:    fmt.Sprintf("previous definition of `%s` here: line %d", prev.Name, line),
		})
	}
	return nil
}

func isOverload(tree *syntax.Tree, stmt *syntax.Node) bool {
	if !stmt.Is(syntax.KindDecoratedDefinition) {
		return false
	}
	for _, dec := range stmt.Children {
		if !dec.Is(syntax.KindDecorator) {
			continue
		}
		text := strings.TrimPrefix(strings.TrimSpace(tree.Text(dec)), "@")
		if text == "overload" || strings.HasSuffix(text, ".overload") {
			return true
		}
	}
	return false
}

func newUnusedVariableRule() *checker.Rule {
	return &checker.Rule{
		Code:      "F841",
		Name:      "unused-variable",
		Category:  "pyflakes",
		Summary:   "Local variable is assigned but never used",
		Severity:  tt.SeverityWarning,
		Default:   true,
		ScopeExit: checkUnusedVariables,
	}
}

// checkUnusedVariables reports local variables of a function that are never
// read. Scopes calling locals() read every local implicitly. Removing an
// assignment may drop side effects of its value, so fixes are unsafe.
func checkUnusedVariables(ctx *checker.Context, scope *binding.Scope) error {
	g := ctx.Graph()
	if scope.Kind != binding.ScopeFunction || g.UsesLocals(scope.ID) {
		return nil
	}
	captured := nonlocalNames(g, scope.ID)
	tree := ctx.Tree()
	for _, b := range g.Unused(scope.ID, binding.KindAssignment, binding.KindNamedExpression,
		binding.KindWithItem, binding.KindExceptHandler) {
		if binding.IsDummy(b.Name) || captured[b.Name] {
			continue
		}
		d := checker.Diagnostic{
			Range:   b.Range,
			Message: fmt.Sprintf("Local variable `%s` is assigned to but never used", b.Name),
		}
		if fix, ok := removeUnusedVariable(tree, b); ok {
			d.Fixes = []tt.Fix{fix}
		}
		ctx.Report(d)
	}
	return nil
}

// nonlocalNames returns the names of scope rebound by nested scopes through
// nonlocal statements.
func nonlocalNames(g *binding.Graph, scope binding.ScopeID) map[string]bool {
	out := make(map[string]bool)
	for _, id := range g.Scopes() {
		for _, b := range g.Bindings(id) {
			if b.Kind != binding.KindNonlocal {
				continue
			}
			if outer := g.Binding(b.Shadows); outer != nil && outer.Scope == scope {
				out[b.Name] = true
			}
		}
	}
	return out
}

func removeUnusedVariable(tree *syntax.Tree, b *binding.Binding) (tt.Fix, bool) {
	n := tree.Node(b.Node)
	if n == nil {
		return tt.Fix{}, false
	}
	switch b.Kind {
	case binding.KindAssignment:
		assign := n.Parent
		if !assign.Is(syntax.KindAssignment) || assign.ChildByField("left") != n || assign.ChildByField("type") != nil {
			return tt.Fix{}, false
		}
		right := assign.ChildByField("right")
		if right == nil || right.Is(syntax.KindAssignment) || assign.Parent.Is(syntax.KindAssignment) {
			return tt.Fix{}, false
		}
		stmt := assign.Parent
		if !stmt.Is(syntax.KindExpressionStatement) || len(stmt.NamedChildren()) != 1 {
			return tt.Fix{}, false
		}
		title := fmt.Sprintf("Remove assignment to unused variable `%s`", b.Name)
		if containsKind(right, syntax.KindCall, syntax.Kind("await"), syntax.Kind("yield")) {
			return tt.UnsafeFix(title, tt.Deletion(n.Start, right.Start)), true
		}
		fix := tt.UnsafeFix(title, deleteStatement(tree, stmt))
		return fix.Isolate(isolationGroup(stmt)), true
	case binding.KindExceptHandler:
		target := n
		if target.Parent.Is(syntax.KindAsPatternTarget) {
			target = target.Parent
		}
		for i := target.Index - 1; i > 0; i-- {
			as := target.Parent.Children[i]
			if as.Named || tree.Text(as) != "as" {
				continue
			}
			start := target.Parent.Children[i-1].End
			return tt.UnsafeFix(fmt.Sprintf("Remove exception name `%s`", b.Name),
				tt.Deletion(start, target.End)), true
		}
	}
	return tt.Fix{}, false
}

func newUnusedAnnotationRule() *checker.Rule {
	return &checker.Rule{
		Code:     "F842",
		Name:     "unused-annotation",
		Category: "pyflakes",
		Summary:  "Local variable is annotated but never used",
		Severity: tt.SeverityWarning,
		Default:  true,
		ScopeExit: func(ctx *checker.Context, scope *binding.Scope) error {
			g := ctx.Graph()
			if scope.Kind != binding.ScopeFunction {
				return nil
			}
			for _, b := range g.Unused(scope.ID, binding.KindAnnotation) {
				// a later assignment makes the annotation a declaration
				if g.Lookup(scope.ID, b.Name) != b.ID || binding.IsDummy(b.Name) {
					continue
				}
				ctx.Reportf(b.Range, fmt.Sprintf("Local variable `%s` is annotated but never used", b.Name))
			}
			return nil
		},
	}
}

func newFStringMissingPlaceholdersRule() *checker.Rule {
	return &checker.Rule{
		Code:     "F541",
		Name:     "f-string-missing-placeholders",
		Category: "pyflakes",
		Summary:  "f-string without any placeholder",
		Severity: tt.SeverityWarning,
		Default:  true,
		Enter: map[syntax.Kind]checker.NodeCheck{
			syntax.KindString: checkFStringPlaceholders,
		},
	}
}

// checkFStringPlaceholders reports f-strings without interpolations. In an
// implicit concatenation, a placeholder in any part makes the whole
// expression a real f-string.
func checkFStringPlaceholders(ctx *checker.Context, n *syntax.Node) error {
	tree := ctx.Tree()
	if !strings.Contains(tree.StringPrefix(n), "f") || hasInterpolation(n) {
		return nil
	}
	if n.Parent.Is(syntax.KindConcatenatedString) {
		for _, part := range n.Parent.Children {
			if part.Is(syntax.KindString) && hasInterpolation(part) {
				return nil
			}
		}
	}

	text := tree.Text(n)
	quote := strings.IndexAny(text, `"'`)
	if quote < 0 {
		return nil
	}
	prefix := strings.NewReplacer("f", "", "F", "").Replace(text[:quote])
	body := strings.NewReplacer("{{", "{", "}}", "}").Replace(text[quote:])
	ctx.Reportf(n.Range(), "f-string without any placeholders",
		tt.SafeFix("Remove extraneous `f` prefix", tt.Replacement(n.Start, n.End, prefix+body)))
	return nil
}

func hasInterpolation(n *syntax.Node) bool {
	return n.FirstChildOfKind(syntax.KindInterpolation) != nil
}
