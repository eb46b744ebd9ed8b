package lints

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/gnolang/plint/internal/binding"
	"github.com/gnolang/plint/internal/checker"
	"github.com/gnolang/plint/internal/syntax"
	tt "github.com/gnolang/plint/internal/types"
)

func newUnusedImportRule() *checker.Rule {
	return &checker.Rule{
		Code:      "F401",
		Name:      "unused-import",
		Category:  "pyflakes",
		Summary:   "Imported name is never used",
		Severity:  tt.SeverityWarning,
		Default:   true,
		ScopeExit: checkUnusedImports,
	}
}

// checkUnusedImports reports the unused imports of a scope. Every unused
// member of one statement shares the same fix: the statement goes when all
// of its members are unused, otherwise only the unused members do.
// `__future__` imports and redundant aliases (`import x as x`) are
// re-exports and never reported. Fixes in package `__init__.py` files are
// unsafe since the import may be public API.
func checkUnusedImports(ctx *checker.Context, scope *binding.Scope) error {
	g := ctx.Graph()
	tree := ctx.Tree()

	byStmt := make(map[int][]*binding.Binding)
	var order []int
	for _, b := range g.Unused(scope.ID, binding.KindImport, binding.KindSubmoduleImport, binding.KindFromImport) {
		if b.Explicit {
			continue
		}
		if _, ok := byStmt[b.StmtNode]; !ok {
			order = append(order, b.StmtNode)
		}
		byStmt[b.StmtNode] = append(byStmt[b.StmtNode], b)
	}
	sort.Ints(order)

	unsafe := filepath.Base(ctx.Filename()) == "__init__.py"
	for _, id := range order {
		unused := byStmt[id]
		stmt := tree.Node(id)
		var fixes []tt.Fix
		if stmt != nil {
			if fix, ok := removeImports(tree, stmt, unused); ok {
				if unsafe {
					fix.Applicability = tt.ApplicabilityUnsafe
				}
				fixes = append(fixes, fix)
			}
		}
		for _, b := range unused {
			ctx.Report(checker.Diagnostic{
				Range:   b.Range,
				Message: fmt.Sprintf("`%s` imported but unused", b.QualifiedName),
				Fixes:   fixes,
			})
		}
	}
	return nil
}

// removeImports builds the fix removing the unused members of an import
// statement.
func removeImports(tree *syntax.Tree, stmt *syntax.Node, unused []*binding.Binding) (tt.Fix, bool) {
	imp := stmt
	if !imp.Is(syntax.KindImport, syntax.KindImportFrom) {
		return tt.Fix{}, false
	}
	members := imp.ChildrenByField("name")
	remove := make(map[int]bool, len(unused))
	for _, b := range unused {
		for i, m := range members {
			if m.ID == b.Node {
				remove[i] = true
			}
		}
	}
	if len(remove) == 0 {
		return tt.Fix{}, false
	}

	title := "Remove unused import"
	if len(unused) == 1 {
		title = fmt.Sprintf("Remove unused import: `%s`", unused[0].QualifiedName)
	}
	if len(remove) == len(members) {
		fix := tt.SafeFix(title, deleteStatement(tree, stmt))
		return fix.Isolate(isolationGroup(stmt)), true
	}
	return tt.SafeFix(title, deleteListItems(members, remove)...), true
}

func newImportStarUsedRule() *checker.Rule {
	return &checker.Rule{
		Code:     "F403",
		Name:     "import-star-used",
		Category: "pyflakes",
		Summary:  "Wildcard import hides which names are defined",
		Severity: tt.SeverityWarning,
		Default:  true,
		Enter: map[syntax.Kind]checker.NodeCheck{
			syntax.KindImportFrom: func(ctx *checker.Context, n *syntax.Node) error {
				if n.FirstChildOfKind(syntax.KindWildcardImport) == nil {
					return nil
				}
				module := ctx.Text(n.ChildByField("module_name"))
				ctx.Reportf(n.Range(), fmt.Sprintf("`from %s import *` used; unable to detect undefined names", module))
				return nil
			},
		},
	}
}

func newImportStarUsageRule() *checker.Rule {
	return &checker.Rule{
		Code:     "F405",
		Name:     "import-star-usage",
		Category: "pyflakes",
		Summary:  "Name may come from a wildcard import",
		Severity: tt.SeverityWarning,
		Default:  true,
		Enter: map[syntax.Kind]checker.NodeCheck{
			syntax.KindIdentifier: func(ctx *checker.Context, n *syntax.Node) error {
				ref := ctx.Graph().ReferenceAt(n.ID)
				if ref == nil || ref.Binding.IsValid() || !ctx.Graph().HasStarImport(ctx.Scope()) {
					return nil
				}
				ctx.Reportf(n.Range(), fmt.Sprintf("`%s` may be undefined, or defined from star imports", ref.Name))
				return nil
			},
		},
	}
}

func newLateFutureImportRule() *checker.Rule {
	return &checker.Rule{
		Code:     "F404",
		Name:     "late-future-import",
		Category: "pyflakes",
		Summary:  "__future__ import after other statements",
		Severity: tt.SeverityError,
		Default:  true,
		Enter: map[syntax.Kind]checker.NodeCheck{
			syntax.KindFutureImport: checkLateFutureImport,
		},
	}
}

// checkLateFutureImport reports a __future__ import preceded by anything but
// the module docstring and other __future__ imports.
func checkLateFutureImport(ctx *checker.Context, n *syntax.Node) error {
	if n.Parent == nil || n.Parent.Kind != syntax.KindModule {
		ctx.Reportf(n.Range(), "`from __future__` imports must occur at the beginning of the file")
		return nil
	}
	for i, prev := range n.Parent.NamedChildren() {
		if prev == n {
			return nil
		}
		if prev.Is(syntax.KindFutureImport) || (i == 0 && isDocstring(prev)) {
			continue
		}
		ctx.Reportf(n.Range(), "`from __future__` imports must occur at the beginning of the file")
		return nil
	}
	return nil
}

func isDocstring(stmt *syntax.Node) bool {
	if !stmt.Is(syntax.KindExpressionStatement) {
		return false
	}
	children := stmt.NamedChildren()
	return len(children) == 1 && children[0].Is(syntax.KindString, syntax.KindConcatenatedString)
}
