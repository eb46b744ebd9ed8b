package lints

import (
	"fmt"
	"strings"

	"github.com/gnolang/plint/internal/checker"
	"github.com/gnolang/plint/internal/syntax"
	tt "github.com/gnolang/plint/internal/types"
)

func newMutableArgumentDefaultRule() *checker.Rule {
	check := func(ctx *checker.Context, n *syntax.Node) error {
		checkMutableDefault(ctx, n)
		return nil
	}
	return &checker.Rule{
		Code:     "B006",
		Name:     "mutable-argument-default",
		Category: "flake8-bugbear",
		Summary:  "Mutable data structure used as argument default",
		Severity: tt.SeverityWarning,
		Enter: map[syntax.Kind]checker.NodeCheck{
			syntax.KindDefaultParameter:      check,
			syntax.KindTypedDefaultParameter: check,
		},
	}
}

// mutableCalls are constructors returning a fresh mutable container.
var mutableCalls = map[string]bool{
	"list":                    true,
	"dict":                    true,
	"set":                     true,
	"bytearray":               true,
	"collections.deque":       true,
	"collections.defaultdict": true,
	"collections.OrderedDict": true,
	"collections.Counter":     true,
	"deque":                   true,
	"defaultdict":             true,
	"OrderedDict":             true,
	"Counter":                 true,
}

func isMutableValue(tree *syntax.Tree, n *syntax.Node) bool {
	switch n.Kind {
	case syntax.KindList, syntax.KindDictionary, syntax.KindSet,
		syntax.KindListComprehension, syntax.KindDictionaryComprehension, syntax.KindSetComprehension:
		return true
	case syntax.KindCall:
		fn := n.ChildByField("function")
		return fn != nil && mutableCalls[tree.Text(fn)]
	}
	return false
}

// checkMutableDefault reports a function parameter defaulting to a mutable
// value. The fix defaults the parameter to None and rebuilds the value at
// the top of the body; it changes the signature, so it is unsafe.
func checkMutableDefault(ctx *checker.Context, param *syntax.Node) {
	params := param.Parent
	if !params.Is(syntax.KindParameters) || !params.Parent.Is(syntax.KindFunctionDefinition) {
		return
	}
	tree := ctx.Tree()
	value := param.ChildByField("value")
	if value == nil || !isMutableValue(tree, value) {
		return
	}
	d := checker.Diagnostic{
		Range:   value.Range(),
		Message: "Do not use mutable data structures for argument defaults",
	}
	if fix, ok := mutableDefaultFix(tree, param, value); ok {
		d.Fixes = []tt.Fix{fix}
	}
	ctx.Report(d)
}

func mutableDefaultFix(tree *syntax.Tree, param, value *syntax.Node) (tt.Fix, bool) {
	name := param.ChildByField("name")
	body := param.Parent.Parent.ChildByField("body")
	if name == nil || !name.Is(syntax.KindIdentifier) || body == nil || param.Is(syntax.KindTypedDefaultParameter) {
		return tt.Fix{}, false
	}
	text := tree.Text(value)
	if strings.ContainsRune(text, '\n') {
		return tt.Fix{}, false
	}
	stmts := body.NamedChildren()
	if len(stmts) > 0 && isDocstring(stmts[0]) {
		stmts = stmts[1:]
	}
	if len(stmts) == 0 || !onlyBlankBefore(tree, stmts[0].Start) {
		return tt.Fix{}, false
	}
	first := stmts[0]
	at := tree.Lines.LineStart(first.Start)
	indent := string(tree.Source[at:first.Start])
	id := tree.Text(name)
	guard := fmt.Sprintf("%sif %s is None:\n%s    %s = %s\n", indent, id, indent, id, text)
	return tt.UnsafeFix("Replace with `None`; initialize within function",
		tt.Replacement(value.Start, value.End, "None"),
		tt.Insertion(at, guard),
	), true
}
