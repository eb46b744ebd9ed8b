package lints

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/gnolang/plint/internal/binding"
	"github.com/gnolang/plint/internal/checker"
	"github.com/gnolang/plint/internal/syntax"
	tt "github.com/gnolang/plint/internal/types"
)

const defaultMaxLineLength = 88

func newLineTooLongRule() *checker.Rule {
	return &checker.Rule{
		Code:     "E501",
		Name:     "line-too-long",
		Category: "pycodestyle",
		Summary:  "Line exceeds the configured maximum length",
		Severity: tt.SeverityWarning,
		Lines:    checkLineLength,
	}
}

// checkLineLength reports lines wider than max-line-length. Lines made of a
// single word and lines ending in a URL that starts within the limit are
// exempt, as are trailing suppression comments.
func checkLineLength(ctx *checker.Context) error {
	limit := ctx.Config().IntOption("max-line-length", defaultMaxLineLength)
	lines := ctx.Tree().Lines
	for i := 1; i <= lines.LineCount(); i++ {
		start, _ := lines.Line(i)
		text := stripPragma(lines.LineText(i))
		width := runewidth.StringWidth(text)
		if width <= limit {
			continue
		}
		fields := strings.Fields(strings.TrimLeft(text, "#"))
		if len(fields) <= 1 {
			continue
		}
		last := fields[len(fields)-1]
		if strings.HasPrefix(last, "http://") || strings.HasPrefix(last, "https://") {
			if runewidth.StringWidth(text[:strings.LastIndex(text, last)]) <= limit {
				continue
			}
		}
		cut := start + widthOffset(text, limit)
		ctx.Reportf(tt.NewRange(cut, start+len(text)),
			fmt.Sprintf("Line too long (%d > %d)", width, limit))
	}
	return nil
}

// stripPragma drops a trailing noqa or type comment.
func stripPragma(line string) string {
	idx := strings.LastIndex(line, "#")
	if idx < 0 {
		return line
	}
	comment := strings.ToLower(strings.TrimSpace(line[idx+1:]))
	if strings.HasPrefix(comment, "noqa") || strings.HasPrefix(comment, "type:") ||
		strings.HasPrefix(comment, "suppress") {
		return strings.TrimRight(line[:idx], " \t")
	}
	return line
}

// widthOffset returns the byte offset in s where its display width reaches
// width.
func widthOffset(s string, width int) int {
	w := 0
	for i, r := range s {
		if w >= width {
			return i
		}
		w += runewidth.RuneWidth(r)
	}
	return len(s)
}

func newTrailingWhitespaceRule() *checker.Rule {
	return &checker.Rule{
		Code:     "W291",
		Name:     "trailing-whitespace",
		Category: "pycodestyle",
		Summary:  "Line ends with whitespace",
		Severity: tt.SeverityWarning,
		Lines: func(ctx *checker.Context) error {
			checkTrailingWhitespace(ctx, false)
			return nil
		},
	}
}

func newBlankLineWhitespaceRule() *checker.Rule {
	return &checker.Rule{
		Code:     "W293",
		Name:     "blank-line-with-whitespace",
		Category: "pycodestyle",
		Summary:  "Blank line contains whitespace",
		Severity: tt.SeverityWarning,
		Lines: func(ctx *checker.Context) error {
			checkTrailingWhitespace(ctx, true)
			return nil
		},
	}
}

// checkTrailingWhitespace reports trailing whitespace on lines with content
// or, when blank is set, on lines holding nothing else. Removing whitespace
// inside a multi-line string changes the value, so that fix is unsafe.
func checkTrailingWhitespace(ctx *checker.Context, blank bool) {
	tree := ctx.Tree()
	strs := multilineStrings(tree)
	for i := 1; i <= tree.Lines.LineCount(); i++ {
		start, end := tree.Lines.Line(i)
		line := tree.Source[start:end]
		trimmed := len(strings.TrimRight(string(line), " \t\f"))
		if trimmed == len(line) || (trimmed == 0) != blank {
			continue
		}
		rng := tt.NewRange(start+trimmed, end)
		msg := "Trailing whitespace"
		title := "Remove trailing whitespace"
		if blank {
			msg = "Blank line contains whitespace"
			title = "Remove whitespace from blank line"
		}
		fix := tt.SafeFix(title, tt.Deletion(rng.Start, rng.End))
		if insideAny(strs, rng.Start) {
			fix.Applicability = tt.ApplicabilityUnsafe
		}
		ctx.Reportf(rng, msg, fix)
	}
}

func multilineStrings(tree *syntax.Tree) []tt.Range {
	var out []tt.Range
	for _, n := range tree.Nodes {
		if n.Kind != syntax.KindString {
			continue
		}
		if strings.ContainsRune(tree.Text(n), '\n') {
			out = append(out, n.Range())
		}
	}
	return out
}

func insideAny(ranges []tt.Range, offset int) bool {
	for _, r := range ranges {
		if r.Contains(offset) {
			return true
		}
	}
	return false
}

func newMissingNewlineRule() *checker.Rule {
	return &checker.Rule{
		Code:     "W292",
		Name:     "missing-newline-at-end-of-file",
		Category: "pycodestyle",
		Summary:  "File does not end with a newline",
		Severity: tt.SeverityWarning,
		Lines: func(ctx *checker.Context) error {
			src := ctx.Source()
			if len(src) == 0 || src[len(src)-1] == '\n' || src[len(src)-1] == '\r' {
				return nil
			}
			newline := "\n"
			if strings.Contains(string(src), "\r\n") {
				newline = "\r\n"
			}
			end := len(src)
			ctx.Reportf(tt.NewRange(end, end), "No newline at end of file",
				tt.SafeFix("Add trailing newline", tt.Insertion(end, newline)))
			return nil
		},
	}
}

func newNoneComparisonRule() *checker.Rule {
	return &checker.Rule{
		Code:     "E711",
		Name:     "none-comparison",
		Category: "pycodestyle",
		Summary:  "Comparison to None with == or !=",
		Severity: tt.SeverityWarning,
		Default:  true,
		Enter: map[syntax.Kind]checker.NodeCheck{
			syntax.KindComparisonOperator: checkNoneComparison,
		},
	}
}

// checkNoneComparison reports `== None` and `!= None`. Rewriting to `is`
// changes behavior for types overriding __eq__, so the fix is unsafe.
func checkNoneComparison(ctx *checker.Context, n *syntax.Node) error {
	for i, op := range n.Children {
		if op.Named {
			continue
		}
		text := ctx.Text(op)
		if text != "==" && text != "!=" {
			continue
		}
		var none *syntax.Node
		if i > 0 && n.Children[i-1].Is(syntax.KindNone) {
			none = n.Children[i-1]
		} else if i+1 < len(n.Children) && n.Children[i+1].Is(syntax.KindNone) {
			none = n.Children[i+1]
		}
		if none == nil {
			continue
		}
		replacement, msg := "is", "Comparison to `None` should be `cond is None`"
		if text == "!=" {
			replacement, msg = "is not", "Comparison to `None` should be `cond is not None`"
		}
		ctx.Report(checker.Diagnostic{
			Range:   none.Range(),
			Message: msg,
			Fixes: []tt.Fix{tt.UnsafeFix(
				fmt.Sprintf("Replace `%s` with `%s`", text, replacement),
				tt.Replacement(op.Start, op.End, replacement),
			)},
		})
	}
	return nil
}

func newAmbiguousVariableNameRule() *checker.Rule {
	return &checker.Rule{
		Code:      "E741",
		Name:      "ambiguous-variable-name",
		Category:  "pycodestyle",
		Summary:   "Variable named l, O or I",
		Severity:  tt.SeverityWarning,
		Default:   true,
		ScopeExit: checkAmbiguousNames,
	}
}

func isAmbiguousName(name string) bool {
	return name == "l" || name == "O" || name == "I"
}

func checkAmbiguousNames(ctx *checker.Context, scope *binding.Scope) error {
	for _, b := range ctx.Graph().Bindings(scope.ID) {
		switch b.Kind {
		case binding.KindBuiltin, binding.KindImport, binding.KindSubmoduleImport,
			binding.KindFromImport, binding.KindFutureImport,
			binding.KindFunctionDefinition, binding.KindClassDefinition:
			continue
		}
		if !isAmbiguousName(b.Name) {
			continue
		}
		ctx.Reportf(b.Range, fmt.Sprintf("Ambiguous variable name: `%s`", b.Name))
	}
	return nil
}
