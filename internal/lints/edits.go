package lints

import (
	"github.com/gnolang/plint/internal/syntax"
	tt "github.com/gnolang/plint/internal/types"
)

func isBlank(b byte) bool { return b == ' ' || b == '\t' || b == '\f' }

// onlyBlankBefore reports whether offset is preceded by whitespace only on
// its line.
func onlyBlankBefore(tree *syntax.Tree, offset int) bool {
	for i := tree.Lines.LineStart(offset); i < offset; i++ {
		if !isBlank(tree.Source[i]) {
			return false
		}
	}
	return true
}

// restOfLineIsTrivia reports whether only whitespace or a comment follows
// offset on its line.
func restOfLineIsTrivia(tree *syntax.Tree, offset int) bool {
	src := tree.Source
	for i := offset; i < len(src); i++ {
		switch {
		case src[i] == '\n' || src[i] == '\r' || src[i] == '#':
			return true
		case !isBlank(src[i]):
			return false
		}
	}
	return true
}

// isLoneStatement reports whether stmt is the only statement of a block,
// so that removing it would leave the block empty.
func isLoneStatement(stmt *syntax.Node) bool {
	if stmt.Parent == nil || stmt.Parent.Kind != syntax.KindBlock {
		return false
	}
	return len(stmt.Parent.NamedChildren()) == 1
}

// deleteStatement returns the edit removing stmt. A statement alone in its
// block becomes `pass`; a statement sharing its line through `;` loses
// only itself and its separator; otherwise its whole lines go.
func deleteStatement(tree *syntax.Tree, stmt *syntax.Node) tt.Edit {
	if isLoneStatement(stmt) {
		return tt.Replacement(stmt.Start, stmt.End, "pass")
	}
	src := tree.Source

	after := stmt.End
	for after < len(src) && isBlank(src[after]) {
		after++
	}
	if after < len(src) && src[after] == ';' {
		after++
		for after < len(src) && isBlank(src[after]) {
			after++
		}
		return tt.Deletion(stmt.Start, after)
	}

	before := stmt.Start
	for before > 0 && isBlank(src[before-1]) {
		before--
	}
	if before > 0 && src[before-1] == ';' {
		return tt.Deletion(before-1, stmt.End)
	}

	if onlyBlankBefore(tree, stmt.Start) && restOfLineIsTrivia(tree, stmt.End) {
		return tt.Deletion(tree.Lines.LineStart(stmt.Start), tree.Lines.FullLineEnd(stmt.End))
	}
	return tt.Deletion(stmt.Start, stmt.End)
}

// isolationGroup returns the isolation group of fixes deleting statements
// of the block holding stmt. Module level statements are not isolated.
func isolationGroup(stmt *syntax.Node) int {
	if stmt.Parent == nil || stmt.Parent.Kind != syntax.KindBlock {
		return 0
	}
	return stmt.Parent.ID + 1
}

// deleteListItems returns the edits removing the items at the given
// indexes from a comma separated list, together with their separators.
// At least one item must be kept.
func deleteListItems(items []*syntax.Node, remove map[int]bool) []tt.Edit {
	lastKept := -1
	for i := range items {
		if !remove[i] {
			lastKept = i
		}
	}
	var edits []tt.Edit
	for i, item := range items {
		if !remove[i] {
			continue
		}
		if i < lastKept {
			// a kept item follows: drop up to the start of the next item
			edits = append(edits, tt.Deletion(item.Start, items[i+1].Start))
			continue
		}
		// trailing run: drop from the end of the previous item
		edits = append(edits, tt.Deletion(items[i-1].End, item.End))
	}
	return edits
}

// containsKind reports whether n or a descendant has one of the kinds.
func containsKind(n *syntax.Node, kinds ...syntax.Kind) bool {
	found := false
	n.Walk(func(c *syntax.Node) bool {
		if found {
			return false
		}
		if c.Is(kinds...) {
			found = true
			return false
		}
		return true
	})
	return found
}
