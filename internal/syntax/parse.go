package syntax

import (
	"context"
	"fmt"
	"go/token"
	"strings"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/gnolang/plint/internal/types"
)

// Tree is the immutable syntax tree of one Python source file.
type Tree struct {
	Root     *Node
	Source   []byte
	Nodes    []*Node // pre-order; Nodes[n.ID] == n
	Comments []*Node
	Lines    *Locator
}

// ParseError reports the first syntax error found in a source file.
type ParseError struct {
	Message  string
	Range    types.Range
	Position token.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Position.Line, e.Position.Column, e.Message)
}

// Parse parses Python source into a Tree. When the source contains a syntax
// error, the partial tree is returned together with a *ParseError.
func Parse(ctx context.Context, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tsTree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	defer tsTree.Close()

	t := &Tree{Source: src, Lines: NewLocator(src)}
	root := tsTree.RootNode()
	t.Root, err = t.convert(root, nil, "", 0)
	if err != nil {
		return nil, err
	}
	if root.HasError() {
		return t, t.firstError()
	}
	return t, nil
}

func (t *Tree) convert(tn *sitter.Node, parent *Node, field string, index int) (*Node, error) {
	start, err := safecast.Conv[int](tn.StartByte())
	if err != nil {
		return nil, fmt.Errorf("node start offset: %w", err)
	}
	end, err := safecast.Conv[int](tn.EndByte())
	if err != nil {
		return nil, fmt.Errorf("node end offset: %w", err)
	}
	n := &Node{
		ID:      len(t.Nodes),
		Kind:    Kind(tn.Type()),
		Field:   field,
		Index:   index,
		Named:   tn.IsNamed(),
		Missing: tn.IsMissing(),
		Start:   start,
		End:     end,
		Parent:  parent,
	}
	if tn.IsError() {
		n.Kind = KindError
	}
	t.Nodes = append(t.Nodes, n)
	if n.Kind == KindComment {
		t.Comments = append(t.Comments, n)
	}

	count := int(tn.ChildCount())
	if count == 0 {
		return n, nil
	}
	n.Children = make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		child := tn.Child(i)
		if child == nil {
			continue
		}
		c, err := t.convert(child, n, tn.FieldNameForChild(i), len(n.Children))
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

func (t *Tree) firstError() *ParseError {
	var bad *Node
	t.Root.Walk(func(n *Node) bool {
		if bad != nil {
			return false
		}
		if n.Kind == KindError || n.Missing {
			bad = n
			return false
		}
		return true
	})
	if bad == nil {
		bad = t.Root
	}

	msg := "invalid syntax"
	switch {
	case bad.Missing:
		msg = fmt.Sprintf("expected %q", string(bad.Kind))
	case bad.End > bad.Start:
		text := t.Text(bad)
		if first := firstToken(text); first != "" {
			msg = fmt.Sprintf("unexpected token %q", first)
		}
	}
	return &ParseError{
		Message:  msg,
		Range:    bad.Range(),
		Position: t.Lines.Position(bad.Start),
	}
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Text returns the source text covered by n.
func (t *Tree) Text(n *Node) string {
	if n == nil {
		return ""
	}
	return string(t.Source[n.Start:n.End])
}

// Node returns the node with the given ID.
func (t *Tree) Node(id int) *Node {
	if id < 0 || id >= len(t.Nodes) {
		return nil
	}
	return t.Nodes[id]
}

// CommentRanges returns the byte ranges of every comment in the file.
func (t *Tree) CommentRanges() []types.Range {
	out := make([]types.Range, 0, len(t.Comments))
	for _, c := range t.Comments {
		out = append(out, c.Range())
	}
	return out
}

// StringPrefix returns the lower-cased prefix letters of a string literal,
// e.g. "f" for f"..." or "rb" for Rb'...'.
func (t *Tree) StringPrefix(n *Node) string {
	if n == nil || n.Kind != KindString {
		return ""
	}
	start := n.FirstChildOfKind(KindStringStart)
	if start == nil {
		return ""
	}
	text := t.Text(start)
	end := strings.IndexAny(text, `"'`)
	if end < 0 {
		return ""
	}
	return strings.ToLower(text[:end])
}

// StringLiteral returns the value of a plain string literal. It reports
// false for f-strings with interpolations and for escapes it cannot decode
// trivially.
func (t *Tree) StringLiteral(n *Node) (string, bool) {
	if n == nil || n.Kind != KindString {
		return "", false
	}
	var b strings.Builder
	for _, c := range n.Children {
		switch c.Kind {
		case KindStringStart, KindStringEnd:
		case KindStringContent:
			text := t.Text(c)
			if strings.ContainsRune(text, '\\') {
				return "", false
			}
			b.WriteString(text)
		default:
			return "", false
		}
	}
	return b.String(), true
}
