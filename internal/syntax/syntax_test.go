package syntax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	src := []byte("import os\nx = 1\n")
	tree, err := Parse(context.Background(), src)
	require.NoError(t, err)
	require.NotNil(t, tree)

	assert.Equal(t, KindModule, tree.Root.Kind)
	stmts := tree.Root.NamedChildren()
	require.Len(t, stmts, 2)
	assert.Equal(t, KindImport, stmts[0].Kind)
	assert.Equal(t, KindExpressionStatement, stmts[1].Kind)

	assign := stmts[1].NamedChildren()[0]
	assert.Equal(t, KindAssignment, assign.Kind)
	left := assign.ChildByField("left")
	require.NotNil(t, left)
	assert.Equal(t, "x", tree.Text(left))
	assert.Equal(t, stmts[1], left.Statement())

	for i, n := range tree.Nodes {
		assert.Equal(t, i, n.ID)
		assert.Same(t, n, tree.Node(i))
	}
}

func TestParseComments(t *testing.T) {
	t.Parallel()

	src := []byte("x = '# not a comment'  # real\n")
	tree, err := Parse(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, tree.Comments, 1)
	assert.Equal(t, "# real", tree.Text(tree.Comments[0]))
}

func TestParseError(t *testing.T) {
	t.Parallel()

	src := []byte("x = 1\ndef f(:\n    pass\n")
	tree, err := Parse(context.Background(), src)
	require.Error(t, err)
	require.NotNil(t, tree)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Position.Line)
	assert.NotEmpty(t, perr.Message)
}

func TestLocator(t *testing.T) {
	t.Parallel()

	src := []byte("ab\r\ncé d\n\nlast")
	l := NewLocator(src)

	assert.Equal(t, 4, l.LineCount())

	tests := []struct {
		offset int
		line   int
		column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{4, 2, 1},
		{7, 2, 3}, // after the two-byte é
		{10, 3, 1},
		{11, 4, 1},
		{15, 4, 5},
	}
	for _, tt := range tests {
		pos := l.Position(tt.offset)
		assert.Equal(t, tt.line, pos.Line, "offset %d", tt.offset)
		assert.Equal(t, tt.column, pos.Column, "offset %d", tt.offset)
	}

	assert.Equal(t, "ab", l.LineText(1))
	assert.Equal(t, "cé d", l.LineText(2))
	assert.Equal(t, "", l.LineText(3))
	assert.Equal(t, "last", l.LineText(4))

	assert.Equal(t, 4, l.LineStart(6))
	assert.Equal(t, 10, l.FullLineEnd(5))
	assert.Equal(t, len(src), l.FullLineEnd(12))
}

func TestLocatorTrailingNewline(t *testing.T) {
	t.Parallel()

	l := NewLocator([]byte("a\nb\n"))
	assert.Equal(t, 2, l.LineCount())
	assert.Equal(t, 1, NewLocator(nil).LineCount())
}

func TestLocatorCarriageReturns(t *testing.T) {
	t.Parallel()

	src := []byte("a = 1\rb = 2  # noqa\r\nc\r")
	l := NewLocator(src)

	assert.Equal(t, 3, l.LineCount())
	assert.Equal(t, "a = 1", l.LineText(1))
	assert.Equal(t, "b = 2  # noqa", l.LineText(2))
	assert.Equal(t, "c", l.LineText(3))

	pos := l.Position(6)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 1, pos.Column)
	pos = l.Position(21)
	assert.Equal(t, 3, pos.Line)
	assert.Equal(t, 21, l.FullLineEnd(8))
}
