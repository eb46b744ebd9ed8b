package syntax

import (
	"github.com/gnolang/plint/internal/types"
)

// Node is an immutable syntax tree node. Nodes are owned by their Tree and
// identified by ID, their index in pre-order.
type Node struct {
	ID       int
	Kind     Kind
	Field    string // field name in the parent, if any
	Index    int    // position among the parent's children
	Named    bool
	Missing  bool
	Start    int
	End      int
	Parent   *Node
	Children []*Node
}

func (n *Node) Range() types.Range {
	return types.NewRange(n.Start, n.End)
}

// Is reports whether the node has one of the given kinds.
func (n *Node) Is(kinds ...Kind) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	return false
}

// ChildByField returns the first child stored under the field name.
func (n *Node) ChildByField(name string) *Node {
	for _, c := range n.Children {
		if c.Field == name {
			return c
		}
	}
	return nil
}

// ChildrenByField returns every child stored under the field name.
func (n *Node) ChildrenByField(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Field == name {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns the named children, skipping comments.
func (n *Node) NamedChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named && c.Kind != KindComment {
			out = append(out, c)
		}
	}
	return out
}

// FirstChildOfKind returns the first direct child with the given kind.
func (n *Node) FirstChildOfKind(kind Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// Ancestor returns the closest ancestor with one of the given kinds.
func (n *Node) Ancestor(kinds ...Kind) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Is(kinds...) {
			return p
		}
	}
	return nil
}

// PrevNamedSibling returns the previous named, non-comment sibling.
func (n *Node) PrevNamedSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	for i := n.Index - 1; i >= 0; i-- {
		c := n.Parent.Children[i]
		if c.Named && c.Kind != KindComment {
			return c
		}
	}
	return nil
}

// NextNamedSibling returns the next named, non-comment sibling.
func (n *Node) NextNamedSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	for i := n.Index + 1; i < len(n.Parent.Children); i++ {
		c := n.Parent.Children[i]
		if c.Named && c.Kind != KindComment {
			return c
		}
	}
	return nil
}

// Statement returns the closest enclosing node that is a direct child of a
// module or block, i.e. the statement containing n.
func (n *Node) Statement() *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Parent != nil && cur.Parent.Is(KindModule, KindBlock) {
			return cur
		}
	}
	return nil
}

// Walk calls fn for n and every descendant in pre-order. Returning false
// from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
