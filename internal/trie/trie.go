package trie

import (
	"sort"
	"strings"
)

/*
Arena-based prefix index.

Nodes are stored in a single slice and refer to their children by index, so
building the index for a rule catalogue is one growing allocation instead of
one allocation per node. The root is always node 0.
*/

// NodeIndex represents the index of a trie node.
type NodeIndex int

// arenaNode is the internal representation of a trie node stored in the arena.
type arenaNode struct {
	// children maps the next byte of a key to the child node.
	children map[byte]NodeIndex
	// isEnd marks the last byte of an inserted key.
	isEnd bool
}

// Trie indexes strings so every key under a prefix can be found.
type Trie struct {
	nodes []arenaNode
}

// New returns an initialized Trie.
func New() *Trie {
	t := &Trie{nodes: make([]arenaNode, 0, 64)}
	t.newNode()
	return t
}

// newNode adds a new node to the arena and returns its index.
func (t *Trie) newNode() NodeIndex {
	idx := NodeIndex(len(t.nodes))
	t.nodes = append(t.nodes, arenaNode{children: make(map[byte]NodeIndex)})
	return idx
}

// Insert adds key to the index.
func (t *Trie) Insert(key string) {
	current := NodeIndex(0)
	for i := 0; i < len(key); i++ {
		child, ok := t.nodes[current].children[key[i]]
		if !ok {
			child = t.newNode()
			t.nodes[current].children[key[i]] = child
		}
		current = child
	}
	t.nodes[current].isEnd = true
}

// find returns the node reached by prefix.
func (t *Trie) find(prefix string) (NodeIndex, bool) {
	current := NodeIndex(0)
	for i := 0; i < len(prefix); i++ {
		child, ok := t.nodes[current].children[prefix[i]]
		if !ok {
			return 0, false
		}
		current = child
	}
	return current, true
}

// Contains reports whether key was inserted.
func (t *Trie) Contains(key string) bool {
	idx, ok := t.find(key)
	return ok && t.nodes[idx].isEnd
}

// HasPrefix reports whether some key starts with prefix.
func (t *Trie) HasPrefix(prefix string) bool {
	idx, ok := t.find(prefix)
	if !ok {
		return false
	}
	return t.nodes[idx].isEnd || len(t.nodes[idx].children) > 0
}

// WithPrefix returns the keys starting with prefix in sorted order.
func (t *Trie) WithPrefix(prefix string) []string {
	idx, ok := t.find(prefix)
	if !ok {
		return nil
	}
	var out []string
	var buf strings.Builder
	buf.WriteString(prefix)
	t.collect(idx, &buf, &out)
	sort.Strings(out)
	return out
}

func (t *Trie) collect(idx NodeIndex, buf *strings.Builder, out *[]string) {
	node := t.nodes[idx]
	if node.isEnd {
		*out = append(*out, buf.String())
	}
	prefix := buf.String()
	for b, child := range node.children {
		buf.Reset()
		buf.WriteString(prefix)
		buf.WriteByte(b)
		t.collect(child, buf, out)
	}
}
