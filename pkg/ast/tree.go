package ast

import "sync"

// Tree is the statement tree of one source file.
type Tree struct {
	Path     string
	Language string
	Source   []byte
	Root     *Node

	order       []*Node
	firstOnLine map[int]*Node

	constOnce sync.Once
	constants map[string]*constantDef
}

// NewTree links root and its descendants into a Tree: it sets every
// node's Parent, Index and owning tree and records document order.
func NewTree(path, language string, source []byte, root *Node) *Tree {
	t := &Tree{
		Path:        path,
		Language:    language,
		Source:      source,
		Root:        root,
		firstOnLine: make(map[int]*Node),
	}
	if root != nil {
		t.link(root, nil, 0)
	}
	return t
}

func (t *Tree) link(n, parent *Node, index int) {
	n.tree = t
	n.Parent = parent
	n.Index = index
	t.order = append(t.order, n)
	// The root spans the whole file and is never offered for its first line.
	// An else clause is a wrapper, so "} else if (c) {" offers the inner if.
	if _, ok := t.firstOnLine[n.StartLine]; !ok && parent != nil && n.Kind != KindElse {
		t.firstOnLine[n.StartLine] = n
	}
	for i, c := range n.Children {
		t.link(c, n, i)
	}
}

// Nodes returns every node in document (pre-)order.
func (t *Tree) Nodes() []*Node {
	return t.order
}

// FirstNodeOnLine returns the first node in document order that starts on
// the given 1-based line, or nil if no node starts there.
func (t *Tree) FirstNodeOnLine(line int) *Node {
	return t.firstOnLine[line]
}

// Walk calls fn for n and its descendants in document order. Returning
// false from fn skips the node's subtree.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
