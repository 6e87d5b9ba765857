package tree

import (
	"sync"

	"github.com/rshade/budgettree/internal/budget"
)

// RootName is the display name of the root node.
const RootName = "Root"

// Node is one discovered record file. Identity fields never change after
// discovery; only the expanded flag and the child list are mutable.
type Node struct {
	Name        string
	Value       float64
	FolderName  string
	FullPath    string
	HasChildren bool

	// Attributes holds the parsed record for detail views. Nil on the root.
	Attributes budget.Record

	mu       sync.RWMutex
	children []*Node
	loaded   bool
	expanded bool
}

func newRoot() *Node {
	return &Node{Name: RootName, HasChildren: true}
}

// IsRoot reports whether n is a tree root.
func (n *Node) IsRoot() bool {
	return n.FullPath == ""
}

// Children returns the loaded children, or nil when not loaded yet.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.children
}

// Loaded reports whether the children were fetched.
func (n *Node) Loaded() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.loaded
}

// Expanded reports the presentation state.
func (n *Node) Expanded() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.expanded
}

// Child returns the loaded child with the given folder name.
func (n *Node) Child(folder string) (*Node, bool) {
	for _, c := range n.Children() {
		if c.FolderName == folder {
			return c, true
		}
	}
	return nil, false
}

// Total sums the values of the loaded children.
func (n *Node) Total() float64 {
	var sum float64
	for _, c := range n.Children() {
		sum += c.Value
	}
	return sum
}

func (n *Node) expand(children []*Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.loaded {
		n.children = children
		n.loaded = true
	}
	n.expanded = true
}

func (n *Node) setExpanded(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expanded = v
}
