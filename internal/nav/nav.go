// Package nav holds the breadcrumb and back-stack state of a drill-down view.
package nav

import (
	"sync"

	"github.com/rshade/budgettree/internal/fetch"
)

// State is a snapshot handed to change listeners.
type State struct {
	Current    string
	Stack      []string
	Generation uint64
}

// Navigator tracks the current folder path and the paths visited before it.
// A Navigator from New has no position until the first GoTo.
type Navigator struct {
	mu       sync.Mutex
	current  string
	started  bool
	stack    []string
	gen      uint64
	onChange func(State)
}

// New returns an unpositioned navigator.
func New() *Navigator {
	return &Navigator{}
}

// NewAt returns a navigator positioned at path with an empty stack.
func NewAt(path string) *Navigator {
	return &Navigator{current: fetch.NormalizeDir(path), started: true}
}

// OnChange registers fn to be called after every state change, outside the lock.
func (n *Navigator) OnChange(fn func(State)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onChange = fn
}

// GoTo pushes the current path and moves to path.
func (n *Navigator) GoTo(path string) {
	n.update(func() bool {
		if n.started {
			n.stack = append(n.stack, n.current)
		}
		n.current = fetch.NormalizeDir(path)
		n.started = true
		return true
	})
}

// GoBack pops the stack into the current path. It reports false and changes
// nothing when the stack is empty.
func (n *Navigator) GoBack() bool {
	return n.update(func() bool {
		if len(n.stack) == 0 {
			return false
		}
		last := len(n.stack) - 1
		n.current = n.stack[last]
		n.stack = n.stack[:last]
		return true
	})
}

// Reset returns to the root and clears the stack.
func (n *Navigator) Reset() {
	n.update(func() bool {
		n.current = ""
		n.stack = nil
		n.started = true
		return true
	})
}

// JumpTo moves to path and replaces the stack with its ancestors, root first,
// as if path had been reached by drilling down from the root.
func (n *Navigator) JumpTo(path string) {
	n.update(func() bool {
		segs := fetch.Segments(path)
		n.stack = n.stack[:0]
		prefix := ""
		for _, seg := range segs {
			n.stack = append(n.stack, prefix)
			prefix += seg + "/"
		}
		n.current = prefix
		n.started = true
		return true
	})
}

// Current returns the current path ("" for the root).
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Stack returns a copy of the back-stack, oldest first.
func (n *Navigator) Stack() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.stack...)
}

// CanGoBack reports whether GoBack would change the state.
func (n *Navigator) CanGoBack() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.stack) > 0
}

// Generation increments on every change. Asynchronous loads compare it
// before applying their result.
func (n *Navigator) Generation() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gen
}

// Snapshot returns the full state.
func (n *Navigator) Snapshot() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stateLocked()
}

func (n *Navigator) stateLocked() State {
	return State{
		Current:    n.current,
		Stack:      append([]string(nil), n.stack...),
		Generation: n.gen,
	}
}

func (n *Navigator) update(fn func() bool) bool {
	n.mu.Lock()
	if !fn() {
		n.mu.Unlock()
		return false
	}
	n.gen++
	state := n.stateLocked()
	listener := n.onChange
	n.mu.Unlock()

	if listener != nil {
		listener(state)
	}
	return true
}
