package tree

import (
	"context"
	"errors"
	"strings"

	"github.com/rshade/budgettree/internal/fetch"
)

// ErrNotFound is returned when a path does not resolve to a loaded node.
var ErrNotFound = errors.New("node not found")

// FindByPath resolves a slash-delimited folder path ("01/0101/") below root.
// Every node walked through must be expanded; "" resolves to root.
func FindByPath(root *Node, path string) (*Node, bool) {
	return FindByKey(root, fetch.Segments(path))
}

// FindByKey resolves an explicit sequence of folder names below root.
func FindByKey(root *Node, key []string) (*Node, bool) {
	if root == nil {
		return nil, false
	}
	cur := root
	for _, seg := range key {
		if !cur.Expanded() {
			return nil, false
		}
		next, ok := cur.Child(seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Crumb is one breadcrumb segment.
type Crumb struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// PathTitles returns a crumb per segment of path. The title is the label of
// the segment's record in its parent folder, or the segment itself when the
// record cannot be loaded.
func (l *Loader) PathTitles(ctx context.Context, path string) []Crumb {
	segs := fetch.Segments(path)
	crumbs := make([]Crumb, 0, len(segs))

	parent := ""
	for _, seg := range segs {
		crumb := Crumb{ID: seg, Title: seg, Path: parent + seg + "/"}
		for _, n := range l.Entries(ctx, parent) {
			if n.FolderName == seg {
				crumb.Title = n.Name
				break
			}
		}
		crumbs = append(crumbs, crumb)
		parent = crumb.Path
	}
	return crumbs
}

// Walk visits root and its loaded descendants depth first. Returning false
// from fn skips the subtree of that node.
func Walk(root *Node, fn func(n *Node, depth int) bool) {
	walk(root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children() {
		walk(c, depth+1, fn)
	}
}

// Visible returns the nodes a tree view shows: descendants of root reachable
// through expanded nodes, in display order, with box-drawing prefixes.
func Visible(root *Node) []Row {
	var rows []Row
	var visit func(n *Node, depth int, guide string)
	visit = func(n *Node, depth int, guide string) {
		if !n.Expanded() {
			return
		}
		kids := n.Children()
		for i, c := range kids {
			branch, next := "├── ", guide+"│   "
			if i == len(kids)-1 {
				branch, next = "└── ", guide+"    "
			}
			rows = append(rows, Row{Node: c, Depth: depth, Prefix: guide + branch})
			visit(c, depth+1, next)
		}
	}
	if root != nil {
		visit(root, 0, "")
	}
	return rows
}

// Row is a node at a display depth.
type Row struct {
	Node   *Node
	Depth  int
	Prefix string
}

// Key returns the folder-name key of a node path.
func Key(path string) []string {
	return fetch.Segments(path)
}

// Display renders a path as "01 › 0101" for logs and headings.
func Display(path string) string {
	segs := fetch.Segments(path)
	if len(segs) == 0 {
		return RootName
	}
	return strings.Join(segs, " › ")
}
