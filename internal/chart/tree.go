package chart

import "github.com/rshade/budgettree/internal/tree"

// Node colors and symbol sizes of the dendrogram view.
const (
	ExpandableColor = "#73c0de"
	LeafColor       = "#91cc75"

	minSymbolSize = 8
	maxSymbolSize = 24
)

// TreeNode is the echarts tree-series input for a loaded node.
type TreeNode struct {
	Name        string      `json:"name"`
	Value       float64     `json:"value"`
	ID          string      `json:"id"`
	FolderName  string      `json:"folderName"`
	FullPath    string      `json:"fullPath"`
	HasChildren bool        `json:"hasChildren"`
	Collapsed   bool        `json:"collapsed"`
	SymbolSize  int         `json:"symbolSize"`
	ItemStyle   ItemStyle   `json:"itemStyle"`
	Children    []*TreeNode `json:"children,omitempty"`
}

// ItemStyle colors a tree node.
type ItemStyle struct {
	Color string `json:"color"`
}

// Tree converts n and its expanded descendants.
func Tree(n *tree.Node) *TreeNode {
	return convert(n, n.Value, -1)
}

// TreeDepth converts n and its loaded descendants up to depth levels below
// it, ignoring the expanded flags.
func TreeDepth(n *tree.Node, depth int) *TreeNode {
	return convert(n, n.Value, max(depth, 0))
}

// convert follows expanded flags when depth is negative.
func convert(n *tree.Node, siblingMax float64, depth int) *TreeNode {
	descend := n.Expanded()
	if depth >= 0 {
		descend = depth > 0 && n.Loaded()
	}

	out := &TreeNode{
		Name:        n.Name,
		Value:       n.Value,
		ID:          n.FullPath,
		FolderName:  n.FolderName,
		FullPath:    n.FullPath,
		HasChildren: n.HasChildren,
		Collapsed:   n.HasChildren && !descend,
		SymbolSize:  symbolSize(n.Value, siblingMax),
		ItemStyle:   ItemStyle{Color: LeafColor},
	}
	if n.IsRoot() {
		out.ID = "root"
	}
	if n.HasChildren {
		out.ItemStyle.Color = ExpandableColor
	}
	if !descend {
		return out
	}

	next := depth
	if depth > 0 {
		next = depth - 1
	}
	children := n.Children()
	var peak float64
	for _, c := range children {
		peak = max(peak, c.Value)
	}
	for _, c := range children {
		out.Children = append(out.Children, convert(c, peak, next))
	}
	return out
}

func symbolSize(v, peak float64) int {
	if peak <= 0 || v <= 0 {
		return minSymbolSize
	}
	return minSymbolSize + int(float64(maxSymbolSize-minSymbolSize)*v/peak)
}
