package chart

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rshade/budgettree/internal/tree"
)

// Segment limits used by narrow and wide layouts.
const (
	NarrowSegments  = 10
	DefaultSegments = 25
)

// Segment is one slice of a pie or treemap level.
type Segment struct {
	Name        string   `json:"name"`
	Value       float64  `json:"value"`
	Share       float64  `json:"share"`
	FolderName  string   `json:"folderName,omitempty"`
	FullPath    string   `json:"fullPath,omitempty"`
	HasChildren bool     `json:"hasChildren"`
	Other       int      `json:"other,omitempty"`
	Color       Gradient `json:"itemStyle"`
}

// Pie builds segments from sibling nodes, which are sorted by value
// descending. Nodes beyond maxSegments collapse into one "Other (N)" segment
// when their sum is positive. The result is ordered by value descending, then
// by name in German collation, so "Other" takes the rank its sum earns.
// maxSegments <= 0 keeps every node.
func Pie(nodes []*tree.Node, maxSegments int) []Segment {
	visible := nodes
	var hidden []*tree.Node
	if maxSegments > 0 && len(nodes) > maxSegments {
		visible, hidden = nodes[:maxSegments], nodes[maxSegments:]
	}

	var total float64
	for _, n := range nodes {
		total += n.Value
	}

	segs := make([]Segment, 0, len(visible)+1)
	for _, n := range visible {
		segs = append(segs, Segment{
			Name:        n.Name,
			Value:       n.Value,
			FolderName:  n.FolderName,
			FullPath:    n.FullPath,
			HasChildren: n.HasChildren,
		})
	}

	var rest float64
	for _, n := range hidden {
		rest += n.Value
	}
	if rest > 0 {
		segs = append(segs, Segment{
			Name:  fmt.Sprintf("Other (%d)", len(hidden)),
			Value: rest,
			Other: len(hidden),
		})
	}

	coll := collate.New(language.German)
	slices.SortStableFunc(segs, func(a, b Segment) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return coll.CompareString(a.Name, b.Name)
	})

	for i := range segs {
		if total != 0 {
			segs[i].Share = segs[i].Value / total * 100
		}
		segs[i].Color = GradientAt(i)
	}
	return segs
}
