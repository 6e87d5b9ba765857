package tree

import (
	"cmp"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Match is a search hit.
type Match struct {
	Node     *Node
	Distance int
}

// Search looks for query in the labels and folder names of the loaded nodes
// below root. Substring hits have distance 0; other labels qualify when a word
// is within edit distance len(query)/3 (at least 1). Results are ordered by
// distance, then value descending. limit <= 0 returns all hits.
func Search(root *Node, query string, limit int) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	maxDist := max(1, len([]rune(q))/3)

	var hits []Match
	Walk(root, func(n *Node, _ int) bool {
		if n == root {
			return true
		}
		if d, ok := score(n, q, maxDist); ok {
			hits = append(hits, Match{Node: n, Distance: d})
		}
		return true
	})

	slices.SortStableFunc(hits, func(a, b Match) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(b.Node.Value, a.Node.Value)
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func score(n *Node, q string, maxDist int) (int, bool) {
	label := strings.ToLower(n.Name)
	if strings.Contains(label, q) || strings.HasPrefix(strings.ToLower(n.FolderName), q) {
		return 0, true
	}

	best := levenshtein.ComputeDistance(q, label)
	for _, word := range strings.Fields(label) {
		best = min(best, levenshtein.ComputeDistance(q, word))
	}
	return best, best <= maxDist
}
