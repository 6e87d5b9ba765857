package detail

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rshade/budgettree/internal/budget"
	"github.com/rshade/budgettree/internal/chart"
	"github.com/rshade/budgettree/internal/tree"
)

// Field is one rendered attribute.
type Field struct {
	Key   string
	Value string
}

// Fields lists the attributes of n: label keys in priority order first,
// then the remaining keys alphabetically. Nested values are flattened with
// fmt's default formatting.
func Fields(n *tree.Node) []Field {
	if n == nil || n.Attributes == nil {
		return nil
	}

	seen := make(map[string]bool, len(n.Attributes))
	var out []Field
	for _, key := range budget.LabelPriority {
		if v, ok := n.Attributes[key]; ok {
			out = append(out, Field{Key: key, Value: format(key, v)})
			seen[key] = true
		}
	}

	rest := make([]string, 0, len(n.Attributes))
	for key := range n.Attributes {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	slices.Sort(rest)
	for _, key := range rest {
		out = append(out, Field{Key: key, Value: format(key, n.Attributes[key])})
	}
	return out
}

func format(key string, v any) string {
	if key == budget.AmountKey {
		if amount, err := (budget.Record{key: v}).Amount(); err == nil {
			return chart.FormatEuro(amount)
		}
		return "N/A"
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Render returns a plain two-column rendering of n, keys padded to align.
func Render(n *tree.Node) string {
	fields := Fields(n)
	if len(fields) == 0 {
		return ""
	}

	width := 0
	for _, f := range fields {
		width = max(width, len(f.Key))
	}

	var sb strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&sb, "%-*s  %s\n", width, f.Key, f.Value)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
