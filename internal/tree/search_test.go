package tree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/budgettree/internal/fetch/fetchtest"
	"github.com/rshade/budgettree/internal/tree"
)

func TestSearch(t *testing.T) {
	ctx := context.Background()
	l := newLoader(t, fetchtest.Budget())
	c, err := tree.NewCrawler(l, tree.CrawlOptions{})
	require.NoError(t, err)
	_, err = c.Crawl(ctx, l.Root())
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"substring", "bundes", []string{"02", "01"}},
		{"case insensitive", "AMT", []string{"0101"}},
		{"typo", "Bundestg", []string{"02"}},
		{"folder prefix", "010", []string{"0101", "0102"}},
		{"no hit", "zzzzzz", nil},
		{"blank", "  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, m := range tree.Search(l.Root(), tt.query, 0) {
				got = append(got, m.Node.FolderName)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	hits := tree.Search(l.Root(), "bundes", 1)
	require.Len(t, hits, 1)
	assert.Equal(t, 0, hits[0].Distance)
}
