package tree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/budgettree/internal/fetch/fetchtest"
	"github.com/rshade/budgettree/internal/tree"
)

func TestFindByPath(t *testing.T) {
	ctx := context.Background()
	l := newLoader(t, fetchtest.Budget())
	root := l.Root()

	n, ok := tree.FindByPath(root, "")
	require.True(t, ok)
	assert.Same(t, root, n)

	_, ok = tree.FindByPath(root, "01/")
	assert.False(t, ok, "root not expanded yet")

	require.NoError(t, l.Expand(ctx, root))
	n01, ok := tree.FindByPath(root, "01/")
	require.True(t, ok)
	assert.Equal(t, "Bundespraesident", n01.Name)

	_, ok = tree.FindByPath(root, "01/0101/")
	assert.False(t, ok, "intermediate 01 not expanded")

	require.NoError(t, l.Expand(ctx, n01))
	n, ok = tree.FindByPath(root, "/01//0101")
	require.True(t, ok)
	assert.Equal(t, "Amt", n.Name)

	n, ok = tree.FindByKey(root, []string{"01", "0102"})
	require.True(t, ok)
	assert.Equal(t, "01/0102/", n.FullPath)

	_, ok = tree.FindByPath(root, "99/")
	assert.False(t, ok)

	l.Collapse(n01)
	_, ok = tree.FindByPath(root, "01/0101/")
	assert.False(t, ok, "collapsed ancestor hides descendants")

	_, ok = tree.FindByKey(nil, nil)
	assert.False(t, ok)
}

func TestExpandPath(t *testing.T) {
	ctx := context.Background()
	l := newLoader(t, fetchtest.Budget())

	n, err := l.ExpandPath(ctx, "01/0102/")
	require.NoError(t, err)
	assert.Equal(t, "Stiftung", n.Name)

	found, ok := tree.FindByPath(l.Root(), "01/0102/")
	require.True(t, ok)
	assert.Same(t, n, found)

	_, err = l.ExpandPath(ctx, "01/77/")
	assert.ErrorIs(t, err, tree.ErrNotFound)
}

func TestPathTitles(t *testing.T) {
	ctx := context.Background()
	l := newLoader(t, fetchtest.Budget())

	crumbs := l.PathTitles(ctx, "01/0101/")
	assert.Equal(t, []tree.Crumb{
		{ID: "01", Title: "Bundespraesident", Path: "01/"},
		{ID: "0101", Title: "Amt", Path: "01/0101/"},
	}, crumbs)

	crumbs = l.PathTitles(ctx, "99/")
	assert.Equal(t, []tree.Crumb{{ID: "99", Title: "99", Path: "99/"}}, crumbs)

	assert.Empty(t, l.PathTitles(ctx, ""))
}

func TestWalkAndVisible(t *testing.T) {
	ctx := context.Background()
	l := newLoader(t, fetchtest.Budget())
	root := l.Root()
	require.NoError(t, l.Expand(ctx, root))
	n01, _ := root.Child("01")
	require.NoError(t, l.Expand(ctx, n01))

	var visited []string
	tree.Walk(root, func(n *tree.Node, depth int) bool {
		visited = append(visited, n.FolderName)
		return true
	})
	assert.Equal(t, []string{"", "02", "01", "0101", "0102", "04"}, visited)

	rows := tree.Visible(root)
	require.Len(t, rows, 5)
	assert.Equal(t, 1, rows[2].Depth)
	assert.Equal(t, "0101", rows[2].Node.FolderName)
	assert.Equal(t, "├── ", rows[0].Prefix)
	assert.Equal(t, "│   ├── ", rows[2].Prefix)
	assert.Equal(t, "│   └── ", rows[3].Prefix)
	assert.Equal(t, "└── ", rows[4].Prefix)

	l.Collapse(n01)
	assert.Len(t, tree.Visible(root), 3)
	assert.InDelta(t, 450.0, root.Total(), 1e-9)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "Root", tree.Display(""))
	assert.Equal(t, "01 › 0101", tree.Display("01/0101/"))
	assert.Equal(t, []string{"01"}, tree.Key("/01/"))
}
