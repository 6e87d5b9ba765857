package cli_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/budgettree/internal/config"
)

type exportDoc struct {
	Source   string `json:"source"`
	Levels   int    `json:"levels"`
	Expanded int    `json:"expanded"`
	Records  []struct {
		Path        string         `json:"path"`
		Depth       int            `json:"depth"`
		Name        string         `json:"name"`
		Value       float64        `json:"value"`
		HasChildren bool           `json:"hasChildren"`
		Attributes  map[string]any `json:"attributes"`
	} `json:"records"`
}

func crawlJSON(t *testing.T, args ...string) exportDoc {
	t.Helper()
	out, _, err := execute(t, append([]string{"crawl", "-o", "json", "-q"}, args...)...)
	require.NoError(t, err)

	var doc exportDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	return doc
}

func recordPaths(doc exportDoc) []string {
	paths := make([]string, 0, len(doc.Records))
	for _, r := range doc.Records {
		paths = append(paths, r.Path)
	}
	return paths
}

func TestCrawlCmd(t *testing.T) {
	isolate(t)
	src := budgetServer(t)

	t.Run("whole tree breadth first", func(t *testing.T) {
		doc := crawlJSON(t, "--source", src)
		assert.Equal(t, []string{"02/", "01/", "04/", "02/0201/", "01/0101/", "01/0102/"}, recordPaths(doc))
		assert.Equal(t, 2, doc.Levels)
		assert.Equal(t, 3, doc.Expanded)
		assert.Equal(t, 1, doc.Records[0].Depth)
		assert.Equal(t, 2, doc.Records[3].Depth)
		assert.Nil(t, doc.Records[0].Attributes)
	})

	t.Run("depth limit", func(t *testing.T) {
		doc := crawlJSON(t, "--source", src, "--depth", "1")
		assert.Equal(t, []string{"02/", "01/", "04/"}, recordPaths(doc))
	})

	t.Run("exclude prunes subtree", func(t *testing.T) {
		doc := crawlJSON(t, "--source", src, "--exclude", "01")
		assert.Equal(t, []string{"02/", "04/", "02/0201/"}, recordPaths(doc))
		assert.Equal(t, 2, doc.Expanded)
	})

	t.Run("include filters output", func(t *testing.T) {
		doc := crawlJSON(t, "--source", src, "--include", "*/*")
		assert.Equal(t, []string{"02/0201/", "01/0101/", "01/0102/"}, recordPaths(doc))
	})

	t.Run("start folder and attributes", func(t *testing.T) {
		doc := crawlJSON(t, "01", "--source", src, "--attributes")
		require.Len(t, doc.Records, 2)
		assert.Equal(t, 1, doc.Records[0].Depth)
		assert.Equal(t, "Amt", doc.Records[0].Attributes["Kapitelbezeichnung"])
	})

	t.Run("invalid glob", func(t *testing.T) {
		_, _, err := execute(t, "crawl", "--source", src, "--include", "[", "-q")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid glob pattern")
	})

	t.Run("table", func(t *testing.T) {
		out, _, err := execute(t, "crawl", "--source", src, "-q")
		require.NoError(t, err)
		assert.Contains(t, out, "02/0201/")
		assert.Contains(t, out, "6 lines, 2 levels, 3 folders expanded")
	})
}

func TestSearchCmd(t *testing.T) {
	isolate(t)
	src := budgetServer(t)

	t.Run("substring hits by value", func(t *testing.T) {
		out, _, err := execute(t, "search", "bundes", "--source", src, "-o", "plain")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "02/\tBundestag", lines[0])
		assert.Equal(t, "01/\tBundespraesident", lines[1])
	})

	t.Run("typo", func(t *testing.T) {
		out, _, err := execute(t, "search", "Stiftnug", "--source", src, "-o", "json")
		require.NoError(t, err)

		var hits []struct {
			FullPath string `json:"fullPath"`
			Distance int    `json:"distance"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &hits))
		require.NotEmpty(t, hits)
		assert.Equal(t, "01/0102/", hits[0].FullPath)
		assert.Positive(t, hits[0].Distance)
	})

	t.Run("no matches", func(t *testing.T) {
		out, _, err := execute(t, "search", "zzzzzz", "--source", src)
		require.NoError(t, err)
		assert.Contains(t, out, `No matches for "zzzzzz".`)
	})

	t.Run("query required", func(t *testing.T) {
		_, _, err := execute(t, "search", "--source", src)
		require.Error(t, err)
	})
}

func TestCacheCmd(t *testing.T) {
	isolate(t)
	t.Setenv(config.EnvCacheEnabled, "true")
	src := budgetServer(t)

	_, _, err := execute(t, "ls", "--source", src)
	require.NoError(t, err)

	out, _, err := execute(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Enabled:   true")
	assert.Contains(t, out, "TTL:       1h")
	assert.NotContains(t, out, "Entries:   0\n")

	out, _, err = execute(t, "cache", "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 expired and 0 oversize entries.")

	out, _, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared.")

	out, _, err = execute(t, "cache", "stats", "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:   0\n")
	assert.Contains(t, out, "Enabled:   false")
}
