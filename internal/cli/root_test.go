package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/budgettree/internal/cli"
	"github.com/rshade/budgettree/internal/config"
	"github.com/rshade/budgettree/internal/fetch/fetchtest"
)

// isolate points the config home at a temp dir and quiets logging.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvSource, "")
	t.Setenv(config.EnvCacheEnabled, "")
	return home
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := cli.NewRootCmd("test")
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func budgetServer(t *testing.T) string {
	t.Helper()
	return fetchtest.Budget().Server(t).URL
}

func TestRootCmd(t *testing.T) {
	isolate(t)
	root := cli.NewRootCmd("test")

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"ls", "tree", "browse", "crawl", "search", "serve", "cache", "config", "version"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"debug", "source", "cache-ttl", "no-cache"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRootCmd_CacheTTLValidation(t *testing.T) {
	isolate(t)
	src := budgetServer(t)

	t.Run("negative", func(t *testing.T) {
		_, _, err := execute(t, "ls", "--source", src, "--cache-ttl", "-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache-ttl must be >= 0")
	})

	t.Run("below minimum", func(t *testing.T) {
		_, _, err := execute(t, "ls", "--source", src, "--cache-ttl", "5")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TTL must be between")
	})
}

func TestVersionCmd(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "budgettree test")
	assert.Contains(t, out, "commit:")
}

func TestLsCmd(t *testing.T) {
	isolate(t)
	src := budgetServer(t)

	t.Run("json root", func(t *testing.T) {
		out, _, err := execute(t, "ls", "--source", src, "--output", "json")
		require.NoError(t, err)

		var entries []struct {
			Name        string  `json:"name"`
			Value       float64 `json:"value"`
			Formatted   string  `json:"formatted"`
			FullPath    string  `json:"fullPath"`
			HasChildren bool    `json:"hasChildren"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &entries))
		require.Len(t, entries, 3)

		assert.Equal(t, "Bundestag", entries[0].Name)
		assert.Equal(t, "Bundespraesident", entries[1].Name)
		assert.Equal(t, "Unbenannt", entries[2].Name)
		assert.Equal(t, "02/", entries[0].FullPath)
		assert.Equal(t, "300 €", entries[0].Formatted)
		assert.True(t, entries[0].HasChildren)
		assert.False(t, entries[2].HasChildren)
	})

	t.Run("json folder", func(t *testing.T) {
		out, _, err := execute(t, "ls", "01", "--source", src, "-o", "json")
		require.NoError(t, err)
		assert.Contains(t, out, `"name": "Amt"`)
		assert.Contains(t, out, `"fullPath": "01/0102/"`)
		assert.Less(t, strings.Index(out, "Amt"), strings.Index(out, "Stiftung"))
	})

	t.Run("table", func(t *testing.T) {
		out, _, err := execute(t, "ls", "--source", src)
		require.NoError(t, err)
		assert.Contains(t, out, "Folder")
		assert.Contains(t, out, "Bundestag")
		assert.Contains(t, out, "300 €")
		assert.Contains(t, out, "450 €")
		assert.Contains(t, out, "▸")
	})

	t.Run("plain", func(t *testing.T) {
		out, _, err := execute(t, "ls", "--source", src, "-o", "plain")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "02/\t300\tBundestag", lines[0])
	})

	t.Run("empty folder", func(t *testing.T) {
		out, _, err := execute(t, "ls", "01/0101", "--source", src)
		require.NoError(t, err)
		assert.Contains(t, out, "Keine Daten vorhanden.")
	})

	t.Run("missing folder", func(t *testing.T) {
		_, _, err := execute(t, "ls", "09", "--source", src)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("bad output format", func(t *testing.T) {
		_, _, err := execute(t, "ls", "--source", src, "-o", "yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported output format")
	})

	t.Run("unreachable source lists nothing", func(t *testing.T) {
		out, _, err := execute(t, "ls", "--source", "http://127.0.0.1:1/", "-o", "json")
		require.NoError(t, err)
		assert.Equal(t, "[]", strings.TrimSpace(out))
	})
}

func TestLsCmd_DirectorySource(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	for name, f := range fetchtest.Budget().FS() {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, f.Data, 0o600))
	}

	out, _, err := execute(t, "ls", "02", "--source", "file://"+dir, "-o", "plain")
	require.NoError(t, err)
	assert.Equal(t, "02/0201/\t300.5\tVerwaltung", strings.TrimSpace(out))
}

func TestTreeCmd(t *testing.T) {
	isolate(t)
	src := budgetServer(t)

	t.Run("two levels", func(t *testing.T) {
		out, _, err := execute(t, "tree", "--source", src, "--depth", "2")
		require.NoError(t, err)

		want := strings.Join([]string{
			"Root (450 €)",
			"├── 02 Bundestag  300 €",
			"│   └── 0201 Verwaltung  300,5 €",
			"├── 01 Bundespraesident  100 €",
			"│   ├── 0101 Amt  60 €",
			"│   └── 0102 Stiftung  40 €",
			"└── 04 Unbenannt  50 €",
		}, "\n") + "\n"
		assert.Equal(t, want, out)
	})

	t.Run("one level marks unexpanded folders", func(t *testing.T) {
		out, _, err := execute(t, "tree", "--source", src, "-d", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "├── 02 Bundestag  300 € …")
		assert.NotContains(t, out, "Verwaltung")
	})

	t.Run("subfolder", func(t *testing.T) {
		out, _, err := execute(t, "tree", "01", "--source", src)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "01 Bundespraesident (100 €)\n"))
		assert.Contains(t, out, "└── 0102 Stiftung  40 €")
	})

	t.Run("invalid depth", func(t *testing.T) {
		_, _, err := execute(t, "tree", "--source", src, "--depth", "0")
		require.Error(t, err)
	})
}

func TestBrowseCmd(t *testing.T) {
	isolate(t)
	src := budgetServer(t)

	t.Run("unknown mode", func(t *testing.T) {
		_, _, err := execute(t, "browse", "--source", src, "--mode", "sunburst")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown mode")
	})

	t.Run("requires a terminal", func(t *testing.T) {
		_, _, err := execute(t, "browse", "--source", src)
		require.ErrorIs(t, err, cli.ErrNotTerminal)
	})
}

func TestConfigCmd(t *testing.T) {
	home := isolate(t)

	out, _, err := execute(t, "config", "init", "--source", "https://example.org/haushalt/")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(home, "config.yaml"))

	_, _, err = execute(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, _, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "base: https://example.org/haushalt/")

	out, _, err = execute(t, "config", "show", "-o", "json", "--source", "./elsewhere")
	require.NoError(t, err)
	assert.Contains(t, out, `"base": "./elsewhere"`)
}
