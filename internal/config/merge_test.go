package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/budgettree/internal/config"
)

// newDefaultTarget returns a Config with known non-zero values so tests can
// verify that absent overlay keys leave the original values intact.
func newDefaultTarget() *config.Config {
	return &config.Config{
		Source: config.SourceConfig{
			Base:        "https://example.org/haushalt/",
			Timeout:     5 * time.Second,
			Concurrency: 4,
		},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
		Cache: config.CacheConfig{
			Enabled:    true,
			TTLSeconds: 3600,
			MaxSizeMB:  100,
		},
		Output: config.OutputConfig{DefaultFormat: "table", MaxSegments: 25},
		Server: config.ServerConfig{Addr: ":8080"},
	}
}

// writeOverlay writes YAML content to a temp file and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestShallowMergeYAML_SingleKeyOverride(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
output:
  default_format: json
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, "json", target.Output.DefaultFormat)
	// Whole-section replacement: max_segments was absent in the overlay.
	assert.Equal(t, 0, target.Output.MaxSegments)
	assert.Equal(t, "https://example.org/haushalt/", target.Source.Base)
	assert.True(t, target.Cache.Enabled)
}

func TestShallowMergeYAML_SourceDuration(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
source:
  base: ./data
  timeout: 30s
  concurrency: 2
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, "./data", target.Source.Base)
	assert.Equal(t, 30*time.Second, target.Source.Timeout)
	assert.Equal(t, 2, target.Source.Concurrency)
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
plugins:
  foo: bar
server:
  addr: ":9090"
  allow_all_origins: true
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, ":9090", target.Server.Addr)
	assert.True(t, target.Server.AllowAllOrigins)
}

func TestShallowMergeYAML_EmptyFile(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, "# only a comment\n")

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, newDefaultTarget(), target)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	t.Run("nil target", func(t *testing.T) {
		err := config.ShallowMergeYAML(nil, "whatever.yaml")
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		err := config.ShallowMergeYAML(newDefaultTarget(), filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading overlay file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		overlay := writeOverlay(t, "source: [unclosed")
		err := config.ShallowMergeYAML(newDefaultTarget(), overlay)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing overlay YAML")
	})

	t.Run("wrong section type", func(t *testing.T) {
		overlay := writeOverlay(t, "cache:\n  ttl_seconds: not-a-number\n")
		err := config.ShallowMergeYAML(newDefaultTarget(), overlay)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `applying overlay section "cache"`)
	})
}
