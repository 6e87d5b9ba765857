package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/budgettree/internal/logging"
)

func TestDefault(t *testing.T) {
	t.Setenv(EnvHome, "/tmp/bt-home")

	cfg := Default()
	assert.Equal(t, DefaultSource, cfg.Source.Base)
	assert.Equal(t, DefaultConcurrency, cfg.Source.Concurrency)
	assert.Equal(t, filepath.Join("/tmp/bt-home", "cache"), cfg.Cache.Directory)
	assert.False(t, cfg.Cache.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestNew_FileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)
	t.Setenv(EnvSource, "")
	t.Setenv(EnvCacheEnabled, "")
	t.Setenv(EnvCacheTTL, "")
	t.Setenv(EnvCacheDir, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")

	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(`
source:
  base: https://data.example.org/
  concurrency: 3
cache:
  enabled: true
  ttl_seconds: 120
`), 0600))

	cfg := New()
	assert.Equal(t, "https://data.example.org/", cfg.Source.Base)
	assert.Equal(t, 3, cfg.Source.Concurrency)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 120, cfg.Cache.TTLSeconds)

	t.Run("env wins over file", func(t *testing.T) {
		t.Setenv(EnvSource, "./local")
		t.Setenv(EnvCacheEnabled, "false")
		t.Setenv(EnvCacheTTL, "-5")
		t.Setenv(EnvLogLevel, "debug")

		cfg := New()
		assert.Equal(t, "./local", cfg.Source.Base)
		assert.False(t, cfg.Cache.Enabled)
		assert.Equal(t, 120, cfg.Cache.TTLSeconds, "invalid TTL env value is ignored")
		assert.Equal(t, "debug", cfg.Logging.Level)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"empty base", func(c *Config) { c.Source.Base = " " }, "source.base"},
		{"zero concurrency", func(c *Config) { c.Source.Concurrency = 0 }, "concurrency"},
		{"bad format", func(c *Config) { c.Output.DefaultFormat = "xml" }, "default_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	cfg := Default()
	cfg.Source.Concurrency = -1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConcurrency)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Source.Base = "https://example.org/"
	require.NoError(t, cfg.Save(path))

	loaded := Default()
	require.NoError(t, ShallowMergeYAML(loaded, path))
	assert.Equal(t, cfg, loaded)
}

func TestToLoggingConfig(t *testing.T) {
	lc := LoggingConfig{Level: "warn", Format: "json"}
	assert.Equal(t, logging.OutputStderr, lc.ToLoggingConfig().Output)

	lc.File = "/var/log/budgettree.log"
	out := lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputFile, out.Output)
	assert.Equal(t, "/var/log/budgettree.log", out.File)
	assert.Equal(t, "warn", out.Level)
}

func TestGlobalConfig(t *testing.T) {
	cfg := Default()
	cfg.Output.MaxSegments = 7
	SetGlobalConfig(cfg)
	t.Cleanup(func() { SetGlobalConfig(nil) })

	assert.Same(t, cfg, GetGlobalConfig())
	assert.Equal(t, cfg.Logging, GetLoggingConfig())
}
