package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvHome         = "BUDGETTREE_HOME"
	EnvSource       = "BUDGETTREE_SOURCE"
	EnvLogLevel     = "BUDGETTREE_LOG_LEVEL"
	EnvLogFormat    = "BUDGETTREE_LOG_FORMAT"
	EnvCacheEnabled = "BUDGETTREE_CACHE_ENABLED"
	EnvCacheTTL     = "BUDGETTREE_CACHE_TTL_SECONDS"
	EnvCacheDir     = "BUDGETTREE_CACHE_DIR"
)

// Defaults.
const (
	DefaultSource         = "http://localhost:8000/"
	DefaultTimeout        = 10 * time.Second
	DefaultConcurrency    = 8
	DefaultUserAgent      = "budgettree"
	DefaultCacheTTL       = 3600
	DefaultCacheMaxSizeMB = 100
	DefaultMaxSegments    = 25
	DefaultServerAddr     = ":8080"

	configFileName = "config.yaml"
	homeDirName    = ".budgettree"
)

// ErrInvalidConcurrency is returned by Validate for a non-positive fan-out limit.
var ErrInvalidConcurrency = errors.New("source.concurrency must be >= 1")

// Config is the full budgettree configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source"  json:"source"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Cache   CacheConfig   `yaml:"cache"   json:"cache"`
	Output  OutputConfig  `yaml:"output"  json:"output"`
	Server  ServerConfig  `yaml:"server"  json:"server"`
}

// SourceConfig locates the data tree and bounds how it is fetched.
type SourceConfig struct {
	// Base is an http(s) URL or a local directory holding the root directory.json.
	Base string `yaml:"base" json:"base"`

	// Timeout bounds each individual fetch.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Concurrency bounds parallel record fetches within one directory.
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	UserAgent string `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
}

// LoggingConfig mirrors logging.Config in YAML form.
type LoggingConfig struct {
	Level  string `yaml:"level"          json:"level"`
	Format string `yaml:"format"         json:"format"`
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// CacheConfig controls the persistent response cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"             json:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"         json:"ttl_seconds"`
	Directory  string `yaml:"directory,omitempty" json:"directory,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"         json:"max_size_mb"`
}

// OutputConfig holds presentation defaults.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"`
	MaxSegments   int    `yaml:"max_segments"   json:"max_segments"`
}

// ServerConfig holds defaults for the serve command.
type ServerConfig struct {
	Addr            string `yaml:"addr"              json:"addr"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" json:"allow_all_origins"`
}

//nolint:gochecknoglobals // Loaded once per CLI invocation.
var (
	globalConfig   *Config
	globalConfigMu sync.RWMutex
)

// HomeDir returns the budgettree home directory ($BUDGETTREE_HOME or ~/.budgettree).
func HomeDir() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return homeDirName
	}
	return filepath.Join(home, homeDirName)
}

// ConfigPath returns the path of the user config file.
func ConfigPath() string {
	return filepath.Join(HomeDir(), configFileName)
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	home := HomeDir()
	return &Config{
		Source: SourceConfig{
			Base:        DefaultSource,
			Timeout:     DefaultTimeout,
			Concurrency: DefaultConcurrency,
			UserAgent:   DefaultUserAgent,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Cache: CacheConfig{
			Enabled:    false,
			TTLSeconds: DefaultCacheTTL,
			Directory:  filepath.Join(home, "cache"),
			MaxSizeMB:  DefaultCacheMaxSizeMB,
		},
		Output: OutputConfig{
			DefaultFormat: "table",
			MaxSegments:   DefaultMaxSegments,
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
	}
}

// New loads defaults, overlays the user config file when present, and applies
// environment overrides. A broken config file is ignored so commands keep working.
func New() *Config {
	cfg := Default()

	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		if mergeErr := ShallowMergeYAML(cfg, path); mergeErr != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: ignoring config file %s: %v\n", path, mergeErr)
		}
	}

	cfg.applyEnv()
	return cfg
}

// applyEnv applies environment overrides. Invalid values are ignored.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvSource); v != "" {
		c.Source.Base = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvCacheEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Cache.Enabled = b
		}
	}
	if v := os.Getenv(EnvCacheTTL); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Cache.TTLSeconds = n
		}
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.Cache.Directory = v
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source.Base) == "" {
		return errors.New("source.base cannot be empty")
	}
	if c.Source.Concurrency < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidConcurrency, c.Source.Concurrency)
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must be >= 0, got %s", c.Source.Timeout)
	}
	switch c.Output.DefaultFormat {
	case "table", "json", "plain":
	default:
		return fmt.Errorf("output.default_format must be table, json or plain, got %q", c.Output.DefaultFormat)
	}
	return nil
}

// Save writes the config as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// SetGlobalConfig stores cfg for the remainder of the invocation.
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig returns the invocation config, loading it on first use.
func GetGlobalConfig() *Config {
	globalConfigMu.RLock()
	cfg := globalConfig
	globalConfigMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	if globalConfig == nil {
		globalConfig = New()
	}
	return globalConfig
}
