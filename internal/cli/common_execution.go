package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/budgettree/internal/cache"
	"github.com/rshade/budgettree/internal/config"
	"github.com/rshade/budgettree/internal/fetch"
	"github.com/rshade/budgettree/internal/tree"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatPlain = "plain"
)

// session bundles the objects a data command works with.
type session struct {
	cfg     *config.Config
	fetcher *fetch.Fetcher
	loader  *tree.Loader
}

// openSession builds the source, response cache, fetcher and loader from the
// invocation config.
func openSession() (*session, error) {
	cfg := config.GetGlobalConfig()

	src, err := fetch.NewSource(
		cfg.Source.Base,
		fetch.WithTimeout(cfg.Source.Timeout),
		fetch.WithUserAgent(cfg.Source.UserAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}

	var store *cache.FileStore
	if cfg.Cache.Enabled {
		store, err = cache.NewFileStore(cfg.Cache.Directory, true, cfg.Cache.TTLSeconds, cfg.Cache.MaxSizeMB)
		if err != nil {
			logger.Warn().Err(err).Str("directory", cfg.Cache.Directory).Msg("response cache unavailable")
			store = nil
		}
	}

	f := fetch.NewFetcher(src, store)
	return &session{
		cfg:     cfg,
		fetcher: f,
		loader:  tree.NewLoader(f, tree.WithConcurrency(cfg.Source.Concurrency)),
	}, nil
}

// openStore opens the configured cache directory regardless of cache.enabled,
// for the cache management commands.
func openStore() (*cache.FileStore, error) {
	cfg := config.GetGlobalConfig()
	store, err := cache.NewFileStore(cfg.Cache.Directory, true, cfg.Cache.TTLSeconds, cfg.Cache.MaxSizeMB)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return store, nil
}

// pathArg returns the optional folder argument as a normalized path.
func pathArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return fetch.NormalizeDir(args[0])
}

// outputFormat resolves the --output flag against the configured default.
func outputFormat(cmd *cobra.Command, flag string) (string, error) {
	format := flag
	if format == "" {
		format = config.GetGlobalConfig().Output.DefaultFormat
	}
	switch format {
	case formatTable, formatJSON, formatPlain:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q for %s (want table, json or plain)", format, cmd.Name())
	}
}

// logStats records the fetch counters at debug level.
func (s *session) logStats(cmd *cobra.Command, started time.Time) {
	stats := s.fetcher.Stats()
	logger.Debug().
		Ctx(cmd.Context()).
		Int64("requests", stats.Requests).
		Int64("cache_hits", stats.CacheHits).
		Dur("duration", time.Since(started)).
		Msg("command finished")
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
