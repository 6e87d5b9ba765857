package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/budgettree/internal/cache"
	"github.com/rshade/budgettree/internal/config"
)

const bytesPerKB = 1024

// newCacheCmd creates the "cache" command group managing the response cache.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
		Long:  "Inspect and clean the on-disk cache of fetched listings and records.",
	}
	cmd.AddCommand(newCacheStatsCmd(), newCacheClearCmd(), newCachePruneCmd())
	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache location, entry count and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			count, err := store.Count()
			if err != nil {
				return fmt.Errorf("counting cache entries: %w", err)
			}
			size, err := store.Size()
			if err != nil {
				return fmt.Errorf("measuring cache: %w", err)
			}

			cmd.Printf("Directory: %s\n", store.Directory())
			cmd.Printf("Enabled:   %t\n", config.GetGlobalConfig().Cache.Enabled)
			cmd.Printf("TTL:       %s\n", cache.FormatDuration(time.Duration(store.TTL())*time.Second))
			cmd.Printf("Entries:   %d\n", count)
			cmd.Printf("Size:      %s\n", formatBytes(size))
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cache entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if err = store.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			logger.Info().Ctx(cmd.Context()).Str("directory", store.Directory()).Msg("cache cleared")
			cmd.Println("Cache cleared.")
			return nil
		},
	}
}

func newCachePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete expired entries and shrink the cache to its size limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			expired, err := store.CleanupExpired()
			if err != nil {
				return fmt.Errorf("removing expired entries: %w", err)
			}
			evicted, err := store.Prune()
			if err != nil {
				return fmt.Errorf("pruning cache: %w", err)
			}
			cmd.Printf("Removed %d expired and %d oversize entries.\n", expired, evicted)
			return nil
		},
	}
}

// formatBytes renders n as B, KB or MB.
func formatBytes(n int64) string {
	switch {
	case n < bytesPerKB:
		return fmt.Sprintf("%d B", n)
	case n < bytesPerKB*bytesPerKB:
		return fmt.Sprintf("%.1f KB", float64(n)/bytesPerKB)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(bytesPerKB*bytesPerKB))
	}
}
