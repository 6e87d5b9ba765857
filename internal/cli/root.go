package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/budgettree/internal/cache"
	"github.com/rshade/budgettree/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the budgettree CLI.
// It wires up configuration, logging and tracing before any subcommand runs.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "budgettree",
		Short:         "Browse a budget data tree on demand",
		Long:          "budgettree: lazily browse a static tree of YAML budget records served over HTTP or from disk",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cacheTTL, _ := cmd.Flags().GetInt("cache-ttl")
			if cacheTTL < 0 {
				return fmt.Errorf("cache-ttl must be >= 0, got %d", cacheTTL)
			}
			if cacheTTL > 0 {
				if err := cache.ValidateTTL(cacheTTL); err != nil {
					return err
				}
			}

			if err := loadConfig(cmd); err != nil {
				return err
			}

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().
		String("source", "", "base URL or local directory of the data tree (overrides config file and env var)")
	cmd.PersistentFlags().
		Int("cache-ttl", 0, "cache TTL in seconds (0 = use config default, overrides config file and env var)")
	cmd.PersistentFlags().Bool("no-cache", false, "bypass the response cache")

	cmd.AddCommand(
		newLsCmd(),
		newTreeCmd(),
		newBrowseCmd(),
		newCrawlCmd(),
		newSearchCmd(),
		newServeCmd(),
		newCacheCmd(),
		newConfigCmd(),
		newVersionCmd(ver),
	)

	return cmd
}

const rootCmdExample = `  # List the top level of a remote data tree
  budgettree ls --source https://example.org/haushalt/

  # List one folder as JSON
  budgettree ls 06/0601 --output json

  # Print the tree three levels deep
  budgettree tree --depth 3

  # Browse interactively, drilling into folders
  budgettree browse --mode drill

  # Export everything below a folder, skipping one subtree
  budgettree crawl 14 --exclude '14/1403/**' --output json > 14.json

  # Find budget lines by label
  budgettree search Bundestag

  # Serve the JSON API for web charts
  budgettree serve --addr :8080

  # Show response cache statistics
  budgettree cache stats`
