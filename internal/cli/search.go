package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/budgettree/internal/chart"
	"github.com/rshade/budgettree/internal/tree"
)

// Search defaults.
const (
	defaultSearchDepth = 3
	defaultSearchLimit = 20
)

// searchHit is the JSON form of a search match.
type searchHit struct {
	entryView

	Distance int `json:"distance"`
}

// newSearchCmd creates the "search" command.
func newSearchCmd() *cobra.Command {
	var (
		depth  int
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find budget lines by label",
		Long: `Load the tree to --depth levels and search the labels and folder names of
the loaded lines. Exact substring matches come first, then labels within a
small edit distance of the query.`,
		Example: `  # Find lines mentioning the Bundestag
  budgettree search Bundestag

  # Tolerate typos and search deeper
  budgettree search "Bundestga" --depth 4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth < 0 {
				return fmt.Errorf("depth must be >= 0, got %d", depth)
			}
			return runSearch(cmd, strings.Join(args, " "), depth, limit, output)
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", defaultSearchDepth, "levels to load before searching (0 = unlimited)")
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultSearchLimit, "maximum number of results (0 = all)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json or plain (default from config)")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, depth, limit int, output string) error {
	format, err := outputFormat(cmd, output)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	started := time.Now()
	defer s.logStats(cmd, started)

	ctx := cmd.Context()
	root := s.loader.Root()
	crawler, err := tree.NewCrawler(s.loader, tree.CrawlOptions{
		MaxDepth:    depth,
		Concurrency: s.cfg.Source.Concurrency,
	})
	if err != nil {
		return err
	}
	if _, err = crawler.Crawl(ctx, root); err != nil {
		return err
	}

	matches := tree.Search(root, query, limit)
	logger.Debug().Ctx(ctx).Str("query", query).Int("matches", len(matches)).Msg("search finished")

	hits := make([]searchHit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, searchHit{entryView: newEntryView(m.Node, 0), Distance: m.Distance})
	}
	return renderHits(cmd.OutOrStdout(), format, query, hits)
}

func renderHits(w io.Writer, format, query string, hits []searchHit) error {
	switch format {
	case formatJSON:
		return writeJSON(w, hits)
	case formatPlain:
		for _, h := range hits {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", h.FullPath, h.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		if len(hits) == 0 {
			_, err := fmt.Fprintf(w, "No matches for %q.\n", query)
			return err
		}
		const tabPadding = 2
		tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
		fmt.Fprintln(tw, "Path\tName\tBetrag\tDistance\t")
		fmt.Fprintln(tw, "----\t----\t------\t--------\t")
		for _, h := range hits {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t\n", tree.Display(h.FullPath), h.Name, chart.FormatEuro(h.Value), h.Distance)
		}
		return tw.Flush()
	}
}
