package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/budgettree/internal/chart"
	"github.com/rshade/budgettree/internal/fetch"
	"github.com/rshade/budgettree/internal/tree"
)

// crawlRecord is one exported node.
type crawlRecord struct {
	Path        string         `json:"path"`
	Depth       int            `json:"depth"`
	Name        string         `json:"name"`
	Value       float64        `json:"value"`
	HasChildren bool           `json:"hasChildren"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// crawlExport is the JSON document written by "crawl --output json".
type crawlExport struct {
	Source   string        `json:"source"`
	Start    string        `json:"start"`
	Levels   int           `json:"levels"`
	Expanded int           `json:"expanded"`
	Records  []crawlRecord `json:"records"`
}

type crawlFlags struct {
	depth      int
	include    []string
	exclude    []string
	output     string
	batchSize  int
	attributes bool
	quiet      bool
}

// newCrawlCmd creates the "crawl" command that eagerly loads and exports a subtree.
func newCrawlCmd() *cobra.Command {
	var flags crawlFlags

	cmd := &cobra.Command{
		Use:   "crawl [path]",
		Short: "Load a subtree eagerly and export it",
		Long: `Expand a folder and its descendants level by level and print every
discovered budget line. Glob patterns match node paths such as "06/0601":
--exclude prunes matching subtrees, --include filters the printed lines.`,
		Example: `  # Export the whole tree as JSON
  budgettree crawl --output json > budget.json

  # Crawl two levels of one chapter, skipping a subtree
  budgettree crawl 06 --depth 2 --exclude '06/0602/**'

  # Print only title-level lines below 14
  budgettree crawl 14 --include '14/*/*/*'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.depth < 0 {
				return fmt.Errorf("depth must be >= 0, got %d", flags.depth)
			}
			return runCrawl(cmd, pathArg(args), flags)
		},
	}

	cmd.Flags().IntVarP(&flags.depth, "depth", "d", 0, "levels to crawl below the folder (0 = unlimited)")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "glob patterns of node paths to print")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "glob patterns of node paths to skip with their subtrees")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output format: table, json or plain (default from config)")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", 0, "folders expanded per batch (0 = default)")
	cmd.Flags().BoolVar(&flags.attributes, "attributes", false, "include the raw record fields in JSON output")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "do not report progress")

	return cmd
}

func runCrawl(cmd *cobra.Command, path string, flags crawlFlags) error {
	format, err := outputFormat(cmd, flags.output)
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
	start, err := s.loader.ExpandPath(ctx, path)
	if err != nil {
		if errors.Is(err, tree.ErrNotFound) {
			return fmt.Errorf("folder %q not found", tree.Display(path))
		}
		return err
	}

	reporter := newCrawlReporter(cmd.ErrOrStderr(), isTerminal(os.Stderr), flags.quiet)
	crawler, err := tree.NewCrawler(s.loader, tree.CrawlOptions{
		MaxDepth:    flags.depth,
		Include:     flags.include,
		Exclude:     flags.exclude,
		BatchSize:   flags.batchSize,
		Concurrency: s.cfg.Source.Concurrency,
		OnProgress:  reporter.Update,
	})
	if err != nil {
		return err
	}

	res, err := crawler.Crawl(ctx, start)
	reporter.Finish()
	if err != nil {
		return err
	}

	logger.Info().
		Ctx(ctx).
		Str("start", tree.Display(path)).
		Int("levels", res.Levels).
		Int("expanded", res.Expanded).
		Int("records", len(res.Nodes)).
		Msg("crawl finished")

	export := crawlExport{
		Source:   s.fetcher.Source().Location(""),
		Start:    path,
		Levels:   res.Levels,
		Expanded: res.Expanded,
		Records:  make([]crawlRecord, 0, len(res.Nodes)),
	}
	base := len(fetch.Segments(path))
	for _, n := range res.Nodes {
		rec := crawlRecord{
			Path:        n.FullPath,
			Depth:       len(fetch.Segments(n.FullPath)) - base,
			Name:        n.Name,
			Value:       n.Value,
			HasChildren: n.HasChildren,
		}
		if flags.attributes {
			rec.Attributes = n.Attributes
		}
		export.Records = append(export.Records, rec)
	}

	return renderCrawl(cmd.OutOrStdout(), format, export)
}

func renderCrawl(w io.Writer, format string, export crawlExport) error {
	switch format {
	case formatJSON:
		return writeJSON(w, export)
	case formatPlain:
		for _, r := range export.Records {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n",
				r.Path, strconv.FormatFloat(r.Value, 'f', -1, 64), r.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		if len(export.Records) == 0 {
			_, err := fmt.Fprintln(w, emptyFolderMessage)
			return err
		}
		const tabPadding = 2
		tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
		fmt.Fprintln(tw, "Path\tName\tBetrag\t")
		fmt.Fprintln(tw, "----\t----\t------\t")
		for _, r := range export.Records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t\n", r.Path, r.Name, chart.FormatEuro(r.Value))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\n%d lines, %d levels, %d folders expanded\n",
			len(export.Records), export.Levels, export.Expanded)
		return err
	}
}
