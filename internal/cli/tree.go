package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/budgettree/internal/chart"
	"github.com/rshade/budgettree/internal/tree"
)

// defaultTreeDepth is the number of levels printed by "tree" without --depth.
const defaultTreeDepth = 2

// newTreeCmd creates the "tree" command printing a folder as an ASCII tree.
func newTreeCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Print a folder and its descendants as a tree",
		Example: `  # Print the top two levels
  budgettree tree

  # Print a chapter four levels deep
  budgettree tree 06 --depth 4`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth < 1 {
				return fmt.Errorf("depth must be >= 1, got %d", depth)
			}
			return runTree(cmd, pathArg(args), depth)
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", defaultTreeDepth, "number of levels to load below the folder")

	return cmd
}

func runTree(cmd *cobra.Command, path string, depth int) error {
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

	crawler, err := tree.NewCrawler(s.loader, tree.CrawlOptions{
		MaxDepth:    depth,
		Concurrency: s.cfg.Source.Concurrency,
	})
	if err != nil {
		return err
	}
	if _, err = crawler.Crawl(ctx, start); err != nil {
		return err
	}

	return renderTree(cmd.OutOrStdout(), start)
}

// renderTree writes start and its expanded descendants with box-drawing guides.
func renderTree(w io.Writer, start *tree.Node) error {
	if _, err := fmt.Fprintf(w, "%s (%s)\n", heading(start), chart.FormatEuro(start.Total())); err != nil {
		return err
	}
	rows := tree.Visible(start)
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, emptyFolderMessage)
		return err
	}
	for _, r := range rows {
		marker := ""
		if r.Node.HasChildren && !r.Node.Expanded() {
			marker = " …"
		}
		if _, err := fmt.Fprintf(w, "%s%s %s  %s%s\n",
			r.Prefix, r.Node.FolderName, r.Node.Name, chart.FormatEuro(r.Node.Value), marker); err != nil {
			return err
		}
	}
	return nil
}

func heading(n *tree.Node) string {
	if n.IsRoot() {
		return tree.RootName
	}
	return n.FolderName + " " + n.Name
}
