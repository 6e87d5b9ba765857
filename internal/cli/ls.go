package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/budgettree/internal/chart"
	"github.com/rshade/budgettree/internal/tree"
)

// emptyFolderMessage is printed for a folder without valid entries.
const emptyFolderMessage = "Keine Daten vorhanden."

// entryView is the JSON form of a listed node.
type entryView struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Formatted   string  `json:"formatted"`
	Share       float64 `json:"share,omitempty"`
	FolderName  string  `json:"folderName"`
	FullPath    string  `json:"fullPath"`
	HasChildren bool    `json:"hasChildren"`
}

func newEntryViews(nodes []*tree.Node) []entryView {
	var total float64
	for _, n := range nodes {
		total += n.Value
	}
	out := make([]entryView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, newEntryView(n, total))
	}
	return out
}

// newEntryView describes n; share is left at zero when total is not positive.
func newEntryView(n *tree.Node, total float64) entryView {
	var share float64
	if total > 0 {
		share = n.Value / total * 100 //nolint:mnd // percent
	}
	return entryView{
		Name:        n.Name,
		Value:       n.Value,
		Formatted:   chart.FormatEuro(n.Value),
		Share:       share,
		FolderName:  n.FolderName,
		FullPath:    n.FullPath,
		HasChildren: n.HasChildren,
	}
}

// newLsCmd creates the "ls" command listing the entries of one folder.
func newLsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List the entries of a folder",
		Long:  "List the budget lines of a folder, sorted by amount descending. Without a path the root is listed.",
		Example: `  # List the root folder
  budgettree ls

  # List a chapter as JSON
  budgettree ls 06/0601 --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs(cmd, pathArg(args), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json or plain (default from config)")

	return cmd
}

func runLs(cmd *cobra.Command, path, output string) error {
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

	node, err := s.loader.ExpandPath(cmd.Context(), path)
	if err != nil {
		if errors.Is(err, tree.ErrNotFound) {
			return fmt.Errorf("folder %q not found", tree.Display(path))
		}
		return err
	}

	entries := newEntryViews(node.Children())
	return renderEntries(cmd.OutOrStdout(), format, entries)
}

func renderEntries(w io.Writer, format string, entries []entryView) error {
	switch format {
	case formatJSON:
		return writeJSON(w, entries)
	case formatPlain:
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, emptyFolderMessage)
			return err
		}
		for _, e := range entries {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n",
				e.FullPath, strconv.FormatFloat(e.Value, 'f', -1, 64), e.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		return renderEntryTable(w, entries)
	}
}

func renderEntryTable(w io.Writer, entries []entryView) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, emptyFolderMessage)
		return err
	}

	const tabPadding = 2
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	fmt.Fprintln(tw, "Folder\tName\tBetrag\tShare\t\t")
	fmt.Fprintln(tw, "------\t----\t------\t-----\t\t")

	var total float64
	for _, e := range entries {
		total += e.Value
		more := ""
		if e.HasChildren {
			more = "▸"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			e.FolderName, e.Name, chart.FormatEuro(e.Value), chart.FormatPercent(e.Share), more)
	}
	fmt.Fprintf(tw, "\tTotal\t%s\t\t\t\n", chart.FormatEuro(total))
	return tw.Flush()
}
