package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/budgettree/internal/tui"
)

// ErrNotTerminal is returned by browse when stdout is not a terminal.
var ErrNotTerminal = errors.New("browse requires an interactive terminal; use ls or tree instead")

// newBrowseCmd creates the "browse" command starting the terminal browser.
func newBrowseCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse the tree interactively",
		Long: `Browse the data tree in the terminal.

In tree mode folders expand and collapse in place. In drill mode the view
shows one folder at a time: enter opens a folder, backspace goes back and
r returns to the root.`,
		Example: `  # Browse from the root as an expandable tree
  budgettree browse

  # Drill into a chapter
  budgettree browse 06/0601 --mode drill`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := tui.ParseMode(mode)
			if !ok {
				return fmt.Errorf("unknown mode %q (want tree or drill)", mode)
			}
			if !isTerminal(os.Stdout) {
				return ErrNotTerminal
			}
			return runBrowse(cmd, pathArg(args), m)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(tui.ModeDrill), "browser mode: tree or drill")

	return cmd
}

func runBrowse(cmd *cobra.Command, path string, mode tui.Mode) error {
	s, err := openSession()
	if err != nil {
		return err
	}

	model := tui.NewBrowserModel(cmd.Context(), s.loader, tui.Options{Mode: mode, Start: path})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("failed to run interactive browser: %w", err)
	}
	if bm, ok := final.(tui.BrowserModel); ok && bm.Err() != nil {
		return bm.Err()
	}
	return nil
}
