package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/budgettree/internal/chart"
	"github.com/rshade/budgettree/internal/tree"
	"github.com/rshade/budgettree/internal/tui/detail"
)

// emptyFolder is shown for a folder without valid entries.
const emptyFolder = "Keine Daten vorhanden."

// View renders the current screen (Bubble Tea interface).
func (m BrowserModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateError:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)),
			MutedStyle.Render("esc back • q quit"))
	case ViewStateLoading:
		return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), RenderLoading(m.loading))
	case ViewStateDetail:
		return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.renderDetail(), m.renderHelp())
	case ViewStateList:
		return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.renderList(), m.renderHelp())
	default:
		return ""
	}
}

func (m BrowserModel) renderHeader() string {
	title := HeaderStyle.Render("budgettree") + MutedStyle.Render(" ["+string(m.mode)+"]")

	parts := []string{tree.RootName}
	if m.mode == ModeDrill {
		for _, c := range m.crumbs {
			parts = append(parts, c.Title)
		}
	} else if n := m.selectedNode(); n != nil {
		parts = append(parts, tree.Key(n.FullPath)...)
	}
	crumbs := CrumbStyle.Render(strings.Join(parts, CrumbSep))

	return lipgloss.JoinVertical(lipgloss.Left, title, crumbs, "")
}

func (m BrowserModel) renderList() string {
	if m.list.ItemCount() == 0 {
		return MutedStyle.Render(emptyFolder)
	}
	out := m.list.View()
	if m.status != "" {
		out += "\n" + MutedStyle.Render(m.status)
	}
	return out
}

func (m BrowserModel) renderDetail() string {
	n := m.detail
	if n == nil {
		return ""
	}
	head := SelectedStyle.Render(n.Name) + "  " + ValueStyle.Render(chart.FormatEuro(n.Value))
	body := detail.Render(n)
	return BoxStyle.Width(max(m.width-borderPadding, 20)).Render(head + "\n\n" + body)
}

func (m BrowserModel) renderHelp() string {
	switch {
	case m.state == ViewStateDetail:
		return MutedStyle.Render("esc back • q quit")
	case m.mode == ModeTree:
		return MutedStyle.Render("↑/↓ move • enter expand/collapse • ← parent • d details • q quit")
	default:
		return MutedStyle.Render("↑/↓ move • enter open • backspace back • r root • d details • q quit")
	}
}

// rowRenderer renders list rows; it is shared by value copies of the model.
type rowRenderer struct {
	mode  Mode
	width int
}

func (r *rowRenderer) render(it item, index int, selected bool) string {
	if r.mode == ModeTree {
		return r.renderTreeRow(it, selected)
	}
	return r.renderDrillRow(it, index, selected)
}

func (r *rowRenderer) renderTreeRow(it item, selected bool) string {
	n := it.node
	icon := lipgloss.NewStyle().Foreground(ColorLeaf).Render(IconLeaf)
	if n.HasChildren {
		glyph := IconCollapsed
		if n.Expanded() {
			glyph = IconExpanded
		}
		icon = lipgloss.NewStyle().Foreground(ColorExpandable).Render(glyph)
	}

	name := n.Name
	if selected {
		name = SelectedStyle.Render(name)
	}
	row := MutedStyle.Render(it.prefix) + icon + " " + name + "  " + ValueStyle.Render(chart.FormatEuro(n.Value))
	return lipgloss.NewStyle().MaxWidth(max(r.width, 1)).Render(row)
}

func (r *rowRenderer) renderDrillRow(it item, index int, selected bool) string {
	n := it.node
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(chart.BaseColor(index))).Render("■")

	marker := " "
	if n.HasChildren {
		marker = IconCollapsed
	}
	cursor := "  "
	name := n.Name
	if selected {
		cursor = SelectedStyle.Render("> ")
		name = SelectedStyle.Render(name)
	}

	filled := min(max(int(it.share/100*barWidth), 0), barWidth)
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(chart.BaseColor(index))).
		Render(strings.Repeat("█", filled)) + MutedStyle.Render(strings.Repeat("░", barWidth-filled))

	row := fmt.Sprintf("%s%s %s %s  %s  %s %s",
		cursor, swatch, marker, name,
		ValueStyle.Render(chart.FormatEuro(n.Value)),
		bar, MutedStyle.Render(chart.FormatPercent(it.share)))
	return lipgloss.NewStyle().MaxWidth(max(r.width, 1)).Render(row)
}
