package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Layout defaults used before the first WindowSizeMsg.
const (
	defaultWidth  = 100
	defaultHeight = 30
	borderPadding = 2
	chromeLines   = 5
	barWidth      = 20
)

// Key names handled by the browser.
const (
	keyEnter     = "enter"
	keyEsc       = "esc"
	keyQuit      = "q"
	keyCtrlC     = "ctrl+c"
	keyBackspace = "backspace"
	keySpace     = " "
	keyRight     = "right"
	keyLeft      = "left"
)

// Palette.
const (
	ColorHeader     = lipgloss.Color("39")
	ColorBorder     = lipgloss.Color("240")
	ColorLabel      = lipgloss.Color("250")
	ColorValue      = lipgloss.Color("255")
	ColorMuted      = lipgloss.Color("244")
	ColorHighlight  = lipgloss.Color("212")
	ColorError      = lipgloss.Color("196")
	ColorExpandable = lipgloss.Color("#73c0de")
	ColorLeaf       = lipgloss.Color("#91cc75")
)

// Tree indicators.
const (
	IconExpanded  = "▾"
	IconCollapsed = "▸"
	IconLeaf      = "•"
	CrumbSep      = " › "
)

//nolint:gochecknoglobals // Shared lipgloss styles.
var (
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	CrumbStyle    = lipgloss.NewStyle().Foreground(ColorLabel)
	SelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHighlight)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	ValueStyle    = lipgloss.NewStyle().Foreground(ColorValue)
	ErrorStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	BoxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

// ViewState is the screen the browser shows.
type ViewState int

// View states.
const (
	ViewStateLoading ViewState = iota
	ViewStateList
	ViewStateDetail
	ViewStateError
	ViewStateQuitting
)

// Mode selects the browsing style.
type Mode string

// Browsing modes.
const (
	// ModeTree expands and collapses folders in place, like a dendrogram.
	ModeTree Mode = "tree"
	// ModeDrill shows one folder at a time with breadcrumbs, like a treemap.
	ModeDrill Mode = "drill"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeTree, ModeDrill:
		return Mode(s), true
	default:
		return "", false
	}
}

// LoadingState is the spinner shown while a folder loads.
type LoadingState struct {
	spinner spinner.Model
	message string
}

// NewLoadingState creates a dot spinner.
func NewLoadingState() *LoadingState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorHighlight)
	return &LoadingState{spinner: s, message: "Loading..."}
}

// Init starts the spinner.
func (l *LoadingState) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner.
func (l *LoadingState) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// RenderLoading renders the spinner line.
func RenderLoading(loading *LoadingState) string {
	if loading == nil {
		return "Loading..."
	}
	return "\n " + loading.spinner.View() + " " + loading.message + "\n"
}
