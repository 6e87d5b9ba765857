package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/budgettree/internal/fetch"
	"github.com/rshade/budgettree/internal/fetch/fetchtest"
	"github.com/rshade/budgettree/internal/tree"
)

func newTestLoader() *tree.Loader {
	src := fetch.NewFSSource(fetchtest.Budget().FS())
	return tree.NewLoader(fetch.NewFetcher(src, nil))
}

// run executes cmd and returns the load messages it produces, expanding batches.
func run(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(t, c)...)
		}
		return out
	}
	switch msg.(type) {
	case FolderLoadedMsg, NodeExpandedMsg:
		return []tea.Msg{msg}
	}
	return nil
}

func update(t *testing.T, m BrowserModel, msg tea.Msg) (BrowserModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	bm, ok := next.(BrowserModel)
	require.True(t, ok)
	return bm, cmd
}

// settle feeds every load produced by cmd back into the model.
func settle(t *testing.T, m BrowserModel, cmd tea.Cmd) BrowserModel {
	t.Helper()
	for _, msg := range run(t, cmd) {
		m, _ = update(t, m, msg)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case keyEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case keyBackspace:
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case keyEsc:
		return tea.KeyMsg{Type: tea.KeyEscape}
	case keyLeft:
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func folderNames(m BrowserModel) []string {
	var out []string
	for _, it := range m.list.Items() {
		out = append(out, it.node.FolderName)
	}
	return out
}

func TestBrowser_DrillMode(t *testing.T) {
	m := NewBrowserModel(context.Background(), newTestLoader(), Options{Mode: ModeDrill})
	assert.Equal(t, ViewStateLoading, m.State())

	m = settle(t, m, m.Init())
	require.Equal(t, ViewStateList, m.State())
	assert.Equal(t, []string{"02", "01", "04"}, folderNames(m))
	assert.Contains(t, m.View(), "Bundestag")

	t.Run("drill into folder", func(t *testing.T) {
		m, cmd := update(t, m, key(keyEnter))
		assert.Equal(t, ViewStateLoading, m.State())
		assert.Equal(t, "02/", m.Path())

		m = settle(t, m, cmd)
		assert.Equal(t, []string{"0201"}, folderNames(m))
		assert.Equal(t, []tree.Crumb{{ID: "02", Title: "Bundestag", Path: "02/"}}, m.crumbs)
		assert.Contains(t, m.View(), "Root › Bundestag")

		m, _ = update(t, m, key(keyEnter))
		assert.Equal(t, ViewStateDetail, m.State(), "leaf opens details")
		assert.Contains(t, m.View(), "Verwaltung")

		m, _ = update(t, m, key(keyEsc))
		assert.Equal(t, ViewStateList, m.State())

		m, cmd = update(t, m, key(keyBackspace))
		m = settle(t, m, cmd)
		assert.Equal(t, "", m.Path())
		assert.Equal(t, []string{"02", "01", "04"}, folderNames(m))

		m, cmd = update(t, m, key(keyBackspace))
		assert.Nil(t, cmd, "empty back-stack is a no-op")
		assert.Equal(t, ViewStateList, m.State())
	})

	t.Run("stale load is discarded", func(t *testing.T) {
		m, stale := update(t, m, key(keyEnter)) // into 02/
		m, fresh := update(t, m, key("r"))      // back to root before 02/ arrives

		for _, msg := range run(t, stale) {
			m, _ = update(t, m, msg)
		}
		assert.Equal(t, ViewStateLoading, m.State(), "stale result must not apply")

		m = settle(t, m, fresh)
		assert.Equal(t, ViewStateList, m.State())
		assert.Equal(t, []string{"02", "01", "04"}, folderNames(m))
	})

	t.Run("quit", func(t *testing.T) {
		m, cmd := update(t, m, key("q"))
		assert.Equal(t, ViewStateQuitting, m.State())
		assert.NotNil(t, cmd)
		assert.Empty(t, m.View())
	})
}

func TestBrowser_DrillStartPath(t *testing.T) {
	m := NewBrowserModel(context.Background(), newTestLoader(), Options{Mode: ModeDrill, Start: "01"})
	m = settle(t, m, m.Init())
	assert.Equal(t, []string{"0101", "0102"}, folderNames(m))

	m, cmd := update(t, m, key(keyBackspace))
	m = settle(t, m, cmd)
	assert.Equal(t, "", m.Path(), "start path seeds the back-stack with its ancestors")
}

func TestBrowser_TreeMode(t *testing.T) {
	m := NewBrowserModel(context.Background(), newTestLoader(), Options{Mode: ModeTree})
	m = settle(t, m, m.Init())
	require.Equal(t, ViewStateList, m.State())
	assert.Equal(t, []string{"02", "01", "04"}, folderNames(m))

	m, cmd := update(t, m, key(keyEnter))
	assert.NotEmpty(t, m.status)
	m = settle(t, m, cmd)
	assert.Equal(t, []string{"02", "0201", "01", "04"}, folderNames(m))
	assert.Contains(t, m.View(), IconExpanded)
	assert.Contains(t, m.View(), "└── ")

	m, cmd = update(t, m, key(keyEnter))
	assert.Nil(t, cmd, "collapse is synchronous")
	assert.Equal(t, []string{"02", "01", "04"}, folderNames(m))

	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("down"))
	assert.Equal(t, "04/", m.Path())
	m, _ = update(t, m, key(keyEnter))
	assert.Equal(t, ViewStateDetail, m.State())

	m, _ = update(t, m, key(keyEsc))
	assert.Equal(t, ViewStateList, m.State())
}

func TestBrowser_TreeStartAndParent(t *testing.T) {
	m := NewBrowserModel(context.Background(), newTestLoader(), Options{Mode: ModeTree, Start: "01/0102"})
	m = settle(t, m, m.Init())
	assert.Equal(t, "01/0102/", m.Path())

	m, _ = update(t, m, key(keyLeft))
	assert.Equal(t, "01/", m.Path(), "left on a collapsed node jumps to its parent")

	m, _ = update(t, m, key(keyLeft))
	assert.Equal(t, []string{"02", "01", "04"}, folderNames(m), "left on an expanded node collapses it")
}

func TestBrowser_StaleExpandAfterReset(t *testing.T) {
	loader := newTestLoader()
	m := NewBrowserModel(context.Background(), loader, Options{Mode: ModeTree})
	cmd := m.initialLoad()
	loader.Reset()

	m = settle(t, m, cmd)
	assert.Equal(t, ViewStateLoading, m.State())
}

func TestBrowser_WindowResize(t *testing.T) {
	m := NewBrowserModel(context.Background(), newTestLoader(), Options{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 12})
	assert.Equal(t, 60, m.rows.width)
	assert.Equal(t, 7, m.list.Height())
}

func TestParseMode(t *testing.T) {
	mode, ok := ParseMode("tree")
	assert.True(t, ok)
	assert.Equal(t, ModeTree, mode)
	_, ok = ParseMode("pie")
	assert.False(t, ok)
}
