package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/budgettree/internal/fetch"
	"github.com/rshade/budgettree/internal/logging"
	"github.com/rshade/budgettree/internal/nav"
	"github.com/rshade/budgettree/internal/tree"
	listview "github.com/rshade/budgettree/internal/tui/list"
)

// FolderLoadedMsg carries the entries of a drill-mode folder.
type FolderLoadedMsg struct {
	Generation uint64
	Path       string
	Nodes      []*tree.Node
	Crumbs     []tree.Crumb
}

// NodeExpandedMsg reports a finished tree-mode expand.
type NodeExpandedMsg struct {
	Generation uint64
	Node       *tree.Node
	Err        error
}

// Options configures a BrowserModel.
type Options struct {
	Mode  Mode
	Start string
}

// item is one list row.
type item struct {
	node   *tree.Node
	prefix string
	share  float64
}

// BrowserModel is the Bubble Tea model of the terminal browser.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type BrowserModel struct {
	ctx    context.Context
	loader *tree.Loader
	nav    *nav.Navigator
	mode   Mode
	start  string

	state   ViewState
	list    *listview.VirtualListModel[item]
	rows    *rowRenderer
	crumbs  []tree.Crumb
	detail  *tree.Node
	loading *LoadingState
	status  string
	err     error

	width  int
	height int
}

// NewBrowserModel creates a browser over loader. The first load starts in Init.
func NewBrowserModel(ctx context.Context, loader *tree.Loader, opts Options) BrowserModel {
	if opts.Mode == "" {
		opts.Mode = ModeDrill
	}
	navigator := nav.NewAt("")
	if start := fetch.NormalizeDir(opts.Start); start != "" && opts.Mode == ModeDrill {
		navigator.JumpTo(start)
	}

	m := BrowserModel{
		ctx:     ctx,
		loader:  loader,
		nav:     navigator,
		mode:    opts.Mode,
		start:   fetch.NormalizeDir(opts.Start),
		state:   ViewStateLoading,
		loading: NewLoadingState(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.rows = &rowRenderer{mode: m.mode, width: m.width}
	m.list = listview.NewVirtualListModel[item](nil, m.listHeight(), m.width, m.rows.render)
	return m
}

// Init starts the spinner and the first load.
func (m BrowserModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), m.initialLoad())
}

func (m BrowserModel) initialLoad() tea.Cmd {
	if m.mode == ModeTree {
		return m.expandPathCmd(m.start)
	}
	return m.loadFolderCmd()
}

// Update handles messages (Bubble Tea interface).
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.rows.width = msg.Width
		m.list.SetSize(m.width, m.listHeight())
		return m, nil
	case spinner.TickMsg:
		if m.state != ViewStateLoading && m.status == "" {
			return m, nil
		}
		return m, m.loading.Update(msg)
	case FolderLoadedMsg:
		return m.handleFolderLoaded(msg)
	case NodeExpandedMsg:
		return m.handleNodeExpanded(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m BrowserModel) handleFolderLoaded(msg FolderLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Generation != m.nav.Generation() {
		logging.FromContext(m.ctx).Debug().
			Str("component", "tui").
			Str("path", msg.Path).
			Msg("discarding stale folder load")
		return m, nil
	}

	var total float64
	for _, n := range msg.Nodes {
		total += n.Value
	}
	items := make([]item, 0, len(msg.Nodes))
	for _, n := range msg.Nodes {
		it := item{node: n}
		if total != 0 {
			it.share = n.Value / total * 100
		}
		items = append(items, it)
	}

	m.crumbs = msg.Crumbs
	m.list.SetItems(items)
	m.list.SetSelected(0)
	m.state = ViewStateList
	return m, nil
}

func (m BrowserModel) handleNodeExpanded(msg NodeExpandedMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	if msg.Generation != m.loader.Generation() || errors.Is(msg.Err, tree.ErrStale) {
		return m, nil
	}
	if msg.Err != nil && !errors.Is(msg.Err, tree.ErrNotFound) {
		m.err = msg.Err
		m.state = ViewStateError
		return m, nil
	}

	m.refreshTreeRows()
	if msg.Node != nil {
		m.selectNode(msg.Node)
	}
	m.state = ViewStateList
	return m, nil
}

func (m BrowserModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == keyCtrlC || (key == keyQuit && m.state != ViewStateLoading) {
		m.state = ViewStateQuitting
		return m, tea.Quit
	}

	switch m.state {
	case ViewStateDetail, ViewStateError:
		switch key {
		case keyEsc, keyEnter, keyBackspace, keyLeft:
			m.state = ViewStateList
			m.detail = nil
			m.err = nil
		}
		return m, nil
	case ViewStateList:
		if m.mode == ModeTree {
			return m.handleTreeKey(msg)
		}
		return m.handleDrillKey(msg)
	case ViewStateLoading, ViewStateQuitting:
		return m, nil
	}
	return m, nil
}

func (m BrowserModel) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.selectedNode()
	switch msg.String() {
	case keyEnter, keySpace, keyRight:
		if sel == nil || !sel.HasChildren {
			return m.showDetail(sel)
		}
		if sel.Expanded() {
			m.loader.Collapse(sel)
			m.refreshTreeRows()
			return m, nil
		}
		m.status = "Loading " + sel.Name + "..."
		return m, tea.Batch(m.loading.Init(), m.expandCmd(sel))
	case keyLeft:
		if sel == nil {
			return m, nil
		}
		if sel.Expanded() {
			m.loader.Collapse(sel)
			m.refreshTreeRows()
			return m, nil
		}
		if parent, ok := tree.FindByPath(m.loader.Root(), fetch.ParentDir(sel.FullPath)); ok && !parent.IsRoot() {
			m.selectNode(parent)
		}
		return m, nil
	case "d", "i":
		return m.showDetail(sel)
	}

	m.list.Update(msg)
	return m, nil
}

func (m BrowserModel) handleDrillKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.selectedNode()
	switch msg.String() {
	case keyEnter, keyRight:
		if sel == nil {
			return m, nil
		}
		if !sel.HasChildren {
			return m.showDetail(sel)
		}
		m.nav.GoTo(sel.FullPath)
		return m.startFolderLoad()
	case keyBackspace, keyLeft, "b":
		if !m.nav.GoBack() {
			return m, nil
		}
		return m.startFolderLoad()
	case "r":
		m.nav.Reset()
		return m.startFolderLoad()
	case "d", "i":
		return m.showDetail(sel)
	}

	m.list.Update(msg)
	return m, nil
}

func (m BrowserModel) startFolderLoad() (tea.Model, tea.Cmd) {
	m.state = ViewStateLoading
	return m, tea.Batch(m.loading.Init(), m.loadFolderCmd())
}

func (m BrowserModel) showDetail(n *tree.Node) (tea.Model, tea.Cmd) {
	if n == nil {
		return m, nil
	}
	m.detail = n
	m.state = ViewStateDetail
	return m, nil
}

func (m BrowserModel) loadFolderCmd() tea.Cmd {
	gen := m.nav.Generation()
	path := m.nav.Current()
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		return FolderLoadedMsg{
			Generation: gen,
			Path:       path,
			Nodes:      loader.Entries(ctx, path),
			Crumbs:     loader.PathTitles(ctx, path),
		}
	}
}

func (m BrowserModel) expandCmd(n *tree.Node) tea.Cmd {
	gen := m.loader.Generation()
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		return NodeExpandedMsg{Generation: gen, Node: n, Err: loader.Expand(ctx, n)}
	}
}

func (m BrowserModel) expandPathCmd(path string) tea.Cmd {
	gen := m.loader.Generation()
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		n, err := loader.ExpandPath(ctx, path)
		if n != nil && n.IsRoot() {
			n = nil
		}
		return NodeExpandedMsg{Generation: gen, Node: n, Err: err}
	}
}

func (m BrowserModel) refreshTreeRows() {
	rows := tree.Visible(m.loader.Root())
	items := make([]item, 0, len(rows))
	for _, r := range rows {
		items = append(items, item{node: r.Node, prefix: r.Prefix})
	}
	m.list.SetItems(items)
}

func (m BrowserModel) selectNode(n *tree.Node) {
	for i, it := range m.list.Items() {
		if it.node == n {
			m.list.SetSelected(i)
			return
		}
	}
}

func (m BrowserModel) selectedNode() *tree.Node {
	if it := m.list.SelectedItem(); it != nil {
		return it.node
	}
	return nil
}

func (m BrowserModel) listHeight() int {
	return max(m.height-chromeLines, 1)
}

// State returns the current view state.
func (m BrowserModel) State() ViewState {
	return m.state
}

// Path returns the drill-mode folder, or the selected node's path in tree mode.
func (m BrowserModel) Path() string {
	if m.mode == ModeTree {
		if n := m.selectedNode(); n != nil {
			return n.FullPath
		}
		return ""
	}
	return m.nav.Current()
}

// Err returns the error shown in the error state.
func (m BrowserModel) Err() error {
	return m.err
}

// String describes the model for debug logs.
func (m BrowserModel) String() string {
	return fmt.Sprintf("browser(mode=%s state=%d path=%q)", m.mode, m.state, m.Path())
}
