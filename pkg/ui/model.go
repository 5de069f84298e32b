package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/stageboard/internal/datasource"
	"github.com/vanderheijden86/stageboard/pkg/board"
	"github.com/vanderheijden86/stageboard/pkg/debug"
	"github.com/vanderheijden86/stageboard/pkg/model"
	"github.com/vanderheijden86/stageboard/pkg/snapshot"
	"github.com/vanderheijden86/stageboard/pkg/viewmodel"
	"github.com/vanderheijden86/stageboard/pkg/watcher"
)

// LoadFunc resolves a source path to a snapshot.
type LoadFunc func(path string) (*snapshot.Snapshot, datasource.DataSource, error)

// Options configure the terminal host.
type Options struct {
	// Source is a snapshot file or a directory to pick the freshest one from.
	Source string
	Title  string
	Build  viewmodel.Options
	Render board.Options
	// Watch reloads the board whenever the source changes on disk.
	Watch bool
	// Load defaults to datasource.Load.
	Load LoadFunc
}

// SnapshotLoadedMsg carries the result of loading the source.
type SnapshotLoadedMsg struct {
	Snap   *snapshot.Snapshot
	Source datasource.DataSource
	Err    error
}

// FileChangedMsg is sent when the snapshot source changes on disk
type FileChangedMsg struct {
	Path string
}

// statusTimeoutMsg clears a status message if it is still the current one.
type statusTimeoutMsg struct {
	seq int
}

// ReadyTimeoutMsg is sent after a short delay to ensure the UI becomes ready
// even if the terminal doesn't send WindowSizeMsg promptly.
type ReadyTimeoutMsg struct{}

// ReadyTimeoutCmd returns a command that sends ReadyTimeoutMsg after 100ms.
func ReadyTimeoutCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return ReadyTimeoutMsg{}
	})
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		return FileChangedMsg{Path: <-w.Changed()}
	}
}

// LoadCmd loads the source off the event loop.
func LoadCmd(load LoadFunc, path string) tea.Cmd {
	return func() tea.Msg {
		snap, src, err := load(path)
		return SnapshotLoadedMsg{Snap: snap, Source: src, Err: err}
	}
}

// panel is the overlay shown instead of the board.
type panel int

const (
	panelNone panel = iota
	panelHelp
	panelReport
)

// Model is the main Bubble Tea model for the terminal board.
type Model struct {
	opts Options

	// Board
	container *board.Container
	vm        viewmodel.ViewModel
	result    board.Result
	source    datasource.DataSource
	watcher   *watcher.Watcher

	// Pointer and keyboard targets, by block id.
	focused string
	hovered string

	// UI Components
	theme    Theme
	keys     keyMap
	help     help.Model
	viewport viewport.Model
	overlay  viewport.Model
	panel    panel

	width  int
	height int
	ready  bool

	statusMsg     string
	statusIsError bool
	statusSeq     int
}

// NewModel creates the terminal host. With Watch set, the source watcher is
// started immediately; call Stop when the program exits.
func NewModel(opts Options) Model {
	if opts.Load == nil {
		opts.Load = datasource.Load
	}
	if opts.Title == "" {
		opts.Title = "Stage Board"
	}

	m := Model{
		opts:      opts,
		container: board.NewContainer(board.DefaultViewport),
		theme:     DefaultTheme(lipgloss.DefaultRenderer()),
		keys:      defaultKeyMap(),
		help:      help.New(),
		viewport:  viewport.New(80, 20),
		overlay:   viewport.New(80, 20),
		width:     80,
		height:    24,
	}
	m.result = board.Render(nil, m.container, opts.Render)

	if opts.Watch {
		path := opts.Source
		if path == "" {
			path = "."
		}
		w, err := watcher.New(path,
			watcher.WithDebounceDuration(watcher.DefaultDebounceDuration),
			watcher.WithExtensions(datasource.Extensions...),
		)
		if err == nil {
			err = w.Start(context.Background())
		}
		if err != nil {
			m.setStatus(fmt.Sprintf("Live reload disabled: %v", err), true)
		} else {
			m.watcher = w
		}
	}
	return m
}

// Stop releases the watcher.
func (m Model) Stop() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{LoadCmd(m.opts.Load, m.opts.Source), ReadyTimeoutCmd()}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case ReadyTimeoutMsg:
		if !m.ready {
			m.resize(m.width, m.height)
		}
		return m, nil

	case SnapshotLoadedMsg:
		return m, m.applySnapshot(msg)

	case FileChangedMsg:
		debug.Log("ui: source changed: %s", msg.Path)
		cmds = append(cmds, LoadCmd(m.opts.Load, m.opts.Source))
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case statusTimeoutMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
			m.statusIsError = false
		}
		return m, nil

	case tea.MouseMsg:
		if m.panel != panelNone {
			var cmd tea.Cmd
			m.overlay, cmd = m.overlay.Update(msg)
			return m, cmd
		}
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		if m.panel != panelNone {
			return m.handlePanelKey(msg)
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// bodyTop is the screen row where the board content starts.
const bodyTop = 1

func (m *Model) bodyLines() int {
	h := m.height - 2 // title bar and footer
	if h < HeaderLines+1 {
		h = HeaderLines + 1
	}
	return h
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.ready = true
	body := m.bodyLines()
	m.viewport.Width, m.viewport.Height = width, body
	m.overlay.Width, m.overlay.Height = width, body
	m.help.Width = width
	m.container.Relayout(boardViewport(width, body))
	m.result.Overflow = m.container.Scroll
	m.refresh()
}

// refresh redraws the board into the scrolling viewport.
func (m *Model) refresh() {
	m.viewport.SetContent(renderBoard(m.container, m.theme, m.width, m.focused))
}

func (m *Model) applySnapshot(msg SnapshotLoadedMsg) tea.Cmd {
	if msg.Err != nil {
		if errors.Is(msg.Err, datasource.ErrNoSources) {
			return m.setStatus("No snapshot source found", true)
		}
		return m.setStatus(fmt.Sprintf("Load failed: %v", msg.Err), true)
	}

	vm := viewmodel.Build(msg.Snap, m.opts.Build)
	diff := datasource.DiffTiles(m.vm.Tiles, vm.Tiles, m.source.Path, msg.Source.Path)

	opts := m.opts.Render
	opts.Connectors = viewmodel.ConnectorPairs(vm.Connections)
	m.result = board.Render(vm.Tiles, m.container, opts)
	m.vm = vm
	m.source = msg.Source
	m.focused, m.hovered = "", ""
	if m.ready {
		m.container.Relayout(boardViewport(m.width, m.bodyLines()))
		m.result.Overflow = m.container.Scroll
	}
	m.refresh()

	status := fmt.Sprintf("Loaded %d tiles", len(vm.Tiles))
	if diff.HasInconsistencies() && diff.SourceA != "" {
		status = fmt.Sprintf("Reloaded: %d new, %d removed, %d changed",
			len(diff.MissingInA), len(diff.MissingInB), len(diff.ValueMismatch)+len(diff.ColumnMismatch))
	}
	if n := len(m.result.Skipped); n > 0 {
		status += fmt.Sprintf(" (%d skipped)", n)
	}
	return m.setStatus(status, false)
}

func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusMsg = msg
	m.statusIsError = isErr
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return statusTimeoutMsg{seq: seq}
	})
}

// pointer dispatches ev to the block with the given id and redraws when
// anything changed.
func (m *Model) pointer(id string, ev board.Event) tea.Cmd {
	if id == "" {
		return nil
	}
	changes, err := board.Dispatch(m.container.Blocks(), id, ev)
	if err != nil {
		return m.setStatus(err.Error(), true)
	}
	if len(changes) > 0 {
		m.refresh()
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	var target *board.Block
	if msg.Y >= bodyTop && msg.Y < bodyTop+m.viewport.Height {
		target = blockAt(m.container, m.width, msg.X, msg.Y-bodyTop+m.viewport.YOffset)
	}
	id := ""
	if target != nil {
		id = target.ID
	}

	switch {
	case msg.Action == tea.MouseActionMotion && msg.Button == tea.MouseButtonNone:
		if id == m.hovered {
			return nil
		}
		var cmds []tea.Cmd
		cmds = append(cmds, m.pointer(m.hovered, board.EventLeave))
		cmds = append(cmds, m.pointer(id, board.EventEnter))
		m.hovered = id
		return tea.Batch(cmds...)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if id == "" {
			return nil
		}
		m.focused = id
		return m.pointer(id, board.EventClick)
	}
	return nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		return m, m.moveFocus(0, -1)
	case key.Matches(msg, m.keys.Down):
		return m, m.moveFocus(0, 1)
	case key.Matches(msg, m.keys.Left):
		return m, m.moveFocus(-1, 0)
	case key.Matches(msg, m.keys.Right):
		return m, m.moveFocus(1, 0)

	case key.Matches(msg, m.keys.Select):
		if m.focused == "" {
			return m, m.moveFocus(0, 0)
		}
		return m, m.pointer(m.focused, board.EventClick)

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyID()

	case key.Matches(msg, m.keys.Reload):
		return m, tea.Batch(LoadCmd(m.opts.Load, m.opts.Source), m.setStatus("Reloading…", false))

	case key.Matches(msg, m.keys.Help):
		m.openPanel(panelHelp, renderMarkdown(helpMarkdown(m.keys), m.width-4))
		return m, nil

	case key.Matches(msg, m.keys.Report):
		m.openPanel(panelReport, renderMarkdown(reportMarkdown(m.vm, m.opts.Title), m.width-4))
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Close, m.keys.Help, m.keys.Report):
		m.panel = panelNone
		return m, nil
	}
	var cmd tea.Cmd
	m.overlay, cmd = m.overlay.Update(msg)
	return m, cmd
}

func (m *Model) openPanel(p panel, content string) {
	m.panel = p
	m.overlay.SetContent(content)
	m.overlay.GotoTop()
}

// moveFocus moves keyboard focus by dx stages and dy rows. Focus is the
// keyboard's pointer: leaving a block and entering the next fire the same
// handlers the mouse does.
func (m *Model) moveFocus(dx, dy int) tea.Cmd {
	col, row := m.focusPosition()
	if col < 0 {
		// Nothing focused yet: start at the first block.
		for _, cc := range m.container.Columns {
			if len(cc.Blocks) > 0 {
				return m.setFocus(cc.Blocks[0].ID)
			}
		}
		return nil
	}

	if dx != 0 {
		for next := col + dx; next >= 0 && next < model.ColumnCount; next += dx {
			blocks := m.container.Columns[next].Blocks
			if len(blocks) == 0 {
				continue
			}
			r := row
			if r >= len(blocks) {
				r = len(blocks) - 1
			}
			return m.setFocus(blocks[r].ID)
		}
		return nil
	}

	blocks := m.container.Columns[col].Blocks
	r := row + dy
	if r < 0 || r >= len(blocks) {
		return nil
	}
	return m.setFocus(blocks[r].ID)
}

func (m *Model) focusPosition() (int, int) {
	if m.focused == "" {
		return -1, -1
	}
	for i, cc := range m.container.Columns {
		for j, b := range cc.Blocks {
			if b.ID == m.focused {
				return i, j
			}
		}
	}
	return -1, -1
}

func (m *Model) setFocus(id string) tea.Cmd {
	if id == m.focused {
		return nil
	}
	var cmds []tea.Cmd
	cmds = append(cmds, m.pointer(m.focused, board.EventLeave))
	m.focused = id
	cmds = append(cmds, m.pointer(id, board.EventEnter))
	m.refresh()
	m.scrollToFocus()
	return tea.Batch(cmds...)
}

// scrollToFocus keeps the focused card inside the viewport.
func (m *Model) scrollToFocus() {
	_, row := m.focusPosition()
	if row < 0 {
		return
	}
	top := HeaderLines + row*CardLines
	bottom := top + CardLines
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(bottom - m.viewport.Height)
	}
}

// copyID copies the focused tile's id, or the active one's.
func (m *Model) copyID() tea.Cmd {
	id := m.focused
	if id == "" {
		if b := board.ActiveBlock(m.container.Blocks()); b != nil {
			id = b.ID
		}
	}
	if id == "" {
		return m.setStatus("No tile selected", true)
	}
	if err := clipboard.WriteAll(id); err != nil {
		return m.setStatus(fmt.Sprintf("Clipboard error: %v", err), true)
	}
	return m.setStatus(fmt.Sprintf("Copied %s to clipboard", id), false)
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	title := m.theme.Header.Render(m.opts.Title)
	info := ""
	if m.source.Path != "" {
		info = fmt.Sprintf(" %s · %d tiles", m.source.Path, len(m.vm.Tiles))
	}
	if b := board.ActiveBlock(m.container.Blocks()); b != nil {
		info += " · active: " + b.ID
	}
	if m.container.Scroll {
		info += " · scroll ↓"
	}
	top := title + m.theme.MutedText.Render(truncateRunesHelper(info, m.width-lipgloss.Width(title), "…"))

	body := m.viewport.View()
	if m.panel != panelNone {
		body = m.overlay.View()
	}

	footer := m.help.View(m.keys)
	if m.statusMsg != "" {
		style := m.theme.Status
		if m.statusIsError {
			style = style.Foreground(ColorDanger)
		}
		footer = style.Render(truncateRunesHelper(m.statusMsg, m.width, "…"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, body, footer)
}
