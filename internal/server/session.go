package server

import (
	"io"
	"net/url"
	"sync"

	"github.com/vanderheijden86/stageboard/internal/datasource"
	"github.com/vanderheijden86/stageboard/pkg/board"
	"github.com/vanderheijden86/stageboard/pkg/export"
	"github.com/vanderheijden86/stageboard/pkg/model"
	"github.com/vanderheijden86/stageboard/pkg/snapshot"
	"github.com/vanderheijden86/stageboard/pkg/viewmodel"
)

// Session owns one rendered board. Updates and pointer events are serialized
// through its mutex.
type Session struct {
	mu        sync.Mutex
	container *board.Container
	vm        viewmodel.ViewModel
	source    datasource.DataSource
	result    board.Result

	buildOpts  viewmodel.Options
	renderOpts board.Options
}

// NewSession creates an empty board at the given viewport.
func NewSession(viewport board.Size, buildOpts viewmodel.Options, renderOpts board.Options) *Session {
	s := &Session{
		container:  board.NewContainer(viewport),
		buildOpts:  buildOpts,
		renderOpts: renderOpts,
	}
	s.result = board.Render(nil, s.container, renderOpts)
	return s
}

// Update rebuilds the board from snap and reports how its tiles changed.
// Interaction state does not survive an update.
func (s *Session) Update(snap *snapshot.Snapshot, src datasource.DataSource) datasource.SourceDiff {
	s.mu.Lock()
	defer s.mu.Unlock()

	vm := viewmodel.Build(snap, s.buildOpts)
	diff := datasource.DiffTiles(s.vm.Tiles, vm.Tiles, s.source.Path, src.Path)

	opts := s.renderOpts
	opts.Connectors = viewmodel.ConnectorPairs(vm.Connections)
	s.result = board.Render(vm.Tiles, s.container, opts)
	s.vm = vm
	s.source = src
	return diff
}

// Pointer dispatches a pointer event to the block with the given id.
func (s *Session) Pointer(id string, ev board.Event) ([]board.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return board.Dispatch(s.container.Blocks(), id, ev)
}

// Resize lays the board out for a new viewport.
func (s *Session) Resize(size board.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.container.Relayout(size)
}

// WriteSVG writes the current board. Each block carries datastar pointer
// bindings; the leave binding is only present while the block has it.
func (s *Session) WriteSVG(w io.Writer, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return export.WriteBoardSVG(w, s.container, export.SVGOptions{
		Title:      title,
		BlockAttrs: pointerAttrs,
	})
}

func pointerAttrs(b *board.Block) []string {
	attrs := []string{
		datastarAction("click", b.ID, board.EventClick),
		datastarAction("mouseenter", b.ID, board.EventEnter),
	}
	if b.LeaveBound() {
		attrs = append(attrs, datastarAction("mouseleave", b.ID, board.EventLeave))
	}
	return attrs
}

func datastarAction(domEvent, id string, ev board.Event) string {
	return `data-on:` + domEvent + `="@post('/tiles/` + url.PathEscape(id) + `/` + ev.String() + `')"`
}

// Status is a summary of the board for the page header.
type Status struct {
	Source   string
	Tiles    int
	Active   string
	Overflow bool
	Skipped  int
	Dropped  int
}

// Status reports the current board summary.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Source:   s.source.Path,
		Tiles:    len(s.vm.Tiles),
		Overflow: s.container.Scroll,
		Skipped:  len(s.result.Skipped),
		Dropped:  len(s.vm.Dropped),
	}
	if b := board.ActiveBlock(s.container.Blocks()); b != nil {
		st.Active = b.ID
	}
	return st
}

// Tiles returns a copy of the current tiles.
func (s *Session) Tiles() []model.Tile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Tile(nil), s.vm.Tiles...)
}
