package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/stageboard/internal/datasource"
	"github.com/vanderheijden86/stageboard/internal/notifier"
	"github.com/vanderheijden86/stageboard/pkg/board"
	"github.com/vanderheijden86/stageboard/pkg/snapshot"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

var str = snapshot.Str

func sampleRows() []snapshot.Row {
	return []snapshot.Row{
		{Labels: [4]snapshot.Cell{str("Sourced"), nil, nil, nil}, Metric: snapshot.Num(12)},
		{Labels: [4]snapshot.Cell{nil, str("Onboard#1"), nil, nil}, Metric: snapshot.Num(7)},
		{Labels: [4]snapshot.Cell{nil, nil, str("Ship"), nil}, Metric: snapshot.Num(3)},
		{Labels: [4]snapshot.Cell{str("Screened"), nil, nil, nil}, Metric: snapshot.Num(6)},
		{Labels: [4]snapshot.Cell{str("Sourced"), str("Onboard#1"), str("All"), str("All")}, Metric: snapshot.Num(0)},
	}
}

func writeSnapshot(t *testing.T, path string, rows []snapshot.Row) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, snapshot.Encode(f, snapshot.FromRows(rows)))
}

func setupServer(t *testing.T) (*Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stages.json")
	writeSnapshot(t, path, sampleRows())

	opts := board.DefaultOptions()
	opts.DrawConnectors = true
	s := New(Config{
		Source:   path,
		Viewport: board.Size{Width: 1200, Height: 800},
		Render:   opts,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, s.Reload())
	return s, path
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// Page and board
// =============================================================================

func TestPage(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(s, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<title>Stage Board</title>",
		"data-init",
		"/updates",
		`id="board"`,
		`id="Sourced"`,
		`id="Onboard1"`,
		"4 tiles",
	} {
		assert.Contains(t, body, want, "response should contain %q", want)
	}
}

func TestBoardSVG(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(s, http.MethodGet, "/board", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `class="SVGcontainer grey inactive"`)
	assert.Contains(t, body, `data-on:click="@post('/tiles/Ship/click')"`)
	assert.Contains(t, body, `data-on:mouseleave="@post('/tiles/Ship/leave')"`)
	assert.Contains(t, body, `id="line1"`, "connector should be drawn")
}

// =============================================================================
// Pointer events
// =============================================================================

func TestPointer_ClickActivates(t *testing.T) {
	s, _ := setupServer(t)
	before := s.Notifier().Rev()

	rec := do(s, http.MethodPost, "/tiles/Onboard1/click", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: datastar-patch-elements")
	assert.Contains(t, rec.Body.String(), "active: Onboard1")
	assert.Equal(t, "Onboard1", s.Session().Status().Active)
	assert.Equal(t, before+1, s.Notifier().Rev())

	// The active block loses its leave binding; the others keep theirs.
	svg := do(s, http.MethodGet, "/board", "").Body.String()
	assert.NotContains(t, svg, "/tiles/Onboard1/leave")
	assert.Contains(t, svg, "/tiles/Sourced/leave")
}

func TestPointer_SecondClickMovesActive(t *testing.T) {
	s, _ := setupServer(t)

	do(s, http.MethodPost, "/tiles/Sourced/click", "")
	rec := do(s, http.MethodPost, "/tiles/Ship/click", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ship", s.Session().Status().Active)
}

func TestPointer_NoChanges(t *testing.T) {
	s, _ := setupServer(t)
	do(s, http.MethodPost, "/tiles/Sourced/click", "")
	before := s.Notifier().Rev()

	rec := do(s, http.MethodPost, "/tiles/Sourced/enter", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, before, s.Notifier().Rev(), "no-op events are not broadcast")
}

func TestPointer_NotFound(t *testing.T) {
	s, _ := setupServer(t)

	tests := []struct {
		name   string
		target string
	}{
		{"unknown tile", "/tiles/Nope/click"},
		{"unknown event", "/tiles/Sourced/wiggle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

// =============================================================================
// Resize and reload
// =============================================================================

func TestResize(t *testing.T) {
	s, _ := setupServer(t)
	require.False(t, s.Session().Status().Overflow)

	rec := do(s, http.MethodPost, "/resize", `{"width":800,"height":200}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, s.Session().Status().Overflow)
	assert.Contains(t, rec.Body.String(), `class="scroll"`)

	rec = do(s, http.MethodPost, "/resize", `{"width":0,"height":200}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReload_ResetsInteraction(t *testing.T) {
	s, path := setupServer(t)
	do(s, http.MethodPost, "/tiles/Sourced/click", "")

	rows := sampleRows()
	rows[0].Metric = snapshot.Num(20)
	writeSnapshot(t, path, rows[:3])
	require.NoError(t, s.Reload())

	st := s.Session().Status()
	assert.Empty(t, st.Active)
	assert.Equal(t, 3, st.Tiles)
	assert.Equal(t, 20.0, s.Session().Tiles()[0].Value)
}

func TestReload_KeepsBoardOnError(t *testing.T) {
	s, path := setupServer(t)
	require.NoError(t, os.Remove(path))

	assert.Error(t, s.Reload())
	assert.Len(t, s.Session().Tiles(), 4)
}

func TestSession_UpdateReportsDiff(t *testing.T) {
	s, path := setupServer(t)
	rows := sampleRows()
	snap := snapshot.FromRows(rows[1:])

	diff := s.Session().Update(snap, datasource.DataSource{Path: "memory"})

	assert.Equal(t, []string{"Sourced"}, diff.MissingInB)
	assert.Equal(t, path, diff.SourceA)
	assert.Equal(t, "memory", s.Session().Status().Source)
}

// =============================================================================
// Updates SSE
// =============================================================================

func TestUpdates_SendsPatchOnPublish(t *testing.T) {
	s, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/updates", nil)
	ctx, cancel := context.WithTimeout(req.Context(), 300*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		s.handleUpdates(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Notifier().Len() == 1 }, 200*time.Millisecond, 5*time.Millisecond)
	_, err := s.Session().Pointer("Ship", board.EventClick)
	require.NoError(t, err)
	s.Notifier().Publish(notifier.ReasonInteraction)

	<-done

	body := rec.Body.String()
	assert.GreaterOrEqual(t, strings.Count(body, "event:"), 1, "should have at least 1 SSE event")
	assert.Contains(t, body, "active: Ship")
}

func TestUpdates_NoInitialState(t *testing.T) {
	s, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/updates", nil)
	ctx, cancel := context.WithTimeout(req.Context(), 50*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleUpdates(rec, req)

	assert.Equal(t, 0, strings.Count(rec.Body.String(), "event:"))
}
