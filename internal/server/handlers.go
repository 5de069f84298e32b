package server

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/vanderheijden86/stageboard/internal/notifier"
	"github.com/vanderheijden86/stageboard/pkg/board"
)

// datastarScript is the client bundle the page loads.
const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script type="module" src="{{.Script}}"></script>
<style>
body { margin: 0; font-family: sans-serif; background: #f9fafb; }
#status { padding: 6px 12px; font-size: 13px; color: #4b5563; }
#board.scroll { overflow-y: auto; height: calc(100vh - 32px); }
</style>
</head>
<body data-signals="{width: window.innerWidth, height: window.innerHeight}"
      data-on:resize__window__debounce.250ms="$width = window.innerWidth; $height = window.innerHeight; @post('/resize')"
      data-init="@get('/updates')">
{{template "board" .Board}}
</body>
</html>
{{define "board"}}<div id="board"{{if .Status.Overflow}} class="scroll"{{end}}>
<div id="status">{{with .Status.Source}}{{.}} &middot; {{end}}{{.Status.Tiles}} tiles{{with .Status.Active}} &middot; active: {{.}}{{end}}</div>
{{.SVG}}
</div>{{end}}`))

type boardView struct {
	Status Status
	SVG    template.HTML
}

type pageView struct {
	Title  string
	Script string
	Board  boardView
}

func (s *Server) routes(r chi.Router) {
	r.Get("/", s.handlePage)
	r.Get("/board", s.handleBoardSVG)
	r.Get("/updates", s.handleUpdates)
	r.Post("/tiles/{id}/{event}", s.handlePointer)
	r.Post("/resize", s.handleResize)
}

// renderBoard renders the board fragment that SSE patches replace by id.
func (s *Server) renderBoard() (string, error) {
	var svgBuf bytes.Buffer
	if err := s.session.WriteSVG(&svgBuf, s.cfg.Title); err != nil {
		return "", err
	}
	var out bytes.Buffer
	err := pageTmpl.ExecuteTemplate(&out, "board", boardView{
		Status: s.session.Status(),
		SVG:    template.HTML(svgBuf.String()),
	})
	return out.String(), err
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var svgBuf bytes.Buffer
	if err := s.session.WriteSVG(&svgBuf, s.cfg.Title); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTmpl.Execute(w, pageView{
		Title:  s.cfg.Title,
		Script: datastarScript,
		Board: boardView{
			Status: s.session.Status(),
			SVG:    template.HTML(svgBuf.String()),
		},
	})
	if err != nil {
		s.logger.Error("render page", "error", err)
	}
}

func (s *Server) handleBoardSVG(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := s.session.WriteSVG(&buf, s.cfg.Title); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(buf.Bytes())
}

// handleUpdates is the long-lived SSE endpoint. The page is already
// rendered, so nothing is sent until the board changes.
func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := s.patchBoard(sse); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

func (s *Server) patchBoard(sse *datastar.ServerSentEventGenerator) error {
	html, err := s.renderBoard()
	if err != nil {
		return err
	}
	return sse.PatchElements(html)
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ev, err := board.ParseEvent(chi.URLParam(r, "event"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	changes, err := s.session.Pointer(id, ev)
	if errors.Is(err, board.ErrUnknownTile) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(changes) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.notifier.Publish(notifier.ReasonInteraction)
	sse := datastar.NewSSE(w, r)
	if err := s.patchBoard(sse); err != nil {
		_ = sse.ConsoleError(err)
	}
}

type resizeSignals struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var sig resizeSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if sig.Width <= 0 || sig.Height <= 0 {
		http.Error(w, "viewport must be positive", http.StatusBadRequest)
		return
	}
	s.session.Resize(board.Size{Width: sig.Width, Height: sig.Height})

	sse := datastar.NewSSE(w, r)
	if err := s.patchBoard(sse); err != nil {
		_ = sse.ConsoleError(err)
	}
}
