// Package server is the web host: it serves the board as SVG, forwards
// pointer events to the board session and pushes updates over SSE.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/stageboard/internal/datasource"
	"github.com/vanderheijden86/stageboard/internal/notifier"
	"github.com/vanderheijden86/stageboard/pkg/board"
	"github.com/vanderheijden86/stageboard/pkg/viewmodel"
	"github.com/vanderheijden86/stageboard/pkg/watcher"
)

// Config holds configuration for the web host.
type Config struct {
	// Source is a snapshot file or a directory to pick the freshest one from.
	Source   string
	Addr     string
	Watch    bool
	Title    string
	Viewport board.Size
	Build    viewmodel.Options
	Render   board.Options
	Logger   *slog.Logger
}

// Server is the web host.
type Server struct {
	cfg      Config
	session  *Session
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// New creates a server with an empty board. Call Reload or Serve to load the
// snapshot.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Title == "" {
		cfg.Title = "Stage Board"
	}
	return &Server{
		cfg:      cfg,
		session:  NewSession(cfg.Viewport, cfg.Build, cfg.Render),
		notifier: notifier.New(),
		logger:   cfg.Logger,
	}
}

// Session returns the board session.
func (s *Server) Session() *Session {
	return s.session
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Reload loads the configured source into the session and notifies every
// live client. On error the previous board stays up.
func (s *Server) Reload() error {
	snap, src, err := datasource.Load(s.cfg.Source)
	if err != nil {
		return fmt.Errorf("reload %q: %w", s.cfg.Source, err)
	}
	diff := s.session.Update(snap, src)
	u := s.notifier.Publish(notifier.ReasonReload)

	attrs := []any{"source", src.Path, "type", src.Type, "tiles", diff.CountB, "rev", u.Rev}
	if diff.HasInconsistencies() {
		s.logger.Info("snapshot reloaded", append(attrs, "changes", diff.Summary())...)
	} else {
		s.logger.Info("snapshot reloaded", attrs...)
	}
	return nil
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
	)
	s.routes(r)
	return r
}

// Serve loads the snapshot, starts the HTTP server and, when enabled, the
// source watcher. It blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Reload(); err != nil {
		// An empty board is still a valid board.
		s.logger.Warn("initial load failed", "error", err)
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Watch {
		eg.Go(func() error {
			return s.watchSource(egctx)
		})
	}

	eg.Go(func() error {
		s.logger.Info("starting web host", "addr", "http://"+s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down web host...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchSource reloads on every debounced change to the source.
func (s *Server) watchSource(ctx context.Context) error {
	path := s.cfg.Source
	if path == "" {
		path = "."
	}
	w, err := watcher.New(path,
		watcher.WithExtensions(datasource.Extensions...),
		watcher.WithOnError(func(err error) {
			s.logger.Error("watcher error", "error", err)
		}),
	)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		// Serving without live reload beats not serving.
		s.logger.Error("failed to watch source", "path", path, "error", err)
		return nil
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case changed := <-w.Changed():
			s.logger.Debug("source changed, reloading", "file", changed)
			if err := s.Reload(); err != nil {
				s.logger.Error("reload failed", "error", err)
			}
		}
	}
}
