package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/stageboard/internal/server"
)

type serveOptions struct {
	addr    string
	port    int
	title   string
	noWatch bool
}

func newServeCmd(a *app) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive board to a browser",
		Example: `  # Serve on the configured address
  stageboard serve

  # Serve a named source on another port
  stageboard serve -s weekly --port 9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, a, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", "", "address to bind (default: server.addr)")
	f.IntVar(&opts.port, "port", 0, "port to serve on (default: server.port)")
	f.StringVar(&opts.title, "title", "", "page title")
	f.BoolVar(&opts.noWatch, "no-watch", false, "do not reload when the snapshot changes")
	return cmd
}

func runServe(cmd *cobra.Command, a *app, opts *serveOptions) error {
	// CLI flags override config file
	if opts.addr != "" {
		a.cfg.Server.Addr = opts.addr
	}
	if opts.port != 0 {
		a.cfg.Server.Port = opts.port
	}

	buildOpts, err := a.cfg.ViewModelOptions()
	if err != nil {
		return err
	}
	renderOpts, err := a.cfg.RenderOptions()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if a.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	srv := server.New(server.Config{
		Source:   a.sourcePath(),
		Addr:     a.cfg.ListenAddr(),
		Watch:    a.cfg.WatchEnabled() && !opts.noWatch,
		Title:    opts.title,
		Viewport: a.cfg.Viewport(),
		Build:    buildOpts,
		Render:   renderOpts,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving board at http://%s (Ctrl+C to stop)\n", a.cfg.ListenAddr())
	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

