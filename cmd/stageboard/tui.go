package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/stageboard/pkg/debug"
	"github.com/vanderheijden86/stageboard/pkg/ui"
)

func newTUICmd(a *app) *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the board in the terminal",
		Long: `Browse the board in the terminal. Hover and click tiles with the mouse, or
move focus with the arrow keys and activate with enter. The board reloads
when the snapshot changes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("tui needs a terminal; use render or tiles instead")
			}
			buildOpts, err := a.cfg.ViewModelOptions()
			if err != nil {
				return err
			}
			renderOpts, err := a.cfg.RenderOptions()
			if err != nil {
				return err
			}

			// Debug output would tear the alternate screen.
			if debug.Enabled() {
				f, err := os.OpenFile(filepath.Join(os.TempDir(), "stageboard-debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				debug.SetOutput(f)
			}

			m := ui.NewModel(ui.Options{
				Source: a.sourcePath(),
				Build:  buildOpts,
				Render: renderOpts,
				Watch:  a.cfg.WatchEnabled() && !noWatch,
			})
			defer m.Stop()

			var progOpts []tea.ProgramOption
			if a.cfg.AltScreen() {
				progOpts = append(progOpts, tea.WithAltScreen())
			}
			if a.cfg.MouseEnabled() {
				progOpts = append(progOpts, tea.WithMouseAllMotion())
			}
			if err := runTUIProgram(m, progOpts...); err != nil {
				return fmt.Errorf("running board: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload when the snapshot changes")
	return cmd
}

func runTUIProgram(m ui.Model, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(m, append(opts, tea.WithoutSignalHandler())...)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated runs: set STAGEBOARD_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("STAGEBOARD_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}
				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
