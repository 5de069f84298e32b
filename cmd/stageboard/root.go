package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/stageboard/internal/datasource"
	"github.com/vanderheijden86/stageboard/pkg/board"
	"github.com/vanderheijden86/stageboard/pkg/config"
	"github.com/vanderheijden86/stageboard/pkg/debug"
	"github.com/vanderheijden86/stageboard/pkg/snapshot"
	"github.com/vanderheijden86/stageboard/pkg/version"
	"github.com/vanderheijden86/stageboard/pkg/viewmodel"
)

// app is the state shared by every subcommand.
type app struct {
	configPath string
	source     string
	debug      bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultConfig()}

	root := &cobra.Command{
		Use:   "stageboard",
		Short: "Four-stage metric board",
		Long: `stageboard turns a snapshot of Recruit, Develop, Launch and Grow labels into
a board of metric tiles. Render it to a file, browse it in the terminal or
serve it to a browser.

Snapshots are JSON, SQLite or XLSX files. Without --source the freshest
snapshot in the configured directory (or the working directory) is used.`,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			if a.debug {
				debug.SetEnabled(true)
			}
			return a.loadConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default: "+config.ConfigPath()+")")
	pf.StringVarP(&a.source, "source", "s", "", "snapshot file, directory or named source")
	pf.BoolVar(&a.debug, "debug", false, "log update cycles to stderr")

	root.AddCommand(
		newRenderCmd(a),
		newTilesCmd(a),
		newDiffCmd(a),
		newTUICmd(a),
		newServeCmd(a),
		newInitCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) loadConfig() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFrom(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	debug.Dump("config", a.cfg)
	return nil
}

// sourcePath resolves --source against the config. An empty result means
// "scan for the freshest source".
func (a *app) sourcePath() string {
	if p := a.cfg.ResolveSource(a.source); p != "" {
		return p
	}
	return a.cfg.Source.Dir
}

// loaded is one full update cycle run outside a host.
type loaded struct {
	Source    datasource.DataSource
	Snap      *snapshot.Snapshot
	VM        viewmodel.ViewModel
	Container *board.Container
	Result    board.Result
}

// load runs load, build and render once against the given viewport.
func (a *app) load(viewport board.Size) (*loaded, error) {
	buildOpts, err := a.cfg.ViewModelOptions()
	if err != nil {
		return nil, err
	}
	renderOpts, err := a.cfg.RenderOptions()
	if err != nil {
		return nil, err
	}

	snap, src, err := datasource.Load(a.sourcePath())
	if err != nil {
		return nil, err
	}
	vm := viewmodel.Build(snap, buildOpts)
	for _, d := range vm.Dropped {
		debug.Log("dropped row %d (%s): %s", d.Row, d.Tile.ID, d.Reason)
	}

	renderOpts.Connectors = viewmodel.ConnectorPairs(vm.Connections)
	c := board.NewContainer(viewport)
	res := board.Render(vm.Tiles, c, renderOpts)

	return &loaded{Source: src, Snap: snap, VM: vm, Container: c, Result: res}, nil
}

// dataHash fingerprints a snapshot for export provenance.
func dataHash(snap *snapshot.Snapshot) string {
	var sb strings.Builder
	if err := snapshot.Encode(&sb, snap); err != nil {
		return ""
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])[:12]
}

// applyEvents dispatches "event:id" pairs in order, e.g. "click:Onboard1".
func applyEvents(c *board.Container, events []string) error {
	for _, arg := range events {
		name, id, ok := strings.Cut(arg, ":")
		if !ok {
			// A bare id is a click.
			name, id = board.EventClick.String(), arg
		}
		ev, err := board.ParseEvent(name)
		if err != nil {
			return err
		}
		if _, err := board.Dispatch(c.Blocks(), id, ev); err != nil {
			return fmt.Errorf("apply %s: %w", arg, err)
		}
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "stageboard %s\n", version.Version)
		},
	}
}
