package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/stageboard/internal/datasource"
	"github.com/vanderheijden86/stageboard/pkg/config"
	"github.com/vanderheijden86/stageboard/pkg/snapshot"
	"github.com/vanderheijden86/stageboard/pkg/viewmodel"
)

// initAnswers holds what the init wizard asks for.
type initAnswers struct {
	Source     string
	Sample     bool
	Duplicates string
	Connectors bool
	Port       string
}

type initOptions struct {
	yes   bool
	force bool
}

func newInitCmd(a *app) *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file and, optionally, a sample snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, a, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "accept the defaults without prompting")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing config or sample")
	return cmd
}

func runInit(cmd *cobra.Command, a *app, opts *initOptions) error {
	path := a.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	if path == "" {
		return errors.New("cannot determine config directory; pass --config")
	}
	if _, err := os.Stat(path); err == nil && !opts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	answers := initAnswers{
		Source:     a.source,
		Sample:     true,
		Duplicates: a.cfg.Board.Duplicates,
		Connectors: a.cfg.Board.Connectors == nil || *a.cfg.Board.Connectors,
		Port:       strconv.Itoa(a.cfg.Server.Port),
	}
	if answers.Source == "" {
		answers.Source = "stages.json"
	}
	if answers.Duplicates == "" {
		answers.Duplicates = string(viewmodel.DuplicateSuffix)
	}

	if !opts.yes {
		if err := newForm(initGroup(&answers)).Run(); err != nil {
			return err
		}
	}

	cfg := a.cfg
	port, err := strconv.Atoi(answers.Port)
	if err != nil {
		return fmt.Errorf("port %q: %w", answers.Port, err)
	}
	cfg.Server.Port = port
	cfg.Board.Duplicates = answers.Duplicates
	connectors := answers.Connectors
	cfg.Board.Connectors = &connectors

	source, err := filepath.Abs(answers.Source)
	if err != nil {
		return err
	}
	cfg.Source.Path = source

	out := cmd.OutOrStdout()
	if answers.Sample {
		if _, err := os.Stat(source); err == nil && !opts.force {
			fmt.Fprintf(out, "Keeping existing snapshot %s\n", source)
		} else {
			if err := writeSample(source); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote sample snapshot %s\n", source)
		}
	}

	if err := config.SaveTo(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote config %s\n", path)
	return nil
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

func initGroup(ans *initAnswers) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().
			Title("Snapshot source").
			Description(".json, .db/.sqlite or .xlsx").
			Value(&ans.Source).
			Validate(func(s string) error {
				_, err := datasource.TypeForPath(s)
				return err
			}),
		huh.NewConfirm().
			Title("Write a sample snapshot there?").
			Value(&ans.Sample),
		huh.NewSelect[string]().
			Title("When two labels produce the same tile id").
			Options(
				huh.NewOption("Keep both, suffix the later id", string(viewmodel.DuplicateSuffix)),
				huh.NewOption("Keep the first", string(viewmodel.DuplicateReject)),
				huh.NewOption("Keep the last", string(viewmodel.DuplicateLastWins)),
			).
			Value(&ans.Duplicates),
		huh.NewConfirm().
			Title("Draw connectors between related tiles?").
			Value(&ans.Connectors),
		huh.NewInput().
			Title("Web host port").
			Value(&ans.Port).
			Validate(func(s string) error {
				n, err := strconv.Atoi(s)
				if err != nil || n <= 0 || n > 65535 {
					return errors.New("enter a port between 1 and 65535")
				}
				return nil
			}),
	)
}

// sampleRows is a small board with every stage populated and two
// connection rows.
func sampleRows() []snapshot.Row {
	s, n := snapshot.Str, snapshot.Num
	return []snapshot.Row{
		{Labels: [4]snapshot.Cell{s("Sourced"), nil, nil, nil}, Metric: n(120)},
		{Labels: [4]snapshot.Cell{s("Screened"), nil, nil, nil}, Metric: n(64)},
		{Labels: [4]snapshot.Cell{nil, s("Onboard#1"), nil, nil}, Metric: n(31)},
		{Labels: [4]snapshot.Cell{nil, s("Mentored"), nil, nil}, Metric: n(18)},
		{Labels: [4]snapshot.Cell{nil, nil, s("Ship"), nil}, Metric: n(12)},
		{Labels: [4]snapshot.Cell{nil, nil, nil, s("Retained")}, Metric: n(9)},
		{Labels: [4]snapshot.Cell{s("Sourced"), s("Onboard#1"), s("All"), s("All")}, Metric: n(0)},
		{Labels: [4]snapshot.Cell{s("All"), s("Onboard#1"), s("Ship"), s("All")}, Metric: n(0)},
	}
}

func writeSample(path string) error {
	t, err := datasource.TypeForPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	rows := sampleRows()

	switch t {
	case datasource.SourceTypeSQLite:
		return datasource.WriteSQLite(path, rows)
	case datasource.SourceTypeXLSX:
		return datasource.WriteXLSX(path, rows)
	default:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := snapshot.Encode(f, snapshot.FromRows(rows)); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}
