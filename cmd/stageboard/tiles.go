package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/stageboard/pkg/metrics"
	"github.com/vanderheijden86/stageboard/pkg/model"
	"github.com/vanderheijden86/stageboard/pkg/viewmodel"
)

type tilesOptions struct {
	json    bool
	timings bool
}

func newTilesCmd(a *app) *cobra.Command {
	opts := &tilesOptions{}

	cmd := &cobra.Command{
		Use:   "tiles",
		Short: "List the tiles and connections a snapshot builds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := a.load(a.cfg.Viewport())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.json {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(l.VM)
			}
			renderTiles(out, l.VM)
			if len(l.Result.Skipped) > 0 {
				fmt.Fprintf(out, "%d tiles skipped (unknown column)\n", len(l.Result.Skipped))
			}
			if opts.timings {
				renderTimings(out, metrics.AllTimingStats())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the view model as JSON")
	cmd.Flags().BoolVar(&opts.timings, "timings", false, "print update-cycle timings")
	return cmd
}

func renderTiles(w io.Writer, vm viewmodel.ViewModel) {
	if len(vm.Tiles) == 0 {
		_, _ = fmt.Fprintln(w, "(0 tiles)")
		return
	}

	targets := make(map[string][]string, len(vm.Connections))
	for _, c := range vm.Connections {
		for _, t := range c.Targets {
			targets[c.FromID] = append(targets[c.FromID], t.ID)
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Stage", "ID", "Label", "Value", "Connects to"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Value", Align: text.AlignRight},
	})
	for _, col := range model.Columns {
		for _, tile := range vm.Tiles {
			if tile.Column != col {
				continue
			}
			t.AppendRow(table.Row{col.Name(), tile.ID, tile.Label, tile.Value, strings.Join(targets[tile.ID], ", ")})
		}
	}
	t.Render()

	_, _ = fmt.Fprintf(w, "(%d tiles, %d connections)\n", len(vm.Tiles), len(vm.Connections))
	for _, d := range vm.Dropped {
		_, _ = fmt.Fprintf(w, "dropped row %d (%s): %s\n", d.Row, d.Tile.ID, d.Reason)
	}
}

func renderTimings(w io.Writer, stats []metrics.TimingStats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Phase", "Count", "Avg ms", "Max ms", "Total ms"})
	for _, s := range stats {
		t.AppendRow(table.Row{s.Name, s.Count, fmt.Sprintf("%.3f", s.AvgMs), fmt.Sprintf("%.3f", s.MaxMs), fmt.Sprintf("%.3f", s.TotalMs)})
	}
	t.Render()
}
