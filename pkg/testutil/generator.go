// Package testutil provides deterministic snapshot fixtures for tests and
// benchmarks.
package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/stageboard/pkg/model"
	"github.com/vanderheijden86/stageboard/pkg/snapshot"
)

// GeneratorConfig controls snapshot generation.
type GeneratorConfig struct {
	Seed        int64  // Random seed for determinism (0 = use a fixed seed)
	LabelPrefix string // Prefix for generated labels (default: "Tile")

	// TilesPerColumn is the number of tile rows per stage column.
	TilesPerColumn [model.ColumnCount]int
	// ConnectionRows is the number of multi-label rows with "All" sentinels.
	ConnectionRows int
	// NullMetricRate is the share of tile rows whose metric is null.
	NullMetricRate float64
	// DirtyLabelRate is the share of labels carrying characters the id
	// derivation strips (spaces, '#', '/', ...).
	DirtyLabelRate float64
}

// DefaultConfig returns a config suitable for most tests: three tiles per
// stage, two connection rows, clean labels.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:           42,
		LabelPrefix:    "Tile",
		TilesPerColumn: [model.ColumnCount]int{3, 3, 3, 3},
		ConnectionRows: 2,
	}
}

// Fixture is a generated snapshot plus what a builder should make of it.
type Fixture struct {
	Description string         `json:"description"`
	Rows        []snapshot.Row `json:"-"`
	// Labels are the tile labels per column, in row order.
	Labels [model.ColumnCount][]string `json:"labels"`
	// Tiles is the number of tile rows.
	Tiles int `json:"tiles"`
}

// Snapshot assembles the fixture rows into a snapshot.
func (f Fixture) Snapshot() *snapshot.Snapshot {
	return snapshot.FromRows(f.Rows)
}

// Generator creates snapshot fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}
	if cfg.LabelPrefix == "" {
		cfg.LabelPrefix = "Tile"
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

var dirt = []string{" ", "#", "/", "()", "&", "."}

// label returns a unique label for tile n of col, dirtied at the configured
// rate. Dirt never makes two labels sanitize to the same id.
func (g *Generator) label(col model.Column, n int) string {
	base := fmt.Sprintf("%s%s%d", col.Name(), g.cfg.LabelPrefix, n)
	if g.rng.Float64() >= g.cfg.DirtyLabelRate {
		return base
	}
	d := dirt[g.rng.Intn(len(dirt))]
	cut := 1 + g.rng.Intn(len(base)-1)
	return base[:cut] + d + base[cut:]
}

// Board generates tile rows for every column, interleaved the way a
// grouped query returns them, followed by the connection rows.
func (g *Generator) Board() Fixture {
	var f Fixture
	remaining := g.cfg.TilesPerColumn
	next := [model.ColumnCount]int{}

	for {
		var open []int
		for i, n := range remaining {
			if n > 0 {
				open = append(open, i)
			}
		}
		if len(open) == 0 {
			break
		}
		i := open[g.rng.Intn(len(open))]
		col := model.Columns[i]
		lbl := g.label(col, next[i])
		next[i]++
		remaining[i]--

		var r snapshot.Row
		r.Labels[i] = snapshot.Str(lbl)
		if g.rng.Float64() >= g.cfg.NullMetricRate {
			r.Metric = snapshot.Num(float64(g.rng.Intn(500)))
		}
		f.Rows = append(f.Rows, r)
		f.Labels[i] = append(f.Labels[i], lbl)
		f.Tiles++
	}

	for c := 0; c < g.cfg.ConnectionRows; c++ {
		f.Rows = append(f.Rows, g.connectionRow(f.Labels))
	}

	f.Description = fmt.Sprintf("%d tiles over %v, %d connection rows", f.Tiles, g.cfg.TilesPerColumn, g.cfg.ConnectionRows)
	return f
}

// connectionRow fills every column with a known label or the "All"
// sentinel; at least two columns carry a label when possible.
func (g *Generator) connectionRow(labels [model.ColumnCount][]string) snapshot.Row {
	var r snapshot.Row
	for i := range r.Labels {
		if len(labels[i]) == 0 || g.rng.Intn(3) == 0 {
			r.Labels[i] = snapshot.Str("All")
			continue
		}
		r.Labels[i] = snapshot.Str(labels[i][g.rng.Intn(len(labels[i]))])
	}
	r.Metric = snapshot.Num(0)
	return r
}

// WriteJSON writes the fixture as a flat-row JSON snapshot under dir and
// returns its path.
func (f Fixture) WriteJSON(dir, name string) (string, error) {
	type flat struct {
		Recruit snapshot.Cell `json:"recruit"`
		Develop snapshot.Cell `json:"develop"`
		Launch  snapshot.Cell `json:"launch"`
		Grow    snapshot.Cell `json:"grow"`
		Metric  *float64      `json:"metric"`
	}
	doc := struct {
		Rows []flat `json:"rows"`
	}{}
	for _, r := range f.Rows {
		doc.Rows = append(doc.Rows, flat{r.Labels[0], r.Labels[1], r.Labels[2], r.Labels[3], r.Metric})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write fixture: %w", err)
	}
	return path, nil
}
