// Package viewmodel turns a tabular snapshot into the ordered tile list the
// board renders.
//
// Build runs two independent traversals over the same snapshot:
//
//   - the tile pass keeps rows with exactly one non-null label cell and
//     assigns the tile to that cell's column;
//   - the connection pass (DeriveConnections) picks the first label that is
//     not the "All" sentinel and links it to the next column's label in the
//     same row.
//
// The two passes use different eligibility rules. Connection endpoints are
// matched back to tiles by column and label, never by sanitized id alone.
package viewmodel

import (
	"fmt"
	"strconv"

	"github.com/vanderheijden86/stageboard/pkg/debug"
	"github.com/vanderheijden86/stageboard/pkg/metrics"
	"github.com/vanderheijden86/stageboard/pkg/model"
	"github.com/vanderheijden86/stageboard/pkg/snapshot"
)

// DuplicatePolicy decides what happens when two labels sanitize to the same id.
type DuplicatePolicy string

const (
	// DuplicateSuffix keeps every tile and suffixes later ids with -2, -3, ...
	DuplicateSuffix DuplicatePolicy = "suffix"
	// DuplicateReject keeps the first tile and drops later ones.
	DuplicateReject DuplicatePolicy = "reject"
	// DuplicateLastWins keeps the last tile and drops earlier ones.
	DuplicateLastWins DuplicatePolicy = "last"
)

// ParseDuplicatePolicy maps a config value to a policy; empty means suffix.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", DuplicateSuffix:
		return DuplicateSuffix, nil
	case DuplicateReject, DuplicateLastWins:
		return DuplicatePolicy(s), nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want suffix, reject or last)", s)
	}
}

// emptyID replaces ids that sanitize to nothing.
const emptyID = "tile"

// AllSentinel is the subtotal marker the connection pass skips over.
const AllSentinel = "All"

// Options tunes Build.
type Options struct {
	Duplicates DuplicatePolicy
}

// Dropped records a tile removed by the duplicate policy.
type Dropped struct {
	Row    int
	Tile   model.Tile
	Reason string
}

// ViewModel is the result of one update cycle.
type ViewModel struct {
	Tiles       []model.Tile       `json:"Tiles"`
	Connections []model.Connection `json:"connections,omitempty"`
	Dropped     []Dropped          `json:"-"`
}

// SnapshotError reports which required part of a snapshot is missing.
type SnapshotError struct {
	Field string
}

func (e *SnapshotError) Error() string {
	return "snapshot missing " + e.Field
}

// Validate checks the snapshot carries everything Build needs.
func Validate(snap *snapshot.Snapshot) error {
	switch {
	case snap == nil || len(snap.DataViews) == 0:
		return &SnapshotError{Field: "dataViews"}
	case snap.DataViews[0].Categorical == nil:
		return &SnapshotError{Field: "categorical"}
	}
	dv := snap.DataViews[0]
	cat := dv.Categorical
	if len(cat.Categories) < model.ColumnCount {
		return &SnapshotError{Field: "categories[" + strconv.Itoa(len(cat.Categories)) + "]"}
	}
	if cat.Categories[0].Source == nil {
		return &SnapshotError{Field: "categories[0].source"}
	}
	if len(cat.Values) == 0 {
		return &SnapshotError{Field: "values[0]"}
	}
	if dv.Metadata == nil {
		return &SnapshotError{Field: "metadata"}
	}
	return nil
}

// Build derives the ordered tile list and connection records from snap.
// A missing or malformed snapshot yields an empty ViewModel, never an error.
func Build(snap *snapshot.Snapshot, opts Options) ViewModel {
	defer metrics.Timer(metrics.BuildViewModel)()

	vm := ViewModel{Tiles: []model.Tile{}}
	if err := Validate(snap); err != nil {
		debug.Log("viewmodel: empty build: %v", err)
		return vm
	}

	cat := snap.DataViews[0].Categorical
	metric := cat.Values[0]

	var rows []int
	for i := 0; i < metric.Len(); i++ {
		col, label, ok := soleLabel(cat.Categories, i)
		if !ok {
			continue
		}
		vm.Tiles = append(vm.Tiles, model.Tile{
			Column: col,
			Label:  label,
			ID:     Sanitize(label),
			Value:  metric.At(i),
		})
		rows = append(rows, i)
	}

	vm.Tiles, vm.Dropped = resolveDuplicates(vm.Tiles, rows, opts.Duplicates)

	for _, t := range vm.Tiles {
		vm.Connections = append(vm.Connections, model.Connection{FromID: t.ID})
	}
	vm.Connections = append(vm.Connections, DeriveConnections(snap, vm.Tiles)...)

	debug.Log("viewmodel: %d rows -> %d tiles (%d dropped)", metric.Len(), len(vm.Tiles), len(vm.Dropped))
	return vm
}

// soleLabel returns the column and label of row i when exactly one of the
// four label cells is non-null.
func soleLabel(cats []snapshot.CategoryColumn, i int) (model.Column, string, bool) {
	var (
		col   model.Column
		label string
		count int
	)
	for c := 0; c < model.ColumnCount; c++ {
		if v, ok := cats[c].Label(i); ok {
			count++
			col = model.Columns[c]
			label = v
		}
	}
	if count != 1 {
		return 0, "", false
	}
	return col, label, true
}

// resolveDuplicates applies the duplicate-id policy. rows holds the source
// row of each tile and stays parallel to tiles.
func resolveDuplicates(tiles []model.Tile, rows []int, policy DuplicatePolicy) ([]model.Tile, []Dropped) {
	for i := range tiles {
		if tiles[i].ID == "" {
			tiles[i].ID = emptyID
		}
	}

	switch policy {
	case DuplicateReject:
		seen := make(map[string]bool, len(tiles))
		out := tiles[:0:0]
		var dropped []Dropped
		for i, t := range tiles {
			if seen[t.ID] {
				dropped = append(dropped, Dropped{Row: rows[i], Tile: t, Reason: "duplicate id " + t.ID})
				continue
			}
			seen[t.ID] = true
			out = append(out, t)
		}
		return out, dropped

	case DuplicateLastWins:
		last := make(map[string]int, len(tiles))
		for i, t := range tiles {
			last[t.ID] = i
		}
		out := tiles[:0:0]
		var dropped []Dropped
		for i, t := range tiles {
			if last[t.ID] != i {
				dropped = append(dropped, Dropped{Row: rows[i], Tile: t, Reason: "superseded id " + t.ID})
				continue
			}
			out = append(out, t)
		}
		return out, dropped

	default:
		used := make(map[string]bool, len(tiles))
		for _, t := range tiles {
			used[t.ID] = true
		}
		count := make(map[string]int, len(tiles))
		for i := range tiles {
			base := tiles[i].ID
			count[base]++
			if count[base] == 1 {
				continue
			}
			n := count[base]
			id := base + "-" + strconv.Itoa(n)
			for used[id] {
				n++
				id = base + "-" + strconv.Itoa(n)
			}
			count[base] = n
			used[id] = true
			tiles[i].ID = id
		}
		return tiles, nil
	}
}
