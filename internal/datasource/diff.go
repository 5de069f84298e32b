package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/stageboard/pkg/model"
	"github.com/vanderheijden86/stageboard/pkg/viewmodel"
)

// SourceDiff represents differences between the tiles of two snapshots
type SourceDiff struct {
	// SourceA is the path of the first source
	SourceA string
	// SourceB is the path of the second source
	SourceB string
	// MissingInA contains tile IDs present in B but not in A
	MissingInA []string
	// MissingInB contains tile IDs present in A but not in B
	MissingInB []string
	// ValueMismatch contains tiles whose metric differs
	ValueMismatch []ValueDifference
	// ColumnMismatch contains tiles that moved to another stage
	ColumnMismatch []string
	// CountA is the number of tiles in source A
	CountA int
	// CountB is the number of tiles in source B
	CountB int
}

// ValueDifference represents a metric change for a single tile
type ValueDifference struct {
	ID     string  `json:"id"`
	ValueA float64 `json:"value_a"`
	ValueB float64 `json:"value_b"`
}

// HasInconsistencies returns true if there are any differences between sources
func (d SourceDiff) HasInconsistencies() bool {
	return len(d.MissingInA) > 0 || len(d.MissingInB) > 0 || len(d.ValueMismatch) > 0 || len(d.ColumnMismatch) > 0
}

// Summary returns a human-readable summary of the differences
func (d SourceDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Sources match (%d tiles each)", d.CountA)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Differences between %s and %s:\n", d.SourceA, d.SourceB)

	if d.CountA != d.CountB {
		fmt.Fprintf(&sb, "  - Count mismatch: %d vs %d\n", d.CountA, d.CountB)
	}
	writeIDs(&sb, d.MissingInA, "tiles only in "+d.SourceB)
	writeIDs(&sb, d.MissingInB, "tiles only in "+d.SourceA)
	writeIDs(&sb, d.ColumnMismatch, "tiles in a different stage")

	if len(d.ValueMismatch) > 0 {
		fmt.Fprintf(&sb, "  - %d tiles with a different value\n", len(d.ValueMismatch))
		if len(d.ValueMismatch) <= 5 {
			for _, m := range d.ValueMismatch {
				fmt.Fprintf(&sb, "    - %s: %g vs %g\n", m.ID, m.ValueA, m.ValueB)
			}
		}
	}

	return sb.String()
}

func writeIDs(sb *strings.Builder, ids []string, what string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(sb, "  - %d %s\n", len(ids), what)
	if len(ids) <= 5 {
		for _, id := range ids {
			fmt.Fprintf(sb, "    - %s\n", id)
		}
	}
}

// DiffTiles compares two tile lists by id. Result lists are sorted.
func DiffTiles(tilesA, tilesB []model.Tile, sourceA, sourceB string) SourceDiff {
	diff := SourceDiff{SourceA: sourceA, SourceB: sourceB}

	mapA := make(map[string]model.Tile, len(tilesA))
	for _, t := range tilesA {
		mapA[t.ID] = t
	}
	mapB := make(map[string]model.Tile, len(tilesB))
	for _, t := range tilesB {
		mapB[t.ID] = t
	}
	diff.CountA = len(mapA)
	diff.CountB = len(mapB)

	for id := range mapA {
		if _, ok := mapB[id]; !ok {
			diff.MissingInB = append(diff.MissingInB, id)
		}
	}
	for id, b := range mapB {
		a, ok := mapA[id]
		if !ok {
			diff.MissingInA = append(diff.MissingInA, id)
			continue
		}
		if a.Column != b.Column {
			diff.ColumnMismatch = append(diff.ColumnMismatch, id)
		}
		if a.Value != b.Value {
			diff.ValueMismatch = append(diff.ValueMismatch, ValueDifference{ID: id, ValueA: a.Value, ValueB: b.Value})
		}
	}

	sort.Strings(diff.MissingInA)
	sort.Strings(diff.MissingInB)
	sort.Strings(diff.ColumnMismatch)
	sort.Slice(diff.ValueMismatch, func(i, j int) bool { return diff.ValueMismatch[i].ID < diff.ValueMismatch[j].ID })
	return diff
}

// CompareSources loads, builds and compares two data sources
func CompareSources(sourceA, sourceB DataSource, opts viewmodel.Options) (*SourceDiff, error) {
	snapA, err := LoadFromSource(sourceA)
	if err != nil {
		return nil, fmt.Errorf("failed to load source A (%s): %w", sourceA.Path, err)
	}
	snapB, err := LoadFromSource(sourceB)
	if err != nil {
		return nil, fmt.Errorf("failed to load source B (%s): %w", sourceB.Path, err)
	}

	diff := DiffTiles(viewmodel.Build(snapA, opts).Tiles, viewmodel.Build(snapB, opts).Tiles, sourceA.Path, sourceB.Path)
	return &diff, nil
}
