package testutil

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/stageboard/pkg/model"
)

// AssertTileCount verifies the expected number of tiles.
func AssertTileCount(t *testing.T, tiles []model.Tile, expected int) {
	t.Helper()
	if len(tiles) != expected {
		t.Errorf("expected %d tiles, got %d", expected, len(tiles))
	}
}

// AssertNoDuplicateIDs verifies all tile IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, tiles []model.Tile) {
	t.Helper()
	seen := make(map[string]bool)
	for _, tile := range tiles {
		if seen[tile.ID] {
			t.Errorf("duplicate tile ID: %s", tile.ID)
		}
		seen[tile.ID] = true
	}
}

// AssertIDsClean verifies no tile ID contains whitespace or a character
// the id derivation strips.
func AssertIDsClean(t *testing.T, tiles []model.Tile) {
	t.Helper()
	for _, tile := range tiles {
		if tile.ID == "" || strings.ContainsAny(tile.ID, " \t\n&/\\#,+()$~%.'\":*?<>{}") {
			t.Errorf("tile %q has unclean id %q", tile.Label, tile.ID)
		}
	}
}

// AssertFixtureTiles verifies tiles carry the fixture's labels per column,
// in row order.
func AssertFixtureTiles(t *testing.T, f Fixture, tiles []model.Tile) {
	t.Helper()
	AssertTileCount(t, tiles, f.Tiles)

	var got [model.ColumnCount][]string
	for _, tile := range tiles {
		if !tile.Column.Valid() {
			t.Errorf("tile %s has invalid column %d", tile.ID, tile.Column)
			continue
		}
		got[tile.Column.Index()] = append(got[tile.Column.Index()], tile.Label)
	}
	for i, want := range f.Labels {
		if strings.Join(got[i], "|") != strings.Join(want, "|") {
			t.Errorf("%s labels = %v, want %v", model.Columns[i].Name(), got[i], want)
		}
	}
}
