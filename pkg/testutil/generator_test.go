package testutil

import (
	"testing"

	"github.com/vanderheijden86/stageboard/pkg/model"
	"github.com/vanderheijden86/stageboard/pkg/snapshot"
)

func TestBoard_Deterministic(t *testing.T) {
	a := NewDefault().Board()
	b := NewDefault().Board()

	if a.Description != b.Description || len(a.Rows) != len(b.Rows) {
		t.Fatalf("same seed produced different fixtures: %q vs %q", a.Description, b.Description)
	}
	for i := range a.Rows {
		for c := range a.Rows[i].Labels {
			if label(a.Rows[i].Labels[c]) != label(b.Rows[i].Labels[c]) {
				t.Fatalf("row %d col %d differs", i, c)
			}
		}
	}
}

func TestBoard_Shape(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TilesPerColumn = [model.ColumnCount]int{2, 0, 4, 1}
	cfg.ConnectionRows = 3
	f := New(cfg).Board()

	if f.Tiles != 7 {
		t.Errorf("tiles = %d, want 7", f.Tiles)
	}
	if len(f.Rows) != 10 {
		t.Errorf("rows = %d, want 10", len(f.Rows))
	}
	for i, want := range cfg.TilesPerColumn {
		if len(f.Labels[i]) != want {
			t.Errorf("column %d labels = %d, want %d", i, len(f.Labels[i]), want)
		}
	}

	// Tile rows carry exactly one label.
	for i, r := range f.Rows[:f.Tiles] {
		n := 0
		for _, c := range r.Labels {
			if c != nil {
				n++
			}
		}
		if n != 1 {
			t.Errorf("tile row %d has %d labels", i, n)
		}
	}
	// Connection rows fill every column; the empty Develop column is "All".
	for _, r := range f.Rows[f.Tiles:] {
		if label(r.Labels[1]) != "All" {
			t.Errorf("connection row develop = %q, want All", label(r.Labels[1]))
		}
	}
}

func TestBoard_NullMetrics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NullMetricRate = 1
	f := New(cfg).Board()
	for i, r := range f.Rows[:f.Tiles] {
		if r.Metric != nil {
			t.Errorf("row %d metric = %v, want null", i, *r.Metric)
		}
	}
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	f := NewDefault().Board()
	path, err := f.WriteJSON(t.TempDir(), "fixture.json")
	if err != nil {
		t.Fatal(err)
	}
	snap, err := snapshot.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.DataViews) != 1 {
		t.Fatalf("dataViews = %d", len(snap.DataViews))
	}
	cats := snap.DataViews[0].Categorical.Categories
	if len(cats) != 4 || len(cats[0].Values) != len(f.Rows) {
		t.Errorf("decoded %d categories", len(cats))
	}
}

func label(c snapshot.Cell) string {
	if c == nil {
		return "<nil>"
	}
	return *c
}
