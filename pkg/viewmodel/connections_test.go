package viewmodel

import (
	"testing"

	"github.com/vanderheijden86/stageboard/pkg/snapshot"
)

func TestDeriveConnections_AllSentinel(t *testing.T) {
	all := s(AllSentinel)
	snap := snapshot.FromRows([]snapshot.Row{
		row(s("Sourced"), nil, nil, nil, 12),
		row(nil, s("Onboard#1"), nil, nil, 7),
		row(s("Sourced"), s("Onboard#1"), all, all, 0),
		row(all, s("Onboard#1"), s("Ship"), all, 0),
		row(all, all, all, all, 0),
		row(all, nil, nil, nil, 0),
	})

	vm := Build(snap, Options{})
	conns := DeriveConnections(snap, vm.Tiles)

	// Row 0 selects Sourced with no target. Row 1 selects its null Recruit
	// cell (null is "not All") and yields nothing. Row 2 links Sourced ->
	// Onboard1. Row 3 selects Onboard#1 with target Ship (no such tile).
	// Row 4 is all "All" and row 5 selects a null cell.
	if len(conns) != 3 {
		t.Fatalf("expected 3 connections, got %d: %+v", len(conns), conns)
	}
	if conns[0].FromID != "Sourced" || len(conns[0].Targets) != 0 {
		t.Errorf("row 0 connection = %+v", conns[0])
	}
	if conns[1].FromID != "Sourced" || len(conns[1].Targets) != 1 || conns[1].Targets[0].ID != "Onboard1" {
		t.Errorf("row 2 connection = %+v", conns[1])
	}
	if conns[2].FromID != "Onboard1" || len(conns[2].Targets) != 0 {
		t.Errorf("row 3 connection = %+v", conns[2])
	}

	pairs := ConnectorPairs(conns)
	if len(pairs) != 1 || pairs[0] != (Pair{From: "Sourced", To: "Onboard1"}) {
		t.Errorf("pairs = %+v", pairs)
	}
}

func TestDeriveConnections_InvalidSnapshot(t *testing.T) {
	if conns := DeriveConnections(&snapshot.Snapshot{}, nil); conns != nil {
		t.Errorf("expected nil, got %+v", conns)
	}
}

func TestBuild_IncludesDerivedConnections(t *testing.T) {
	snap := snapshot.FromRows([]snapshot.Row{
		row(s("Sourced"), nil, nil, nil, 12),
		row(nil, s("Onboard"), nil, nil, 7),
		row(s("Sourced"), s("Onboard"), s(AllSentinel), s(AllSentinel), 0),
	})
	vm := Build(snap, Options{})

	pairs := ConnectorPairs(vm.Connections)
	if len(pairs) != 1 || pairs[0].From != "Sourced" || pairs[0].To != "Onboard" {
		t.Fatalf("pairs = %+v", pairs)
	}
}

func TestConnectorPairs_DedupesAndSkipsSelf(t *testing.T) {
	vm := Build(snapshot.FromRows([]snapshot.Row{
		row(s("A"), nil, nil, nil, 1),
		row(nil, s("B"), nil, nil, 1),
		row(s("A"), s("B"), nil, nil, 0),
		row(s("A"), s("B"), nil, nil, 0),
		row(s("B"), s("B"), nil, nil, 0),
	}), Options{})

	pairs := ConnectorPairs(vm.Connections)
	if len(pairs) != 1 {
		t.Fatalf("pairs = %+v", pairs)
	}
}

func TestDeriveConnections_EmptyIDSource(t *testing.T) {
	vm := Build(snapshot.FromRows([]snapshot.Row{
		row(s("..."), nil, nil, nil, 1),
		row(nil, s("B"), nil, nil, 2),
		row(s("..."), s("B"), nil, nil, 0),
	}), Options{})

	pairs := ConnectorPairs(vm.Connections)
	if len(pairs) != 1 || pairs[0] != (Pair{From: "tile", To: "B"}) {
		t.Fatalf("pairs = %+v", pairs)
	}
}

func TestDeriveConnections_DuplicateLabelsResolveByColumn(t *testing.T) {
	all := s(AllSentinel)
	rows := []snapshot.Row{
		row(s("A"), nil, nil, nil, 1),
		row(nil, nil, s("A"), nil, 2),
		row(nil, nil, nil, s("G"), 3),
		row(all, all, s("A"), s("G"), 0),
	}

	t.Run("suffix", func(t *testing.T) {
		vm := Build(snapshot.FromRows(rows), Options{})
		pairs := ConnectorPairs(vm.Connections)
		if len(pairs) != 1 || pairs[0] != (Pair{From: "A-2", To: "G"}) {
			t.Fatalf("pairs = %+v", pairs)
		}
	})

	t.Run("reject", func(t *testing.T) {
		// The Launch "A" tile is dropped, so its link must not move to the
		// Recruit "A" block.
		vm := Build(snapshot.FromRows(rows), Options{Duplicates: DuplicateReject})
		if pairs := ConnectorPairs(vm.Connections); len(pairs) != 0 {
			t.Fatalf("pairs = %+v", pairs)
		}
	})

	t.Run("target column", func(t *testing.T) {
		vm := Build(snapshot.FromRows([]snapshot.Row{
			row(s("A"), nil, nil, nil, 1),
			row(nil, s("X"), nil, nil, 2),
			row(nil, nil, s("X"), nil, 3),
			row(all, all, s("A"), s("X"), 0),
			row(s("A"), s("X"), nil, nil, 0),
		}), Options{})
		// Row 3's source is not a Launch tile; row 4 targets the Develop "X".
		pairs := ConnectorPairs(vm.Connections)
		if len(pairs) != 1 || pairs[0] != (Pair{From: "A", To: "X"}) {
			t.Fatalf("pairs = %+v", pairs)
		}
	})
}
