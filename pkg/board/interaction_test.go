package board

import (
	"errors"
	"testing"

	"github.com/vanderheijden86/stageboard/pkg/model"
	"github.com/vanderheijden86/stageboard/pkg/snapshot"
	"github.com/vanderheijden86/stageboard/pkg/viewmodel"

	"pgregory.net/rapid"
)

func rendered(t *testing.T) []*Block {
	t.Helper()
	c := NewContainer(Size{Width: 800, Height: 600})
	return Render(sampleTiles(), c, DefaultOptions()).Blocks
}

func TestClick_EndToEnd(t *testing.T) {
	snap := snapshot.FromRows([]snapshot.Row{
		{Labels: [4]snapshot.Cell{snapshot.Str("Sourced"), nil, nil, nil}, Metric: snapshot.Num(12)},
		{Labels: [4]snapshot.Cell{nil, snapshot.Str("Onboard#1"), nil, nil}, Metric: snapshot.Num(7)},
	})
	vm := viewmodel.Build(snap, viewmodel.Options{})
	c := NewContainer(Size{Width: 800, Height: 600})
	blocks := Render(vm.Tiles, c, DefaultOptions()).Blocks

	if _, err := Dispatch(blocks, "Sourced", EventClick); err != nil {
		t.Fatal(err)
	}
	sourced, onboard := c.Find("Sourced"), c.Find("Onboard1")
	if sourced.Rect.Fill != "orange" || sourced.State != Active {
		t.Errorf("Sourced fill=%q state=%s", sourced.Rect.Fill, sourced.State)
	}
	if onboard.Rect.Fill != FillWhite || onboard.TextFill != TextBlack || !onboard.Muted {
		t.Errorf("Onboard1 = %+v", onboard.Visual())
	}
	if onboard.Fades != 1 {
		t.Errorf("Onboard1 fades = %d", onboard.Fades)
	}
}

func TestClick_DevelopContrast(t *testing.T) {
	blocks := rendered(t)
	target := FindBlock(blocks, "Onboard1")
	Apply(Click(target, blocks))

	if target.Rect.Fill != model.ColDevelop.Stroke() {
		t.Errorf("fill = %q", target.Rect.Fill)
	}
	if target.TextFill != TextWhite || target.TextShadow != ContrastGlow || target.HeaderStyle != HeaderOnSolid {
		t.Errorf("contrast text not applied: %+v", target.Visual())
	}
	if target.Muted || target.Greyed || target.LeaveBound() {
		t.Errorf("target still muted/greyed/leave-bound: %+v", target.Visual())
	}
}

func TestClick_SwitchesActive(t *testing.T) {
	blocks := rendered(t)
	first, second := FindBlock(blocks, "Sourced"), FindBlock(blocks, "Ship")

	Apply(Click(first, blocks))
	Apply(Click(second, blocks))

	if second.State != Active || first.State == Active {
		t.Fatalf("first=%s second=%s", first.State, second.State)
	}
	if first.Rect.Fill != FillWhite || !first.Muted {
		t.Errorf("previous active not reset: %+v", first.Visual())
	}
	if first.LeaveBound() {
		t.Error("leave handler should stay detached after deactivation")
	}
	// Leave handler is gone, so the overlay never comes back.
	Apply(PointerLeave(first, blocks))
	if first.Greyed {
		t.Error("pointer leave re-greyed a previously active block")
	}
}

func TestPointerHover(t *testing.T) {
	blocks := rendered(t)
	b := FindBlock(blocks, "Ship")

	Apply(PointerEnter(b, blocks))
	if b.State != InactiveBright || b.Greyed {
		t.Errorf("after enter: %+v", b.Visual())
	}
	Apply(PointerLeave(b, blocks))
	if b.State != InactiveDimmed || !b.Greyed {
		t.Errorf("after leave: %+v", b.Visual())
	}
}

func TestPointerEvents_IgnoreActive(t *testing.T) {
	blocks := rendered(t)
	b := FindBlock(blocks, "Ship")
	Apply(Click(b, blocks))

	if ch := PointerEnter(b, blocks); ch != nil {
		t.Errorf("enter on active produced %+v", ch)
	}
	if ch := PointerLeave(b, blocks); ch != nil {
		t.Errorf("leave on active produced %+v", ch)
	}
}

func TestClick_IdempotentOnActive(t *testing.T) {
	blocks := rendered(t)
	b := FindBlock(blocks, "Sourced")
	Apply(Click(b, blocks))
	before := b.Visual()
	Apply(Click(b, blocks))
	if b.Visual() != before {
		t.Errorf("second click changed target: %+v -> %+v", before, b.Visual())
	}
}

func TestHandlersArePure(t *testing.T) {
	blocks := rendered(t)
	b := FindBlock(blocks, "Sourced")
	before := b.Visual()
	_ = Click(b, blocks)
	if b.Visual() != before {
		t.Error("Click mutated state before Apply")
	}
}

func TestDispatch_UnknownTile(t *testing.T) {
	blocks := rendered(t)
	if _, err := Dispatch(blocks, "nope", EventClick); !errors.Is(err, ErrUnknownTile) {
		t.Errorf("err = %v", err)
	}
}

func TestParseEvent(t *testing.T) {
	for _, ev := range []Event{EventEnter, EventLeave, EventClick} {
		got, err := ParseEvent(ev.String())
		if err != nil || got != ev {
			t.Errorf("ParseEvent(%q) = %v, %v", ev.String(), got, err)
		}
	}
	if _, err := ParseEvent("drag"); err == nil {
		t.Error("expected error")
	}
}

func TestAtMostOneActive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := NewContainer(Size{Width: 800, Height: 600})
		blocks := Render(sampleTiles(), c, DefaultOptions()).Blocks
		ids := []string{"Sourced", "Onboard1", "Ship", "Screened"}
		events := []Event{EventEnter, EventLeave, EventClick}

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		var lastClicked string
		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom(ids).Draw(rt, "id")
			ev := rapid.SampledFrom(events).Draw(rt, "event")
			if _, err := Dispatch(blocks, id, ev); err != nil {
				rt.Fatal(err)
			}
			if ev == EventClick {
				lastClicked = id
			}

			active := 0
			for _, b := range blocks {
				if b.State == Active {
					active++
				}
			}
			if active > 1 {
				rt.Fatalf("%d active blocks after %s %s", active, ev, id)
			}
			if lastClicked != "" {
				if a := ActiveBlock(blocks); a == nil || a.ID != lastClicked {
					rt.Fatalf("active = %v, want %s", a, lastClicked)
				}
			}
		}
	})
}
