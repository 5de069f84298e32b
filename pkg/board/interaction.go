package board

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/stageboard/pkg/debug"
	"github.com/vanderheijden86/stageboard/pkg/metrics"
	"github.com/vanderheijden86/stageboard/pkg/model"
)

// State is a block's interaction state.
type State int

const (
	// InactiveDimmed is the initial state: greyed overlay shown.
	InactiveDimmed State = iota
	// InactiveBright is an inactive block without the overlay (hovered).
	InactiveBright
	// Active is the single clicked block.
	Active
)

func (s State) String() string {
	switch s {
	case InactiveDimmed:
		return "inactive-dimmed"
	case InactiveBright:
		return "inactive-bright"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrUnknownTile is returned when an event names no rendered block.
var ErrUnknownTile = errors.New("unknown tile")

// Visual is the complete interaction-visible state of a block.
type Visual struct {
	State       State
	Greyed      bool
	Muted       bool
	Fill        string
	TextFill    string
	TextShadow  string
	HeaderStyle string
	LeaveBound  bool
	Fade        bool // play one fade-out/fade-in transition
}

// Visual returns the block's current visual state.
func (b *Block) Visual() Visual {
	return Visual{
		State:       b.State,
		Greyed:      b.Greyed,
		Muted:       b.Muted,
		Fill:        b.Rect.Fill,
		TextFill:    b.TextFill,
		TextShadow:  b.TextShadow,
		HeaderStyle: b.HeaderStyle,
		LeaveBound:  b.leaveBound,
	}
}

// Change is the new visual state for one block.
type Change struct {
	Block *Block
	Next  Visual
}

// Handler computes the changes caused by an event on target. Handlers are
// pure; call Apply to commit.
type Handler func(target *Block, all []*Block) []Change

// PointerEnter removes the grey overlay from an inactive block.
func PointerEnter(target *Block, _ []*Block) []Change {
	if target == nil || target.State == Active || !target.Greyed && target.State == InactiveBright {
		return nil
	}
	next := target.Visual()
	next.State = InactiveBright
	next.Greyed = false
	return []Change{{Block: target, Next: next}}
}

// PointerLeave restores the overlay, but only while the leave handler is
// still attached. Activation detaches it for good.
func PointerLeave(target *Block, _ []*Block) []Change {
	if target == nil || !target.leaveBound || target.State == Active {
		return nil
	}
	if target.Greyed && target.State == InactiveDimmed {
		return nil
	}
	next := target.Visual()
	next.State = InactiveDimmed
	next.Greyed = true
	return []Change{{Block: target, Next: next}}
}

// Click activates target. Every other block fades to the neutral muted
// variant and any previously active block drops back to inactive. The
// target loses its overlay, its leave handler and its muted variant, and is
// painted solid in its column color. Develop tiles get contrast text.
func Click(target *Block, all []*Block) []Change {
	if target == nil {
		return nil
	}
	changes := make([]Change, 0, len(all))
	for _, b := range all {
		if b == target {
			continue
		}
		next := b.Visual()
		next.Fill = FillWhite
		next.TextFill = TextBlack
		next.TextShadow = ""
		next.HeaderStyle = HeaderNeutral
		next.Muted = true
		next.Fade = true
		if b.State == Active {
			next.State = InactiveBright
		}
		changes = append(changes, Change{Block: b, Next: next})
	}

	next := target.Visual()
	next.State = Active
	next.Greyed = false
	next.Muted = false
	next.LeaveBound = false
	next.Fill = target.Rect.Stroke
	if target.Column == model.ColDevelop {
		next.TextFill = TextWhite
		next.TextShadow = ContrastGlow
		next.HeaderStyle = HeaderOnSolid
	} else {
		next.TextFill = TextBlack
		next.TextShadow = ""
		next.HeaderStyle = HeaderNeutral
	}
	return append(changes, Change{Block: target, Next: next})
}

// Apply commits changes in order.
func Apply(changes []Change) {
	for _, c := range changes {
		b, v := c.Block, c.Next
		b.State = v.State
		b.Greyed = v.Greyed
		b.Muted = v.Muted
		b.Rect.Fill = v.Fill
		b.TextFill = v.TextFill
		b.TextShadow = v.TextShadow
		b.HeaderStyle = v.HeaderStyle
		b.leaveBound = v.LeaveBound
		if v.Fade {
			b.Fades++
		}
	}
}

// Event is a pointer event kind.
type Event int

const (
	EventEnter Event = iota
	EventLeave
	EventClick
)

func (e Event) String() string {
	switch e {
	case EventEnter:
		return "enter"
	case EventLeave:
		return "leave"
	case EventClick:
		return "click"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// ParseEvent maps "enter", "leave" and "click" to events.
func ParseEvent(s string) (Event, error) {
	switch s {
	case "enter":
		return EventEnter, nil
	case "leave":
		return EventLeave, nil
	case "click":
		return EventClick, nil
	}
	return 0, fmt.Errorf("unknown event %q", s)
}

// HandlerFor returns the handler bound to ev.
func HandlerFor(ev Event) Handler {
	switch ev {
	case EventEnter:
		return PointerEnter
	case EventLeave:
		return PointerLeave
	default:
		return Click
	}
}

// Dispatch runs the handler for ev on the block with the given id and applies
// the result.
func Dispatch(blocks []*Block, id string, ev Event) ([]Change, error) {
	defer metrics.Timer(metrics.PointerEvent)()

	target := FindBlock(blocks, id)
	if target == nil {
		return nil, fmt.Errorf("%s %q: %w", ev, id, ErrUnknownTile)
	}
	changes := HandlerFor(ev)(target, blocks)
	Apply(changes)
	debug.Log("dispatch %s %s: %d changes, state=%s", ev, id, len(changes), target.State)
	return changes, nil
}

// ActiveBlock returns the active block, or nil.
func ActiveBlock(blocks []*Block) *Block {
	for _, b := range blocks {
		if b.State == Active {
			return b
		}
	}
	return nil
}
