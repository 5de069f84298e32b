// Package model holds the value types shared by the view-model builder, the
// render layer and the hosts.
package model

import "fmt"

// Column identifies one of the four pipeline stages (1-based).
type Column int

const (
	ColRecruit Column = iota + 1
	ColDevelop
	ColLaunch
	ColGrow
)

// ColumnCount is the number of stage columns on the board.
const ColumnCount = 4

// Columns lists the stages in board order.
var Columns = [ColumnCount]Column{ColRecruit, ColDevelop, ColLaunch, ColGrow}

// Valid reports whether c is one of the four stages.
func (c Column) Valid() bool {
	return c >= ColRecruit && c <= ColGrow
}

// Name returns the stage heading shown above the column.
func (c Column) Name() string {
	switch c {
	case ColRecruit:
		return "Recruit"
	case ColDevelop:
		return "Develop"
	case ColLaunch:
		return "Launch"
	case ColGrow:
		return "Grow"
	default:
		return ""
	}
}

// Stroke returns the outline color used for tiles in this column.
// Unknown columns get an empty outline.
func (c Column) Stroke() string {
	switch c {
	case ColRecruit:
		return "orange"
	case ColDevelop:
		return "#18a518"
	case ColLaunch:
		return "#04D9DF"
	case ColGrow:
		return "#3300FF"
	default:
		return ""
	}
}

// Index returns the zero-based slot for a valid column, or -1.
func (c Column) Index() int {
	if !c.Valid() {
		return -1
	}
	return int(c) - 1
}

// ElementID returns the container id of the column ("col-1".."col-4").
func (c Column) ElementID() string {
	return fmt.Sprintf("col-%d", int(c))
}

func (c Column) String() string {
	if n := c.Name(); n != "" {
		return n
	}
	return fmt.Sprintf("Column(%d)", int(c))
}

// Tile is one metric block derived from a snapshot row.
type Tile struct {
	Column Column  `json:"col"`
	Label  string  `json:"head"`
	ID     string  `json:"id"`
	Value  float64 `json:"value"`
}

// Connection records which tiles a tile links to. Targets is empty when the
// row only established the tile's identity.
type Connection struct {
	FromID  string `json:"from_id"`
	Targets []Tile `json:"connect,omitempty"`
}
