package board

import (
	"strconv"
	"strings"

	"github.com/vanderheijden86/stageboard/pkg/viewmodel"
)

// Connector is one drawn path between two blocks.
type Connector struct {
	ID   string // "line<seq>"
	From string
	To   string
	D    string // path data
}

// ConnectorPath computes the path from the center of a to the center of b:
// horizontal to a's right edge, diagonal to b's left edge at b's center
// height, then horizontal into b's center.
func ConnectorPath(a, b Rect, seq int) Connector {
	x1, y1 := a.Center()
	hor1 := a.Right()
	x2l := b.X
	x2, y2 := b.Center()

	var d strings.Builder
	d.WriteString("M " + formatNum(x1) + " " + formatNum(y1))
	d.WriteString(" H " + formatNum(hor1))
	d.WriteString(" M " + formatNum(hor1) + " " + formatNum(y1))
	d.WriteString(" L " + formatNum(x2l) + " " + formatNum(y2))
	d.WriteString(" M " + formatNum(x2l) + " " + formatNum(y2))
	d.WriteString(" L " + formatNum(x2) + " " + formatNum(y2))
	return Connector{ID: "line" + strconv.Itoa(seq), D: d.String()}
}

// connect draws one connector per pair whose endpoints were both rendered.
// Pairs naming a missing block are skipped without consuming a sequence number.
func connect(blocks []*Block, pairs []viewmodel.Pair) []Connector {
	var out []Connector
	for _, p := range pairs {
		a, b := FindBlock(blocks, p.From), FindBlock(blocks, p.To)
		if a == nil || b == nil || a == b {
			continue
		}
		c := ConnectorPath(a.Bounds, b.Bounds, len(out))
		c.From, c.To = p.From, p.To
		out = append(out, c)
	}
	return out
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
