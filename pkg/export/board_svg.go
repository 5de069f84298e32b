package export

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/vanderheijden86/stageboard/pkg/board"

	"github.com/ajstarks/svgo"
)

// Stylesheet is embedded in every SVG and reused by the web host.
const Stylesheet = `
.SVGcontainer { cursor: pointer; transition: opacity .25s ease-in-out; }
.SVGcontainer.grey { opacity: .45; }
.SVGcontainer.strong-grey { opacity: .85; }
.SVGcontainer.active { opacity: 1; }
.colTitle { font: 600 16px sans-serif; fill: #111111; }
.headTitle { font: 600 14px sans-serif; }
.value { font: 700 22px sans-serif; }
.connector { stroke: #6b80bf; stroke-width: 2; fill: none; }
`

// SVGOptions tune WriteBoardSVG.
type SVGOptions struct {
	Title    string
	DataHash string
	// BlockAttrs returns extra raw attributes (key="value") for a block's group.
	BlockAttrs func(b *board.Block) []string
}

// WriteBoardSVG writes the container as a standalone SVG document.
func WriteBoardSVG(w io.Writer, c *board.Container, opts SVGOptions) error {
	if c == nil {
		return fmt.Errorf("no rendered board to export")
	}
	width, height := canvasSize(c)

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Style("text/css", Stylesheet)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	if opts.Title != "" || opts.DataHash != "" {
		canvas.Desc(strings.TrimSpace(opts.Title + " " + opts.DataHash))
	}

	for _, cc := range c.Columns {
		canvas.Gid(cc.ElementID())
		canvas.Text(int(cc.Bounds.X+cc.Bounds.W/2), int(board.HeaderBand*0.7), cc.Header,
			`class="colTitle"`, `text-anchor="middle"`)
		for _, b := range cc.Blocks {
			drawBlockSVG(canvas, b, opts)
		}
		canvas.Gend()
	}

	if len(c.Connectors) > 0 {
		canvas.Gid("connectors")
		for _, conn := range c.Connectors {
			canvas.Path(conn.D, attr("id", conn.ID), `class="connector"`)
		}
		canvas.Gend()
	}

	canvas.End()
	return nil
}

func drawBlockSVG(canvas *svg.SVG, b *board.Block, opts SVGOptions) {
	attrs := []string{attr("id", b.ID), attr("class", strings.Join(b.Classes(), " "))}
	if opts.BlockAttrs != nil {
		attrs = append(attrs, opts.BlockAttrs(b)...)
	}
	canvas.Group(attrs...)

	s := b.Surface
	x, y, w := int(s.X), int(s.Y), int(s.W)
	canvas.Roundrect(x, y, w, int(b.Rect.Height), int(b.Rect.RX), int(b.Rect.RY),
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%s", orNone(b.Rect.Fill), orNone(b.Rect.Stroke), num(b.Rect.StrokeWidth)))

	textStyle := "fill:" + orDefault(b.TextFill, "black")
	if b.TextShadow != "" {
		textStyle += ";text-shadow:" + b.TextShadow
	}
	canvas.Text(x+int(math.Round(s.W*0.95)), y+int(math.Round(s.H*0.2)), b.Value,
		`class="value"`, `text-anchor="end"`, attr("style", textStyle))

	headStyle := "fill:" + orDefault(b.TextFill, "black")
	if b.HeaderStyle != "" {
		headStyle += ";" + strings.ReplaceAll(b.HeaderStyle, "color:", "fill:")
	}
	canvas.Text(x+10, y+42, truncate(b.Header, 28), `class="headTitle"`, attr("style", headStyle))

	track := math.Min(190, s.W-20)
	for i, p := range b.Progress {
		py := y + int(math.Round(s.H*(0.6+0.2*float64(i))))
		canvas.Rect(x+10, py, int(track), 8, fmt.Sprintf("fill:%s", css(colorTrack)))
		canvas.Rect(x+10, py, int(track*clampPercent(p.WidthPercent)/100), 8,
			attr("class", p.Variant), fmt.Sprintf("fill:%s", css(progressColor(p.Variant))))
	}

	canvas.Gend()
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func attr(k, v string) string {
	return k + `="` + html.EscapeString(v) + `"`
}

func orNone(s string) string {
	return orDefault(s, "none")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func num(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
