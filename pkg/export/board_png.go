package export

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/vanderheijden86/stageboard/pkg/board"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

// WriteBoardPNG rasterizes the container. The grey overlay is drawn as a
// translucent wash over inactive blocks.
func WriteBoardPNG(w io.Writer, c *board.Container, title string) error {
	if c == nil {
		return fmt.Errorf("no rendered board to export")
	}
	width, height := canvasSize(c)
	dc := gg.NewContext(width, height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if title != "" {
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(title, 8, 8, 0, 0.5)
	}

	for _, cc := range c.Columns {
		dc.SetColor(colorText)
		dc.DrawStringAnchored(cc.Header, cc.Bounds.X+cc.Bounds.W/2, board.HeaderBand*0.6, 0.5, 0.5)
		for _, b := range cc.Blocks {
			drawBlockPNG(dc, b)
		}
	}

	dc.SetColor(colorConnector)
	dc.SetLineWidth(2)
	for _, conn := range c.Connectors {
		a, b := c.Find(conn.From), c.Find(conn.To)
		if a == nil || b == nil {
			continue
		}
		x1, y1 := a.Bounds.Center()
		x2, y2 := b.Bounds.Center()
		dc.MoveTo(x1, y1)
		dc.LineTo(a.Bounds.Right(), y1)
		dc.LineTo(b.Bounds.X, y2)
		dc.LineTo(x2, y2)
		dc.Stroke()
	}

	return dc.EncodePNG(w)
}

func drawBlockPNG(dc *gg.Context, b *board.Block) {
	s := b.Surface
	fill := parseColor(b.Rect.Fill, namedColors["white"])
	stroke := parseColor(b.Rect.Stroke, colorSubtle)

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(s.X, s.Y, s.W, b.Rect.Height, b.Rect.RX)
	dc.Fill()
	if b.Rect.Stroke != "" {
		dc.SetColor(stroke)
		dc.SetLineWidth(b.Rect.StrokeWidth)
		dc.DrawRoundedRectangle(s.X, s.Y, s.W, b.Rect.Height, b.Rect.RX)
		dc.Stroke()
	}

	text := parseColor(b.TextFill, namedColors["black"])
	dc.SetColor(text)
	dc.DrawStringAnchored(b.Value, s.X+s.W*0.95, s.Y+s.H*0.2, 1, 0.5)
	dc.DrawStringAnchored(truncate(b.Header, int(s.W/7)-2), s.X+10, s.Y+36, 0, 0.5)

	track := math.Min(190, s.W-20)
	for i, p := range b.Progress {
		py := s.Y + s.H*(0.6+0.2*float64(i))
		dc.SetColor(colorTrack)
		dc.DrawRectangle(s.X+10, py, track, 8)
		dc.Fill()
		dc.SetColor(progressColor(p.Variant))
		dc.DrawRectangle(s.X+10, py, track*clampPercent(p.WidthPercent)/100, 8)
		dc.Fill()
	}

	if b.Greyed {
		dc.SetColor(color.NRGBA{0xf9, 0xfa, 0xfb, 0x8c})
		dc.DrawRoundedRectangle(s.X-1, s.Y-1, s.W+2, b.Rect.Height+2, b.Rect.RX)
		dc.Fill()
	}
}
