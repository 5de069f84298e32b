package board

import (
	"github.com/vanderheijden86/stageboard/pkg/debug"
	"github.com/vanderheijden86/stageboard/pkg/metrics"
	"github.com/vanderheijden86/stageboard/pkg/model"
	"github.com/vanderheijden86/stageboard/pkg/viewmodel"
)

// Options tune a render pass.
type Options struct {
	// Progress is the bar every tile starts with; nil means DefaultProgress.
	Progress     *ProgressBar
	ProgressMode ProgressMode

	// Connectors are drawn when DrawConnectors is set.
	Connectors     []viewmodel.Pair
	DrawConnectors bool
}

// DefaultOptions returns fixed 40% progress bars and no connectors.
func DefaultOptions() Options {
	p := DefaultProgress
	return Options{Progress: &p, ProgressMode: ProgressFixed}
}

// Result is what a render pass produced.
type Result struct {
	// Blocks are the handles of every rendered tile, in tile order.
	Blocks     []*Block
	Connectors []Connector
	// Skipped holds tiles whose column matches no container.
	Skipped []model.Tile
	// Overflow is set when the tallest column exceeds the viewport height.
	Overflow bool
}

// Render clears c and materializes one block per tile into its column
// container, in input order. All blocks start inactive and greyed with the
// pointer-leave handler attached.
func Render(tiles []model.Tile, c *Container, opts Options) Result {
	defer metrics.Timer(metrics.RenderBoard)()

	bar := DefaultProgress
	if opts.Progress != nil {
		bar = *opts.Progress
	}
	c.Reset()
	c.opts = opts

	var colMax map[model.Column]float64
	if opts.ProgressMode == ProgressShare {
		colMax = columnMaxima(tiles)
	}

	var res Result
	for _, t := range tiles {
		cc := c.Column(t.Column)
		if cc == nil {
			debug.Log("render: tile %q has unknown column %d, skipped", t.ID, int(t.Column))
			res.Skipped = append(res.Skipped, t)
			continue
		}
		b := newBlock(t)
		b.Progress = progressFor(t, bar, opts.ProgressMode, colMax)
		cc.Blocks = append(cc.Blocks, b)
		c.blocks = append(c.blocks, b)
	}

	c.layout()
	res.Blocks = c.blocks
	res.Connectors = c.Connectors
	res.Overflow = c.Scroll
	debug.Log("render: %d blocks, %d connectors, overflow=%v", len(res.Blocks), len(res.Connectors), res.Overflow)
	return res
}

func newBlock(t model.Tile) *Block {
	return &Block{
		ID:     t.ID,
		Tile:   t,
		Column: t.Column,
		Rect: Shape{
			Fill:        FillWhite,
			Stroke:      t.Column.Stroke(),
			StrokeWidth: StrokeWidth,
			RX:          RectRadius,
			RY:          RectRadius,
			Height:      RectHeight,
		},
		Value:      formatNum(t.Value),
		Header:     t.Label,
		State:      InactiveDimmed,
		Greyed:     true,
		leaveBound: true,
	}
}

// Relayout recomputes geometry, connectors and overflow for a new viewport
// without touching interaction state.
func (c *Container) Relayout(viewport Size) {
	if viewport.Width > 0 && viewport.Height > 0 {
		c.Viewport = viewport
	}
	c.layout()
}

// layout places columns side by side at a quarter of the viewport width each
// and stacks blocks top to bottom under the header band.
func (c *Container) layout() {
	colW := c.Viewport.Width / model.ColumnCount
	tallest := 0
	for i, cc := range c.Columns {
		x := float64(i) * colW
		for j, b := range cc.Blocks {
			b.Bounds = Rect{X: x, Y: HeaderBand + float64(j)*BlockHeight, W: colW, H: BlockHeight}
			inner := colW - 2*BlockPadding
			b.Surface = Rect{
				X: b.Bounds.X + BlockPadding,
				Y: b.Bounds.Y + BlockPadding,
				W: inner * SurfaceRatio,
				H: SurfaceHeight,
			}
		}
		if len(cc.Blocks) > tallest {
			tallest = len(cc.Blocks)
		}
		cc.Bounds = Rect{X: x, Y: 0, W: colW, H: HeaderBand + float64(len(cc.Blocks))*BlockHeight}
	}
	c.ContentHeight = HeaderBand + float64(tallest)*BlockHeight
	c.Scroll = c.ContentHeight > c.Viewport.Height

	c.Connectors = nil
	if c.opts.DrawConnectors {
		c.Connectors = connect(c.blocks, c.opts.Connectors)
	}
}
