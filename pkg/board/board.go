// Package board is the render and interaction layer: it materializes tiles
// into four column containers, lays them out, draws connectors between
// related tiles and runs the single-active-tile state machine.
//
// The container is an in-memory tree, not a presentation document. Render
// returns the block handles it created and every interaction handler takes
// those handles explicitly; nothing is looked up by selector.
package board

import (
	"github.com/vanderheijden86/stageboard/pkg/model"
)

// Layout constants, in CSS pixels.
const (
	HeaderBand    = 40.0  // column heading above the first block
	BlockPadding  = 10.0  // padding around each block's drawing surface
	SurfaceHeight = 130.0 // drawing surface height
	BlockHeight   = SurfaceHeight + 2*BlockPadding
	SurfaceRatio  = 0.8 // surface width as a share of the block's inner width
	RectHeight    = 90.0
	RectRadius    = 10.0
	StrokeWidth   = 2.5
)

// Colors used by the activation rules.
const (
	FillWhite     = "white"
	TextBlack     = "black"
	TextWhite     = "white"
	ContrastGlow  = "black 0px 0px 3px"
	HeaderNeutral = "text-shadow:none"
	HeaderOnSolid = "color:white;text-shadow:black 0px 0px 3px"
)

// Size is a viewport size.
type Size struct {
	Width  float64
	Height float64
}

// DefaultViewport is used when a host has not reported its size yet.
var DefaultViewport = Size{Width: 1200, Height: 800}

// Rect is a laid-out box in container coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the midpoint of r.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Shape is the rounded rectangle drawn on a block's surface.
type Shape struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
	RX, RY      float64
	Height      float64
}

// Block is one rendered tile.
type Block struct {
	ID     string
	Tile   model.Tile
	Column model.Column

	Rect     Shape
	Value    string // right-aligned value label
	Header   string
	Progress []ProgressBar

	State       State
	Greyed      bool // grey overlay shown while inactive and not hovered
	Muted       bool // neutral "not selected" variant after another tile was clicked
	TextFill    string
	TextShadow  string
	HeaderStyle string
	Fades       int // completed fade-out/fade-in transitions

	Bounds  Rect
	Surface Rect

	leaveBound bool
}

// LeaveBound reports whether the pointer-leave handler is still attached.
func (b *Block) LeaveBound() bool {
	return b.leaveBound
}

// Classes returns the block's class list in the order the stylesheet expects.
func (b *Block) Classes() []string {
	classes := []string{"SVGcontainer"}
	if b.Greyed {
		classes = append(classes, "grey")
	}
	if b.State == Active {
		classes = append(classes, "active")
	} else {
		classes = append(classes, "inactive")
	}
	if b.Muted {
		classes = append(classes, "strong-grey")
	}
	return classes
}

// ColumnContainer holds the blocks of one stage column.
type ColumnContainer struct {
	Column model.Column
	Header string
	Blocks []*Block
	Bounds Rect
}

// ElementID returns "col-N".
func (cc *ColumnContainer) ElementID() string {
	return cc.Column.ElementID()
}

// Container is the mount point: one row of four column containers plus the
// connector layer.
type Container struct {
	Viewport   Size
	Columns    [model.ColumnCount]*ColumnContainer
	Connectors []Connector

	// ContentHeight is the height of the tallest column including the header band.
	ContentHeight float64
	// Scroll is set when content overflows the viewport vertically.
	Scroll bool

	blocks []*Block
	opts   Options
}

// NewContainer creates an empty container with the four stage columns.
func NewContainer(viewport Size) *Container {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = DefaultViewport
	}
	c := &Container{Viewport: viewport}
	for i, col := range model.Columns {
		c.Columns[i] = &ColumnContainer{Column: col, Header: col.Name()}
	}
	return c
}

// Reset removes every rendered block and connector.
func (c *Container) Reset() {
	for _, cc := range c.Columns {
		cc.Blocks = nil
	}
	c.blocks = nil
	c.Connectors = nil
	c.Scroll = false
	c.ContentHeight = HeaderBand
}

// Column returns the container for col, or nil for an unknown column.
func (c *Container) Column(col model.Column) *ColumnContainer {
	if i := col.Index(); i >= 0 {
		return c.Columns[i]
	}
	return nil
}

// Blocks returns the handles of the current render pass in tile order.
func (c *Container) Blocks() []*Block {
	return c.blocks
}

// Find returns the first block with the given id.
func (c *Container) Find(id string) *Block {
	return FindBlock(c.blocks, id)
}

// FindBlock returns the first block in blocks with the given id.
func FindBlock(blocks []*Block, id string) *Block {
	for _, b := range blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// BlockAt returns the block under the point, if any.
func (c *Container) BlockAt(x, y float64) *Block {
	for _, b := range c.blocks {
		if b.Bounds.Contains(x, y) {
			return b
		}
	}
	return nil
}
