package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/stageboard/pkg/board"
	"github.com/vanderheijden86/stageboard/pkg/model"
)

// pxPerCell is the board width one terminal column stands for.
const pxPerCell = 8.0

// columnWidth returns the cell width of one stage column.
func columnWidth(total int) int {
	w := total / model.ColumnCount
	if w < MinColumnWidth {
		w = MinColumnWidth
	}
	return w
}

// boardViewport converts the terminal body into a board viewport so that the
// board's own overflow rule matches what fits on screen: one card of
// CardLines rows stands for one BlockHeight.
func boardViewport(width, bodyLines int) board.Size {
	if width <= 0 || bodyLines <= HeaderLines {
		return board.DefaultViewport
	}
	return board.Size{
		Width:  float64(width) * pxPerCell,
		Height: board.HeaderBand + float64(bodyLines-HeaderLines)*board.BlockHeight/CardLines,
	}
}

// blockAt maps a cell of the board content (row 0 is the column title row)
// to the block drawn there.
func blockAt(c *board.Container, width, col, row int) *board.Block {
	if c == nil || width <= 0 || col < 0 || row < HeaderLines {
		return nil
	}
	colW := columnWidth(width)
	idx := col / colW
	if idx >= model.ColumnCount {
		return nil
	}
	colPx := c.Viewport.Width / model.ColumnCount
	x := (float64(idx) + (float64(col%colW)+0.5)/float64(colW)) * colPx
	y := board.HeaderBand + (float64(row-HeaderLines)+0.5)*board.BlockHeight/CardLines
	return c.BlockAt(x, y)
}

// renderBoard draws the four columns side by side.
func renderBoard(c *board.Container, theme Theme, width int, focused string) string {
	colW := columnWidth(width)
	cols := make([]string, 0, model.ColumnCount)
	for _, cc := range c.Columns {
		lines := []string{theme.ColumnTitle.Render(center(cc.Header, colW))}
		for _, b := range cc.Blocks {
			lines = append(lines, renderCard(b, theme, colW, b.ID == focused))
		}
		cols = append(cols, theme.Renderer.NewStyle().Width(colW).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// renderCard draws one block. Everything visual comes from the block's
// current paint so the card always shows what the interaction handlers set.
func renderCard(b *board.Block, theme Theme, colW int, focused bool) string {
	// One cell of gap, two of border, two of padding.
	inner := colW - 5
	if inner < 1 {
		inner = 1
	}

	style := theme.Card.
		Width(colW - 3).
		BorderForeground(CSSColor(b.Rect.Stroke))
	if focused {
		style = style.BorderStyle(lipgloss.ThickBorder())
	}

	solid := b.Rect.Fill != "" && b.Rect.Fill != board.FillWhite
	switch {
	case solid:
		style = style.Background(CSSColor(b.Rect.Fill)).Bold(true)
		if b.TextFill != "" {
			style = style.Foreground(CSSColor(b.TextFill))
		}
	case b.Muted:
		style = style.Foreground(theme.Muted)
	}
	if b.Greyed {
		style = style.Faint(true)
	}

	lines := []string{
		truncateRunesHelper(b.Header, inner, "…"),
		padLeft(truncateRunesHelper(b.Value, inner, "…"), inner),
	}
	for i := 0; i < 2; i++ {
		if i < len(b.Progress) {
			lines = append(lines, progressLine(b.Progress[i], theme, inner))
		} else {
			lines = append(lines, "")
		}
	}
	return style.Render(strings.Join(lines, "\n"))
}

func progressLine(p board.ProgressBar, theme Theme, width int) string {
	bar := progress.New(
		progress.WithSolidFill(theme.BarColor(p.Variant)),
		progress.WithoutPercentage(),
		progress.WithWidth(width),
	)
	pct := p.WidthPercent / 100
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	return bar.ViewAs(pct)
}
