package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/stageboard/pkg/board"
	"github.com/vanderheijden86/stageboard/pkg/viewmodel"
)

func renderedContainer(t *testing.T, width, body int) *board.Container {
	t.Helper()
	vm := viewmodel.Build(loaded(sampleRows()).Snap, viewmodel.Options{})
	c := board.NewContainer(boardViewport(width, body))
	board.Render(vm.Tiles, c, board.DefaultOptions())
	return c
}

func TestBlockAt(t *testing.T) {
	c := renderedContainer(t, 120, 38)

	tests := []struct {
		name     string
		col, row int
		want     string
	}{
		{"column title row", 5, 0, ""},
		{"first recruit card top border", 0, 1, "Sourced"},
		{"first recruit card bottom border", 29, 6, "Sourced"},
		{"second recruit card", 10, 7, "Screened"},
		{"below last recruit card", 10, 13, ""},
		{"develop card", 30, 3, "Onboard1"},
		{"launch card", 89, 2, "Ship"},
		{"empty grow column", 100, 2, ""},
		{"right of the board", 500, 2, ""},
		{"negative column", -1, 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ""
			if b := blockAt(c, 120, tt.col, tt.row); b != nil {
				got = b.ID
			}
			if got != tt.want {
				t.Errorf("blockAt(%d, %d) = %q, want %q", tt.col, tt.row, got, tt.want)
			}
		})
	}
}

func TestBoardViewport(t *testing.T) {
	if got := boardViewport(0, 10); got != board.DefaultViewport {
		t.Errorf("zero width = %+v", got)
	}
	got := boardViewport(100, 1+2*CardLines)
	if got.Width != 800 {
		t.Errorf("width = %v", got.Width)
	}
	if want := board.HeaderBand + 2*board.BlockHeight; got.Height != want {
		t.Errorf("height = %v, want %v", got.Height, want)
	}
}

func TestRenderCard_FixedHeight(t *testing.T) {
	c := renderedContainer(t, 120, 38)
	theme := TestTheme()

	for _, id := range []string{"Sourced", "Onboard1"} {
		b := c.Find(id)
		for _, focused := range []bool{false, true} {
			card := renderCard(b, theme, 30, focused)
			if h := lipgloss.Height(card); h != CardLines {
				t.Errorf("%s focused=%v: height %d, want %d", id, focused, h, CardLines)
			}
			if w := lipgloss.Width(card); w != 29 {
				t.Errorf("%s focused=%v: width %d, want 29", id, focused, w)
			}
		}
	}
}

func TestRenderCard_NarrowColumn(t *testing.T) {
	c := renderedContainer(t, 40, 38)
	card := renderCard(c.Find("Sourced"), TestTheme(), columnWidth(40), false)
	if h := lipgloss.Height(card); h != CardLines {
		t.Errorf("height %d, want %d", h, CardLines)
	}
}

func TestColumnWidth(t *testing.T) {
	if got := columnWidth(120); got != 30 {
		t.Errorf("columnWidth(120) = %d", got)
	}
	if got := columnWidth(20); got != MinColumnWidth {
		t.Errorf("columnWidth(20) = %d", got)
	}
}
