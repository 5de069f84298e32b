package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/stageboard/pkg/export"
	"github.com/vanderheijden86/stageboard/pkg/viewmodel"
)

// helpMarkdown describes the keys and the tile states.
func helpMarkdown(k keyMap) string {
	var sb strings.Builder
	sb.WriteString("# Stage Board\n\n")
	sb.WriteString("| Key | Action |\n|---|---|\n")
	for _, group := range k.FullHelp() {
		for _, b := range group {
			h := b.Help()
			fmt.Fprintf(&sb, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}
	sb.WriteString("\n## Tiles\n\n")
	sb.WriteString("- Tiles start dimmed. Hovering brightens a tile until the pointer leaves.\n")
	sb.WriteString("- Activating a tile paints it in its stage color and mutes the others.\n")
	sb.WriteString("- An active tile stays active until another tile is activated.\n")
	sb.WriteString("- Clicking a tile also works with the mouse.\n")
	return sb.String()
}

// renderMarkdown renders md for the terminal, falling back to the raw text.
func renderMarkdown(md string, width int) string {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// reportMarkdown is the board report shown by the report panel.
func reportMarkdown(vm viewmodel.ViewModel, title string) string {
	return export.BoardMarkdown(vm, title)
}
