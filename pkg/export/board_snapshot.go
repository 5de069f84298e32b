package export

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vanderheijden86/stageboard/pkg/board"
	"github.com/vanderheijden86/stageboard/pkg/metrics"
)

// BoardSnapshotOptions controls static board export.
type BoardSnapshotOptions struct {
	Path      string           // Output path; format inferred from extension when Format empty
	Format    string           // "svg", "png" or "md" (case-insensitive). If empty, inferred from Path.
	Title     string           // Optional title drawn above the columns
	Container *board.Container // Rendered board, interaction state included
	DataHash  string           // Hash of the input snapshot for provenance
}

// Supported snapshot formats.
const (
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatMarkdown = "md"
)

// InferFormat resolves the output format from an explicit value or the
// path's extension. A path without extension gets ".svg" appended.
func InferFormat(format, path string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = FormatSVG
		case ".png":
			format = FormatPNG
		case ".md", ".markdown":
			format = FormatMarkdown
		default:
			format = FormatSVG
			if path != "" && filepath.Ext(path) == "" {
				path += ".svg"
			}
		}
	}
	if format == "markdown" {
		format = FormatMarkdown
	}
	switch format {
	case FormatSVG, FormatPNG, FormatMarkdown:
		return format, path, nil
	default:
		return "", path, fmt.Errorf("unsupported format %q (want svg, png or md)", format)
	}
}

// SaveBoardSnapshot writes the rendered board to opts.Path as SVG or PNG.
// Markdown needs the view model and is handled by WriteBoardMarkdown.
func SaveBoardSnapshot(opts BoardSnapshotOptions) error {
	defer metrics.Timer(metrics.ExportSnapshot)()

	if opts.Container == nil {
		return fmt.Errorf("no rendered board to export")
	}
	format, path, err := InferFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	if format == FormatMarkdown {
		return fmt.Errorf("markdown export needs the view model; use WriteBoardMarkdown")
	}
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	var buf bytes.Buffer
	switch format {
	case FormatSVG:
		err = WriteBoardSVG(&buf, opts.Container, SVGOptions{Title: opts.Title, DataHash: opts.DataHash})
	case FormatPNG:
		err = WriteBoardPNG(&buf, opts.Container, opts.Title)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// canvasSize is the drawing size for a container: the viewport, grown to fit
// overflowing content.
func canvasSize(c *board.Container) (int, int) {
	w := int(c.Viewport.Width)
	h := int(c.Viewport.Height)
	if ch := int(c.ContentHeight + board.BlockPadding); ch > h {
		h = ch
	}
	return w, h
}

var (
	colorBackdrop  = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorConnector = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
	colorText      = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle    = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorTrack     = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	colorSelected  = color.RGBA{0x33, 0x7a, 0xb7, 0xff}
	colorSuccess   = color.RGBA{0x5c, 0xb8, 0x5c, 0xff}
)

var namedColors = map[string]color.RGBA{
	"white":  {0xff, 0xff, 0xff, 0xff},
	"black":  {0x00, 0x00, 0x00, 0xff},
	"orange": {0xff, 0xa5, 0x00, 0xff},
	"grey":   {0x80, 0x80, 0x80, 0xff},
	"gray":   {0x80, 0x80, 0x80, 0xff},
}

// parseColor understands the handful of named colors the board uses plus
// #rgb and #rrggbb. Anything else falls back to def.
func parseColor(s string, def color.RGBA) color.RGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 || !strings.HasPrefix(s, "#") {
		return def
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return def
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}

func progressColor(variant string) color.RGBA {
	if variant == board.VariantSuccess {
		return colorSuccess
	}
	return colorSelected
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
