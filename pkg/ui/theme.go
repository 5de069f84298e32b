package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Progress bar fills, first and second bar.
	BarSelected string
	BarSuccess  string

	Base        lipgloss.Style
	Header      lipgloss.Style
	ColumnTitle lipgloss.Style
	Card        lipgloss.Style
	Footer      lipgloss.Style
	Status      lipgloss.Style
	MutedText   lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive)
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},

		BarSelected: "#337AB7",
		BarSuccess:  "#5CB85C",
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.ColumnTitle = r.NewStyle().Bold(true).Foreground(ColorText)

	t.Card = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	t.Footer = r.NewStyle().Foreground(ColorSubtext)
	t.Status = r.NewStyle().Foreground(ColorInfo)
	t.MutedText = r.NewStyle().Foreground(ColorMuted)

	return t
}

// namedColors covers the CSS color names the board paints with.
var namedColors = map[string]string{
	"white":  "#FFFFFF",
	"black":  "#000000",
	"orange": "#FFA500",
	"grey":   "#808080",
	"gray":   "#808080",
}

// CSSColor maps a board paint value to a terminal color. Empty values have
// no color.
func CSSColor(s string) lipgloss.TerminalColor {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		return ThemeFg(hex)
	}
	if strings.HasPrefix(s, "#") {
		return ThemeFg(s)
	}
	return lipgloss.NoColor{}
}

// BarColor returns the fill for a progress bar variant.
func (t Theme) BarColor(variant string) string {
	if variant == "progress-bar-success" {
		return t.BarSuccess
	}
	return t.BarSelected
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
