package board

import (
	"fmt"

	"github.com/vanderheijden86/stageboard/pkg/model"

	"gonum.org/v1/gonum/floats"
)

// ProgressMode selects how progress bar fill is computed.
type ProgressMode string

const (
	// ProgressFixed uses the configured bar as-is for every tile.
	ProgressFixed ProgressMode = "fixed"
	// ProgressShare fills each bar with the tile's share of its column maximum.
	ProgressShare ProgressMode = "share"
)

// ParseProgressMode maps a config value to a mode; empty means fixed.
func ParseProgressMode(s string) (ProgressMode, error) {
	switch ProgressMode(s) {
	case "", ProgressFixed:
		return ProgressFixed, nil
	case ProgressShare:
		return ProgressShare, nil
	default:
		return "", fmt.Errorf("unknown progress mode %q (want fixed or share)", s)
	}
}

// ProgressBar is the configuration of one progress indicator.
type ProgressBar struct {
	CurrentValue float64 `yaml:"current_value"`
	Min          float64 `yaml:"min"`
	Max          float64 `yaml:"max"`
	WidthPercent float64 `yaml:"width_percent"`
	Variant      string  `yaml:"-"`
}

// DefaultProgress is the 40% bar every tile starts with.
var DefaultProgress = ProgressBar{CurrentValue: 40, Min: 0, Max: 100, WidthPercent: 40}

// Progress bar variants, first and second bar.
const (
	VariantSelected = "progress-bar-selected"
	VariantSuccess  = "progress-bar-success"
)

// Style returns the inline width style of the bar.
func (p ProgressBar) Style() string {
	return "width:" + formatNum(p.WidthPercent) + "%"
}

// Attrs returns the aria value attributes in a stable order.
func (p ProgressBar) Attrs() [][2]string {
	return [][2]string{
		{"aria-valuenow", formatNum(p.CurrentValue)},
		{"aria-valuemin", formatNum(p.Min)},
		{"aria-valuemax", formatNum(p.Max)},
	}
}

// progressFor returns the bars for a tile. Column 2 tiles have none.
func progressFor(t model.Tile, base ProgressBar, mode ProgressMode, colMax map[model.Column]float64) []ProgressBar {
	if t.Column == model.ColDevelop {
		return nil
	}
	bar := base
	if mode == ProgressShare {
		pct := 0.0
		if m := colMax[t.Column]; m > 0 && t.Value > 0 {
			pct = t.Value / m * 100
		}
		bar.CurrentValue = pct
		bar.Min = 0
		bar.Max = 100
		bar.WidthPercent = pct
	}
	first, second := bar, bar
	first.Variant = VariantSelected
	second.Variant = VariantSuccess
	return []ProgressBar{first, second}
}

// columnMaxima returns the largest tile value per column.
func columnMaxima(tiles []model.Tile) map[model.Column]float64 {
	values := make(map[model.Column][]float64)
	for _, t := range tiles {
		values[t.Column] = append(values[t.Column], t.Value)
	}
	out := make(map[model.Column]float64, len(values))
	for col, vs := range values {
		out[col] = floats.Max(vs)
	}
	return out
}
