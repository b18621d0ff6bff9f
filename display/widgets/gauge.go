// Package widgets renders the small text widgets of the vmas console view:
// utilisation gauges, the CPU sparkline and the top process table.
package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Gauge colors by utilisation band.
var (
	ColorOK      = lipgloss.Color("#22C55E")
	ColorWarning = lipgloss.Color("#EAB308")
	ColorDanger  = lipgloss.Color("#EF4444")
)

// GaugeConfig controls a horizontal bar gauge.
type GaugeConfig struct {
	// Width is the bar width in cells.
	Width int
	// Percent is the value, clamped to 0-100.
	Percent float64
	// Label is shown left of the bar, padded to LabelWidth.
	Label      string
	LabelWidth int
	// ShowPercent appends "XX.X%".
	ShowPercent bool
	// ThresholdWarning and ThresholdDanger switch the bar color.
	ThresholdWarning float64
	ThresholdDanger  float64
}

// DefaultGaugeConfig returns a 20-cell gauge warning at 70% and alarming at
// 90%.
func DefaultGaugeConfig() GaugeConfig {
	return GaugeConfig{
		Width:            20,
		ShowPercent:      true,
		ThresholdWarning: 70,
		ThresholdDanger:  90,
	}
}

// GaugeColor returns the band color for percent.
func GaugeColor(percent, warning, danger float64) lipgloss.Color {
	switch {
	case percent >= danger:
		return ColorDanger
	case percent >= warning:
		return ColorWarning
	default:
		return ColorOK
	}
}

// RenderGauge renders "[Label] ████████░░░░ [XX.X%]".
func RenderGauge(cfg GaugeConfig) string {
	percent := cfg.Percent
	if math.IsNaN(percent) {
		percent = 0
	}
	percent = math.Max(0, math.Min(100, percent))

	width := cfg.Width
	if width <= 0 {
		width = 20
	}

	filled := int(math.Round(percent / 100 * float64(width)))
	style := lipgloss.NewStyle().Foreground(GaugeColor(percent, cfg.ThresholdWarning, cfg.ThresholdDanger))
	bar := style.Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)

	var sb strings.Builder
	if cfg.Label != "" {
		sb.WriteString(cfg.Label)
		if pad := cfg.LabelWidth - len([]rune(cfg.Label)); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
		sb.WriteString(" ")
	}
	sb.WriteString(bar)
	if cfg.ShowPercent {
		sb.WriteString(fmt.Sprintf(" %5.1f%%", percent))
	}
	return sb.String()
}
