package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks holds the eight block heights, lowest first.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// SparklineConfig controls a unicode sparkline.
type SparklineConfig struct {
	// Data points, most recent last.
	Data []float64
	// Width in cells. 0 means len(Data). Shorter series are left-padded.
	Width int
	// Min and Max fix the scale. Equal values auto-scale to the data.
	Min float64
	Max float64
	// Label is shown before the sparkline.
	Label string
	Color lipgloss.Color
}

// RenderSparkline renders cfg.Data as block characters.
func RenderSparkline(cfg SparklineConfig) string {
	if len(cfg.Data) == 0 {
		return ""
	}

	data := cfg.Data
	width := cfg.Width
	if width <= 0 {
		width = len(data)
	}
	if width < len(data) {
		data = data[len(data)-width:]
	}

	minVal, maxVal := cfg.Min, cfg.Max
	if minVal == maxVal {
		minVal, maxVal = data[0], data[0]
		for _, v := range data {
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}

	runes := make([]rune, 0, len(data))
	for _, v := range data {
		if minVal == maxVal {
			runes = append(runes, sparkBlocks[len(sparkBlocks)/2])
			continue
		}
		n := math.Max(0, math.Min(1, (v-minVal)/(maxVal-minVal)))
		runes = append(runes, sparkBlocks[int(n*float64(len(sparkBlocks)-1))])
	}

	out := string(runes)
	if width > len(data) {
		out = strings.Repeat(" ", width-len(data)) + out
	}
	if cfg.Color != "" {
		out = lipgloss.NewStyle().Foreground(cfg.Color).Render(out)
	}
	if cfg.Label != "" {
		out = cfg.Label + " " + out
	}
	return out
}

// RenderPercentSparkline renders utilisation history on a fixed 0-100 scale.
func RenderPercentSparkline(data []float64, width int, color lipgloss.Color) string {
	return RenderSparkline(SparklineConfig{Data: data, Width: width, Min: 0, Max: 100, Color: color})
}
