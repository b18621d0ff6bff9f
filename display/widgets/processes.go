package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GameboyEsc95/VMAS/collectors"
	"github.com/GameboyEsc95/VMAS/internal/format"
)

// ProcessTableConfig controls the top process table.
type ProcessTableConfig struct {
	Processes []collectors.ProcessInfo
	// NameWidth caps the name column; longer names get an ellipsis.
	NameWidth   int
	HeaderStyle lipgloss.Style
}

// DefaultNameWidth is the process name column width.
const DefaultNameWidth = 24

// RenderProcessTable renders a PID / NAME / CPU / MEM table. An empty list
// renders a single placeholder line.
func RenderProcessTable(cfg ProcessTableConfig) string {
	nameWidth := cfg.NameWidth
	if nameWidth <= 0 {
		nameWidth = DefaultNameWidth
	}

	if len(cfg.Processes) == 0 {
		return "no process data"
	}

	lines := make([]string, 0, len(cfg.Processes)+1)
	header := fmt.Sprintf("%7s  %-*s  %7s  %10s", "PID", nameWidth, "NAME", "CPU", "MEM")
	lines = append(lines, cfg.HeaderStyle.Render(header))

	for _, p := range cfg.Processes {
		name := format.TruncateWithEllipsis(p.Name, nameWidth)
		if pad := nameWidth - len([]rune(name)); pad > 0 {
			name += strings.Repeat(" ", pad)
		}
		lines = append(lines, fmt.Sprintf("%7d  %s  %7s  %10s",
			p.PID, name, format.Percent(p.CPU), format.Megabytes(p.MemMB)))
	}
	return strings.Join(lines, "\n")
}
