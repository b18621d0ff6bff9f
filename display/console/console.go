// Package console prints the per-sample status block to the terminal.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GameboyEsc95/VMAS/collectors"
	"github.com/GameboyEsc95/VMAS/display/widgets"
	"github.com/GameboyEsc95/VMAS/status"
)

// clearScreen homes the cursor and clears the display.
const clearScreen = "\x1b[H\x1b[2J"

const timeLayout = "2006-01-02 15:04:05"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4B5563")).
			Padding(0, 1)
)

// Options configures a Console.
type Options struct {
	// Clear redraws in place instead of scrolling. Only meaningful on a TTY.
	Clear bool
	// Width is the available terminal width; 0 means TerminalWidth().
	Width int
	// HistorySize is the sparkline width in cells.
	HistorySize int
}

// Console writes status blocks to an io.Writer.
type Console struct {
	out         io.Writer
	clear       bool
	width       int
	historySize int
	evaluator   *status.Evaluator
}

// New creates a Console writing to out.
func New(out io.Writer, opts Options) *Console {
	width := opts.Width
	if width <= 0 {
		width = TerminalWidth()
	}
	size := opts.HistorySize
	if size <= 0 {
		size = 10
	}
	return &Console{
		out:         out,
		clear:       opts.Clear,
		width:       width,
		historySize: size,
		evaluator:   status.NewEvaluator(status.DefaultEvaluatorConfig()),
	}
}

// Show prints the status block for s. history holds recent CPU values, oldest
// first. Write errors are ignored; the console is best effort.
func (c *Console) Show(s collectors.Sample, history []float64) {
	var b strings.Builder
	if c.clear {
		b.WriteString(clearScreen)
	}
	b.WriteString(c.Render(s, history))
	b.WriteString("\n")
	_, _ = io.WriteString(c.out, b.String())
}

// Render returns the status block without screen control sequences.
func (c *Console) Render(s collectors.Sample, history []float64) string {
	gaugeWidth := 20
	if c.width >= 100 {
		gaugeWidth = 40
	}

	gauge := func(label string, pct float64) string {
		cfg := widgets.DefaultGaugeConfig()
		cfg.Label = label
		cfg.LabelWidth = 6
		cfg.Width = gaugeWidth
		cfg.Percent = pct
		return widgets.RenderGauge(cfg)
	}

	lines := []string{
		titleStyle.Render("vmas") + "  " + dimStyle.Render(s.Timestamp.Local().Format(timeLayout)),
		statusLine(c.evaluator.Evaluate(&s)),
		"",
		gauge("CPU", s.CPU),
		gauge("Memory", s.Memory),
		gauge("Disk", s.Disk),
	}

	if len(history) > 0 {
		spark := widgets.RenderPercentSparkline(history, c.historySize, widgets.GaugeColor(s.CPU, 70, 90))
		lines = append(lines, fmt.Sprintf("%-6s %s", "Trend", spark))
	}

	lines = append(lines, "", widgets.RenderProcessTable(widgets.ProcessTableConfig{
		Processes:   s.TopProcesses,
		HeaderStyle: headerStyle,
	}))

	return boxStyle.Render(strings.Join(lines, "\n"))
}

func statusLine(st status.SystemStatus) string {
	c := widgets.ColorOK
	switch st.Overall {
	case status.LevelWarning:
		c = widgets.ColorWarning
	case status.LevelCritical:
		c = widgets.ColorDanger
	}
	line := lipgloss.NewStyle().Foreground(c).Bold(true).Render(st.Overall.String())
	if st.Overall != status.LevelHealthy {
		line += " " + dimStyle.Render("("+st.Reason+")")
	}
	return fmt.Sprintf("%-6s %s", "Status", line)
}
