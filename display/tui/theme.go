package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/GameboyEsc95/VMAS/status"
)

// Color palette.
const (
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorOK        = lipgloss.Color("#10B981")
	colorWarn      = lipgloss.Color("#F59E0B")
	colorCrit      = lipgloss.Color("#EF4444")
)

var (
	styleActiveTab = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 2)

	styleInactiveTab = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	styleHeader = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorMuted).
			MarginBottom(1)

	styleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	styleContent = lipgloss.NewStyle().Padding(0, 2)

	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorSecondary)

	styleLabel = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)
)

func levelStyle(l status.Level) lipgloss.Style {
	switch l {
	case status.LevelHealthy:
		return lipgloss.NewStyle().Foreground(colorOK)
	case status.LevelWarning:
		return lipgloss.NewStyle().Foreground(colorWarn)
	case status.LevelCritical:
		return lipgloss.NewStyle().Bold(true).Foreground(colorCrit)
	default:
		return styleMuted
	}
}
