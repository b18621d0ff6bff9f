// Package color decides whether vmas console output is styled.
//
// It implements the NO_COLOR convention (https://no-color.org/) and pipe
// detection. When color is off, lipgloss is switched to the Ascii profile so
// every styled render is plain text.
package color

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Mode is the configured color policy.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeAlways Mode = "always"
	ModeNever  Mode = "never"
)

// ParseMode parses a display.color setting. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeAlways, ModeNever:
		return m, nil
	default:
		return "", fmt.Errorf("color: unknown mode %q (want auto, always or never)", s)
	}
}

// StdoutIsTerminal reports whether stdout is a terminal, including Cygwin
// and MSYS ptys.
func StdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ShouldDisableColor reports whether auto mode turns color off: NO_COLOR is
// set (to any value), or stdout is not a terminal.
func ShouldDisableColor() bool {
	return shouldDisable(os.LookupEnv, StdoutIsTerminal)
}

func shouldDisable(lookup func(string) (string, bool), isTTY func() bool) bool {
	if _, ok := lookup("NO_COLOR"); ok {
		return true
	}
	return !isTTY()
}

// Apply configures the global lipgloss renderer for mode and reports whether
// color is enabled.
func Apply(mode Mode) bool {
	switch mode {
	case ModeNever:
		ForceDisable()
		return false
	case ModeAlways:
		lipgloss.SetColorProfile(termenv.TrueColor)
		return true
	}

	if ShouldDisableColor() {
		ForceDisable()
		return false
	}
	return true
}

// ForceDisable switches lipgloss to plain text output.
func ForceDisable() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// StripANSI removes ANSI escape sequences from s.
func StripANSI(s string) string {
	var result []byte
	inEscape := false
	for i := 0; i < len(s); i++ {
		if inEscape {
			if (s[i] >= 'a' && s[i] <= 'z') || (s[i] >= 'A' && s[i] <= 'Z') || s[i] == '~' {
				inEscape = false
			}
			continue
		}
		if s[i] == '\x1b' {
			inEscape = true
			continue
		}
		result = append(result, s[i])
	}
	return string(result)
}
