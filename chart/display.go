package chart

import (
	"os"
	"runtime"

	"github.com/charmbracelet/x/term"
)

// Display reports whether a graphical environment is present to view charts.
type Display interface {
	Available() bool
}

// EnvDisplay probes the process environment. On Linux and the BSDs it looks
// for an X11 or Wayland session; on darwin and windows, where there is no
// such variable, it accepts an interactive terminal as a desktop session.
type EnvDisplay struct {
	Getenv func(string) string
	GOOS   string
	IsTTY  func() bool
}

// NewEnvDisplay returns an EnvDisplay wired to the real environment.
func NewEnvDisplay() *EnvDisplay {
	return &EnvDisplay{
		Getenv: os.Getenv,
		GOOS:   runtime.GOOS,
		IsTTY: func() bool {
			return term.IsTerminal(os.Stdout.Fd())
		},
	}
}

// Available implements Display.
func (d *EnvDisplay) Available() bool {
	switch d.GOOS {
	case "darwin", "windows":
		return d.IsTTY != nil && d.IsTTY()
	}
	return d.Getenv("DISPLAY") != "" || d.Getenv("WAYLAND_DISPLAY") != ""
}

// AlwaysDisplay renders regardless of the environment.
type AlwaysDisplay struct{}

// Available implements Display.
func (AlwaysDisplay) Available() bool { return true }
