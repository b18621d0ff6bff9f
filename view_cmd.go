package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/term"

	"github.com/GameboyEsc95/VMAS/config"
	"github.com/GameboyEsc95/VMAS/display/inline"
)

// viewChart prints the chart at path, or the configured chart when path is
// empty, inline in the terminal.
func viewChart(cfg *config.Config, path string, stdout, stderr io.Writer) int {
	if path == "" {
		path = cfg.Chart.Path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "vmas: %v\n", err)
		return 1
	}

	p, ok := inline.ParseProtocol(cfg.Display.ImageProtocol)
	if !ok {
		p = inline.Detect(os.Getenv)
	}

	cols, rows := 80, 24
	if w, h, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 && h > 1 {
		cols, rows = w, h-1
	}
	if err := inline.Write(stdout, data, p, cols, rows); err != nil {
		fmt.Fprintf(stderr, "vmas: %v\n", err)
		return 1
	}
	return 0
}
