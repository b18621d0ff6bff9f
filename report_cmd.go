package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/GameboyEsc95/VMAS/chart"
	"github.com/GameboyEsc95/VMAS/config"
	"github.com/GameboyEsc95/VMAS/report"
)

// reportMain is the built-in report generator behind -report. It is what the
// trigger runs when no external command is configured. Exit code 1 means at
// least one file failed.
func reportMain(cfg *config.Config, paths []string, logger *slog.Logger, stdout, stderr io.Writer) int {
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "usage: vmas -report FILE.csv...")
		return 2
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	renderer := chart.NewRenderer(chart.Options{
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
		Title:  "CPU Usage",
	}, logger)
	gen := report.NewGenerator(cfg.Report.OutputDir, renderer, logger)

	sums, err := gen.Generate(paths)
	for _, s := range sums {
		fmt.Fprintf(stdout, "report generated: %s\n", s.PDFPath)
	}
	if len(sums) > 0 {
		fmt.Fprintln(stdout)
		if werr := report.WriteSummaries(stdout, sums); werr != nil {
			logger.Debug("write summaries", "error", werr)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "vmas: %v\n", err)
		return 1
	}
	return 0
}
