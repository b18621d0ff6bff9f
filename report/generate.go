package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/GameboyEsc95/VMAS/chart"
	"github.com/GameboyEsc95/VMAS/csvlog"
	"github.com/GameboyEsc95/VMAS/internal/format"
)

// DefaultOutputDir is where the built-in generator writes reports.
const DefaultOutputDir = "reports"

// Stats summarises one metric over a log file.
type Stats struct {
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

// Summary is the built-in report for one log file.
type Summary struct {
	Source    string    `json:"source"`
	Samples   int       `json:"samples"`
	First     time.Time `json:"first"`
	Last      time.Time `json:"last"`
	CPU       Stats     `json:"cpu"`
	Memory    Stats     `json:"memory"`
	Disk      Stats     `json:"disk"`
	ChartPath string    `json:"chart_path,omitempty"`
	Path      string    `json:"path"`
	PDFPath   string    `json:"pdf_path"`
}

// Generator writes a PDF report, a markdown copy and a CPU chart per log
// file.
type Generator struct {
	outputDir string
	renderer  *chart.Renderer
	logger    *slog.Logger
}

// NewGenerator creates a Generator writing into outputDir. renderer supplies
// the chart dimensions; nil uses the chart defaults. If logger is nil, a
// no-op logger is used.
func NewGenerator(outputDir string, renderer *chart.Renderer, logger *slog.Logger) *Generator {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if renderer == nil {
		renderer = chart.NewRenderer(chart.Options{}, logger)
	}
	return &Generator{outputDir: outputDir, renderer: renderer, logger: logger}
}

// Summarize computes statistics over rows, which must not be empty.
func Summarize(source string, rows []csvlog.Row) (*Summary, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("report: %s has no rows", source)
	}

	s := &Summary{
		Source:  source,
		Samples: len(rows),
		First:   rows[0].Timestamp,
		Last:    rows[len(rows)-1].Timestamp,
	}

	var sumCPU, sumMem, sumDisk float64
	for i, r := range rows {
		sumCPU += r.CPU
		sumMem += r.Memory
		sumDisk += r.Disk
		if i == 0 || r.CPU > s.CPU.Max {
			s.CPU.Max = r.CPU
		}
		if i == 0 || r.Memory > s.Memory.Max {
			s.Memory.Max = r.Memory
		}
		if i == 0 || r.Disk > s.Disk.Max {
			s.Disk.Max = r.Disk
		}
	}
	n := float64(len(rows))
	s.CPU.Mean = sumCPU / n
	s.Memory.Mean = sumMem / n
	s.Disk.Mean = sumDisk / n
	return s, nil
}

// Generate writes one report per path. Every path is attempted; the returned
// error joins the failures.
func (g *Generator) Generate(paths []string) ([]*Summary, error) {
	if len(paths) == 0 {
		return nil, ErrNoLogs
	}
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create output directory %s: %w", g.outputDir, err)
	}

	var (
		out  []*Summary
		errs []error
	)
	for _, p := range paths {
		s, err := g.generateOne(p)
		if err != nil {
			g.logger.Error("report failed", "path", p, "error", err)
			errs = append(errs, err)
			continue
		}
		out = append(out, s)
	}
	return out, errors.Join(errs...)
}

func (g *Generator) generateOne(path string) (*Summary, error) {
	rows, err := csvlog.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Summarize(path, rows)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	cpu := make([]float64, len(rows))
	for i, r := range rows {
		cpu[i] = r.CPU
	}
	s.ChartPath = filepath.Join(g.outputDir, base+"_chart.png")
	if err := g.renderer.RenderTo(s.ChartPath, cpu); err != nil {
		return nil, err
	}

	s.Path = filepath.Join(g.outputDir, base+".md")
	if err := os.WriteFile(s.Path, []byte(renderMarkdown(s, base)), 0o644); err != nil {
		return nil, fmt.Errorf("report: write %s: %w", s.Path, err)
	}

	s.PDFPath = filepath.Join(g.outputDir, base+".pdf")
	if err := writePDF(s, s.PDFPath); err != nil {
		return nil, err
	}

	g.logger.Info("report written", "path", s.PDFPath, "samples", s.Samples)
	return s, nil
}

func renderMarkdown(s *Summary, base string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Metrics report: %s\n\n", filepath.Base(s.Source))
	fmt.Fprintf(&b, "%d samples from %s to %s (%s).\n\n",
		s.Samples,
		s.First.Format(csvlog.TimeLayout),
		s.Last.Format(csvlog.TimeLayout),
		format.FormatDuration(s.Last.Sub(s.First)),
	)

	b.WriteString("| Metric | Mean | Max |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, m := range []struct {
		name string
		st   Stats
	}{
		{"CPU", s.CPU},
		{"Memory", s.Memory},
		{"Disk", s.Disk},
	} {
		fmt.Fprintf(&b, "| %s | %.2f%% | %.2f%% |\n", m.name, m.st.Mean, m.st.Max)
	}

	if s.ChartPath != "" {
		fmt.Fprintf(&b, "\n![CPU usage](%s)\n", base+"_chart.png")
	}
	return b.String()
}

// WriteSummaries prints an aligned table of summaries to w.
func WriteSummaries(w io.Writer, sums []*Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSAMPLES\tCPU AVG\tCPU MAX\tMEM AVG\tMEM MAX\tDISK AVG\tDISK MAX")
	for _, s := range sums {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			filepath.Base(s.Source), s.Samples,
			s.CPU.Mean, s.CPU.Max,
			s.Memory.Mean, s.Memory.Max,
			s.Disk.Mean, s.Disk.Max,
		)
	}
	return tw.Flush()
}
