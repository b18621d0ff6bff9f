package report

import (
	"fmt"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/GameboyEsc95/VMAS/csvlog"
	"github.com/GameboyEsc95/VMAS/internal/format"
)

const pdfMargin = 15.0

// writePDF lays out s on one A4 page: a title, the per-metric statistics and
// the CPU chart scaled to the page width.
func writePDF(s *Summary, path string) error {
	title := "Metrics report: " + filepath.Base(s.Source)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("vmas", true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("%d samples from %s to %s (%s)",
		s.Samples,
		s.First.Format(csvlog.TimeLayout),
		s.Last.Format(csvlog.TimeLayout),
		format.FormatDuration(s.Last.Sub(s.First)),
	), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 11)
	for _, h := range []string{"Metric", "Mean", "Max"} {
		pdf.CellFormat(40, 7, h, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 11)
	for _, m := range []struct {
		name string
		st   Stats
	}{
		{"CPU", s.CPU},
		{"Memory", s.Memory},
		{"Disk", s.Disk},
	} {
		pdf.CellFormat(40, 7, m.name, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f%%", m.st.Mean), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f%%", m.st.Max), "", 1, "L", false, 0, "")
	}

	if s.ChartPath != "" {
		pageW, _ := pdf.GetPageSize()
		pdf.ImageOptions(s.ChartPath, pdfMargin, pdf.GetY()+6, pageW-2*pdfMargin, 0, false,
			fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}
