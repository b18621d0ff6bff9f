package widgets

import (
	"math"
	"strings"
	"testing"

	"github.com/GameboyEsc95/VMAS/collectors"
	"github.com/GameboyEsc95/VMAS/display/color"
)

func init() {
	color.ForceDisable()
}

func TestRenderGaugeFill(t *testing.T) {
	tests := []struct {
		name          string
		percent       float64
		filled, empty int
		text          string
	}{
		{"zero", 0, 0, 20, "0.0%"},
		{"half", 50, 10, 10, "50.0%"},
		{"full", 100, 20, 0, "100.0%"},
		{"over clamps", 150, 20, 0, "100.0%"},
		{"negative clamps", -5, 0, 20, "0.0%"},
		{"nan", math.NaN(), 0, 20, "0.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGaugeConfig()
			cfg.Percent = tt.percent
			got := RenderGauge(cfg)

			if n := strings.Count(got, "█"); n != tt.filled {
				t.Errorf("filled = %d, want %d (%q)", n, tt.filled, got)
			}
			if n := strings.Count(got, "░"); n != tt.empty {
				t.Errorf("empty = %d, want %d (%q)", n, tt.empty, got)
			}
			if !strings.HasSuffix(got, tt.text) {
				t.Errorf("gauge %q does not end with %q", got, tt.text)
			}
		})
	}
}

func TestRenderGaugeLabelPadding(t *testing.T) {
	cfg := DefaultGaugeConfig()
	cfg.Label = "CPU"
	cfg.LabelWidth = 6
	cfg.ShowPercent = false

	got := RenderGauge(cfg)
	if !strings.HasPrefix(got, "CPU    ") {
		t.Errorf("label not padded: %q", got)
	}
}

func TestGaugeColor(t *testing.T) {
	if GaugeColor(10, 70, 90) != ColorOK {
		t.Error("10% not OK")
	}
	if GaugeColor(70, 70, 90) != ColorWarning {
		t.Error("70% not warning")
	}
	if GaugeColor(95, 70, 90) != ColorDanger {
		t.Error("95% not danger")
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline(SparklineConfig{}); got != "" {
		t.Errorf("empty data = %q", got)
	}

	got := RenderSparkline(SparklineConfig{Data: []float64{0, 100}, Min: 0, Max: 100})
	if got != "▁█" {
		t.Errorf("got %q, want ▁█", got)
	}

	flat := RenderSparkline(SparklineConfig{Data: []float64{5, 5, 5}})
	if flat != "▅▅▅" {
		t.Errorf("flat = %q, want mid blocks", flat)
	}

	padded := RenderPercentSparkline([]float64{50}, 4, "")
	if padded != "   ▄" {
		t.Errorf("padded = %q", padded)
	}

	trimmed := RenderSparkline(SparklineConfig{Data: []float64{0, 0, 100}, Width: 2, Min: 0, Max: 100, Label: "cpu"})
	if trimmed != "cpu ▁█" {
		t.Errorf("trimmed = %q", trimmed)
	}
}

func TestRenderProcessTable(t *testing.T) {
	if got := RenderProcessTable(ProcessTableConfig{}); got != "no process data" {
		t.Errorf("empty = %q", got)
	}

	got := RenderProcessTable(ProcessTableConfig{
		NameWidth: 10,
		Processes: []collectors.ProcessInfo{
			{Name: "firefox", PID: 812, CPU: 9.1, MemMB: 512},
			{Name: "a-very-long-process-name", PID: 7, CPU: 0.5, MemMB: 2048},
		},
	})
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[1], "firefox") || !strings.Contains(lines[1], "9.1%") || !strings.Contains(lines[1], "512.0 MB") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "a-very-...") || !strings.Contains(lines[2], "2.0 GB") {
		t.Errorf("row 2 = %q", lines[2])
	}
}
