package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GameboyEsc95/VMAS/chart"
	"github.com/GameboyEsc95/VMAS/collectors"
	"github.com/GameboyEsc95/VMAS/config"
	"github.com/GameboyEsc95/VMAS/csvlog"
)

func TestStaleAfter(t *testing.T) {
	cfg := config.DefaultConfig()
	if got := staleAfter(cfg); got != 10*time.Minute {
		t.Errorf("staleAfter(defaults) = %s, want 10m", got)
	}
	cfg.Sampler.Interval = config.Duration{Duration: time.Second}
	cfg.Sampler.FlushEvery = 30
	if got := staleAfter(cfg); got != time.Minute {
		t.Errorf("staleAfter = %s, want 1m", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, closeFn, err := newLogger(config.DaemonConfig{LogLevel: "warn"}, false, &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn level output = %q", buf.String())
	}

	buf.Reset()
	logger, _, _ = newLogger(config.DaemonConfig{LogLevel: "warn"}, true, &buf)
	logger.Debug("debug line")
	if !strings.Contains(buf.String(), "debug line") {
		t.Error("verbose should force debug level")
	}
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vmas.log")
	logger, closeFn, err := newLogger(config.DaemonConfig{LogLevel: "info", LogFile: path}, false, os.Stderr)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("to file", "key", "value")
	closeFn()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "key=value") {
		t.Errorf("log file = %q", data)
	}
}

func TestReportMain(t *testing.T) {
	logDir := t.TempDir()
	day := time.Date(2024, 3, 14, 10, 0, 0, 0, time.Local)
	w := csvlog.NewWriter(logDir, 1, func() time.Time { return day }, nil)
	var path string
	for i, cpu := range []float64{10, 30} {
		p, err := w.Append(collectors.Sample{Timestamp: day.Add(time.Duration(i) * time.Minute), CPU: cpu})
		if err != nil {
			t.Fatal(err)
		}
		path = p
	}

	cfg := config.DefaultConfig()
	cfg.Report.OutputDir = filepath.Join(t.TempDir(), "reports")
	cfg.Chart.Width, cfg.Chart.Height = 200, 150

	var stdout, stderr bytes.Buffer
	if code := reportMain(cfg, []string{path}, nil, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, stderr.String())
	}
	want := "report generated: " + filepath.Join(cfg.Report.OutputDir, "2024-03-14.pdf")
	if !strings.Contains(stdout.String(), want) {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}

	if code := reportMain(cfg, []string{filepath.Join(logDir, "missing.csv")}, nil, &stdout, &stderr); code != 1 {
		t.Errorf("missing file exit code = %d, want 1", code)
	}
	if code := reportMain(cfg, nil, nil, &stdout, &stderr); code != 2 {
		t.Errorf("no args exit code = %d, want 2", code)
	}
}

func TestViewChart(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Chart.Path = filepath.Join(t.TempDir(), "usage_graph.png")
	cfg.Display.ImageProtocol = "halfblock"

	var stdout, stderr bytes.Buffer
	if code := viewChart(cfg, "", &stdout, &stderr); code != 1 {
		t.Errorf("missing chart: exit %d, want 1", code)
	}

	r := chart.NewRenderer(chart.Options{Path: cfg.Chart.Path, Width: 200, Height: 150}, nil)
	if err := r.Render([]float64{10, 40, 20}); err != nil {
		t.Fatal(err)
	}
	stdout.Reset()
	if code := viewChart(cfg, "", &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "▀") {
		t.Error("no half blocks in output")
	}
}

func TestInitConfig(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vmas", name)
			var stdout, stderr bytes.Buffer

			if code := initConfig(path, &stdout, &stderr); code != 0 {
				t.Fatalf("initConfig = %d, stderr %q", code, stderr.String())
			}
			if !strings.Contains(stdout.String(), path) {
				t.Errorf("stdout = %q, want the written path", stdout.String())
			}

			cfg, err := config.LoadConfig(path)
			if err != nil {
				t.Fatal(err)
			}
			def := config.DefaultConfig()
			if cfg.Sampler.Interval != def.Sampler.Interval || cfg.Sampler.FlushEvery != def.Sampler.FlushEvery || cfg.Chart.Path != def.Chart.Path {
				t.Errorf("loaded %+v, want defaults", cfg.Sampler)
			}

			stderr.Reset()
			if code := initConfig(path, &stdout, &stderr); code != 1 {
				t.Errorf("second initConfig = %d, want 1", code)
			}
			if !strings.Contains(stderr.String(), "already exists") {
				t.Errorf("stderr = %q", stderr.String())
			}
		})
	}
}
