package chart

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestDrawSize(t *testing.T) {
	img, err := Draw([]float64{10, 50, 90, 20}, 320, 240, "cpu")
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("bounds = %v, want 320x240", b)
	}
}

func TestDrawNoPoints(t *testing.T) {
	if _, err := Draw(nil, 640, 480, ""); !errors.Is(err, ErrNoPoints) {
		t.Errorf("err = %v, want ErrNoPoints", err)
	}
}

func TestDrawTooSmall(t *testing.T) {
	if _, err := Draw([]float64{1}, 20, 20, ""); err == nil {
		t.Error("expected error for tiny canvas")
	}
}

func TestDrawSinglePoint(t *testing.T) {
	if _, err := Draw([]float64{42}, 200, 150, ""); err != nil {
		t.Fatalf("Draw: %v", err)
	}
}

func TestDrawPlotsLine(t *testing.T) {
	// A flat line at 100 sits on the top edge of the plot area.
	img, err := Draw([]float64{100, 100, 100}, 400, 300, "")
	if err != nil {
		t.Fatal(err)
	}

	x := (marginLeft + 400 - marginRight) / 2
	c := img.NRGBAAt(x, marginTop)
	if !reddish(c) {
		t.Errorf("pixel at top of plot = %+v, want line color", c)
	}

	// Values above 100 are clamped onto the same line.
	clamped, err := Draw([]float64{250, 250, 250}, 400, 300, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := clamped.NRGBAAt(x, marginTop); !reddish(got) {
		t.Errorf("clamped pixel = %+v, want line color", got)
	}
}

func reddish(c color.NRGBA) bool {
	return c.R > 150 && c.G < 140 && c.B < 140
}

func TestRenderReplacesArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "usage_graph.png")
	r := NewRenderer(Options{Path: path, Width: 160, Height: 120}, nil)

	if err := r.Render([]float64{1, 2, 3}); err != nil {
		t.Fatalf("first Render: %v", err)
	}
	if err := r.Render([]float64{90, 10}); err != nil {
		t.Fatalf("second Render: %v", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("open rendered chart: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 120 {
		t.Errorf("bounds = %v", b)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the chart", len(entries))
	}
}

func TestRenderErrorKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage_graph.png")
	r := NewRenderer(Options{Path: path}, nil)

	if err := r.Render([]float64{5}); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(path)

	if err := r.Render(nil); err == nil {
		t.Fatal("expected error for empty series")
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("failed render modified the existing chart")
	}
}

func TestRendererDefaults(t *testing.T) {
	r := NewRenderer(Options{}, nil)
	if r.Path() != DefaultPath || r.width != DefaultWidth || r.height != DefaultHeight {
		t.Errorf("defaults = %s %dx%d", r.Path(), r.width, r.height)
	}
}

func TestEnvDisplay(t *testing.T) {
	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	tests := []struct {
		name string
		d    *EnvDisplay
		want bool
	}{
		{"linux headless", &EnvDisplay{Getenv: env(nil), GOOS: "linux"}, false},
		{"linux x11", &EnvDisplay{Getenv: env(map[string]string{"DISPLAY": ":0"}), GOOS: "linux"}, true},
		{"linux wayland", &EnvDisplay{Getenv: env(map[string]string{"WAYLAND_DISPLAY": "wayland-0"}), GOOS: "linux"}, true},
		{"darwin tty", &EnvDisplay{Getenv: env(nil), GOOS: "darwin", IsTTY: func() bool { return true }}, true},
		{"windows service", &EnvDisplay{Getenv: env(nil), GOOS: "windows", IsTTY: func() bool { return false }}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Available(); got != tt.want {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
		})
	}

	if !(AlwaysDisplay{}).Available() {
		t.Error("AlwaysDisplay reported unavailable")
	}
}
