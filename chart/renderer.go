// Package chart renders the recent CPU trend as a PNG line chart.
package chart

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// DefaultPath is the chart artifact, relative to the working directory.
	DefaultPath   = "usage_graph.png"
	DefaultWidth  = 640
	DefaultHeight = 480
	DefaultTitle  = "Usage Over Time"

	// supersample is the factor the canvas is drawn at before downsampling.
	supersample = 2
)

// ErrNoPoints is returned when there is nothing to draw.
var ErrNoPoints = errors.New("chart: no points")

// Plot margins in output pixels.
const (
	marginLeft   = 44
	marginRight  = 20
	marginTop    = 40
	marginBottom = 28
)

var (
	colorBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	colorAxis       = color.NRGBA{R: 60, G: 60, B: 60, A: 255}
	colorGrid       = color.NRGBA{R: 225, G: 225, B: 225, A: 255}
	colorLine       = color.NRGBA{R: 220, G: 38, B: 38, A: 255}
	colorText       = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
)

// Options configures a Renderer. Zero values take the defaults.
type Options struct {
	Path   string
	Width  int
	Height int
	Title  string
}

// Renderer draws value series to a fixed output path.
type Renderer struct {
	path   string
	width  int
	height int
	title  string
	logger *slog.Logger
}

// NewRenderer creates a Renderer. If logger is nil, a no-op logger is used.
func NewRenderer(opts Options, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Renderer{
		path:   opts.Path,
		width:  opts.Width,
		height: opts.Height,
		title:  opts.Title,
		logger: logger,
	}
	if r.path == "" {
		r.path = DefaultPath
	}
	if r.width <= 0 {
		r.width = DefaultWidth
	}
	if r.height <= 0 {
		r.height = DefaultHeight
	}
	if r.title == "" {
		r.title = DefaultTitle
	}
	return r
}

// Path returns the output path.
func (r *Renderer) Path() string {
	return r.path
}

// Render draws values and replaces the artifact at Path.
func (r *Renderer) Render(values []float64) error {
	return r.RenderTo(r.path, values)
}

// RenderTo draws values to path. The image is written to a temp file in the
// same directory and renamed into place, so readers see either the previous
// chart or the new one.
func (r *Renderer) RenderTo(path string, values []float64) error {
	img, err := Draw(values, r.width, r.height, r.title)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("chart: create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".chart-*.png")
	if err != nil {
		return fmt.Errorf("chart: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if err := imaging.Encode(tmp, img, imaging.PNG); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chart: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("chart: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chart: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("chart: rename to %s: %w", path, err)
	}

	success = true
	r.logger.Debug("chart rendered", "path", path, "points", len(values))
	return nil
}

// Draw renders values as a line chart of width x height pixels. Point i is
// plotted at x = i over [0, len-1] and y clamped to [0, 100].
func Draw(values []float64, width, height int, title string) (*image.NRGBA, error) {
	if len(values) == 0 {
		return nil, ErrNoPoints
	}
	if width <= marginLeft+marginRight || height <= marginTop+marginBottom {
		return nil, fmt.Errorf("chart: canvas %dx%d too small", width, height)
	}

	s := supersample
	canvas := imaging.New(width*s, height*s, colorBackground)

	left, top := marginLeft*s, marginTop*s
	right, bottom := (width-marginRight)*s, (height-marginBottom)*s
	plotW, plotH := right-left, bottom-top

	yFor := func(v float64) int {
		return bottom - int(math.Round(clamp(v)/100*float64(plotH)))
	}
	xFor := func(i int) int {
		if len(values) == 1 {
			return left + plotW/2
		}
		return left + int(math.Round(float64(i)*float64(plotW)/float64(len(values)-1)))
	}

	for _, tick := range yTicks {
		y := yFor(tick)
		drawLine(canvas, left, y, right, y, 1, colorGrid)
	}
	if len(values) > 1 {
		for i := range values {
			x := xFor(i)
			drawLine(canvas, x, top, x, bottom, 1, colorGrid)
		}
	}

	drawLine(canvas, left, top, left, bottom, s, colorAxis)
	drawLine(canvas, left, bottom, right, bottom, s, colorAxis)

	thickness := 2 * s
	if len(values) == 1 {
		drawDot(canvas, xFor(0), yFor(values[0]), 2*thickness, colorLine)
	}
	for i := 1; i < len(values); i++ {
		drawLine(canvas, xFor(i-1), yFor(values[i-1]), xFor(i), yFor(values[i]), thickness, colorLine)
	}

	img := imaging.Resize(canvas, width, height, imaging.Lanczos)

	// Text is drawn after downsampling so the bitmap font stays crisp.
	drawText(img, title, (width-textWidth(title))/2, marginTop/2+5)
	for _, tick := range yTicks {
		label := strconv.Itoa(int(tick))
		y := yFor(tick)/s + 4
		drawText(img, label, marginLeft-6-textWidth(label), y)
	}
	for i := range values {
		if len(values) > 12 && i%(len(values)/6) != 0 {
			continue
		}
		label := strconv.Itoa(i)
		drawText(img, label, xFor(i)/s-textWidth(label)/2, height-marginBottom+16)
	}

	return img, nil
}

var yTicks = []float64{0, 25, 50, 75, 100}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// drawLine draws a segment with Bresenham's algorithm, stamping a square brush
// of the given thickness at each step.
func drawLine(img *image.NRGBA, x0, y0, x1, y1, thickness int, c color.NRGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		stamp(img, x0, y0, thickness, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func stamp(img *image.NRGBA, cx, cy, size int, c color.NRGBA) {
	half := size / 2
	for y := cy - half; y < cy-half+size; y++ {
		for x := cx - half; x < cx-half+size; x++ {
			if (image.Point{X: x, Y: y}).In(img.Rect) {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

func drawDot(img *image.NRGBA, cx, cy, radius int, c color.NRGBA) {
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				stamp(img, cx+x, cy+y, 1, c)
			}
		}
	}
}

func drawText(img *image.NRGBA, s string, x, y int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colorText),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Round()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
