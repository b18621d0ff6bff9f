// Package prompt prints the latest sample as a one-line shell prompt segment.
// The resident sampler stores every sample under LatestKey in the state
// directory; the segment only reads that file and never samples itself, so it
// is cheap enough to run on every prompt.
package prompt

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/GameboyEsc95/VMAS/cache"
	"github.com/GameboyEsc95/VMAS/collectors"
	"github.com/GameboyEsc95/VMAS/status"
)

// LatestKey is the state store key holding the most recent sample.
const LatestKey = "latest"

// Options configures a Segment.
type Options struct {
	// StaleAfter marks the segment with a "?" suffix once the stored sample
	// is older than this. Zero disables the check.
	StaleAfter time.Duration
	Thresholds status.EvaluatorConfig
	Logger     *slog.Logger
}

// Segment formats the stored sample.
type Segment struct {
	store     *cache.Store
	opts      Options
	evaluator *status.Evaluator
}

// NewSegment reads samples from store.
func NewSegment(store *cache.Store, opts Options) *Segment {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Thresholds == (status.EvaluatorConfig{}) {
		opts.Thresholds = status.DefaultEvaluatorConfig()
	}
	return &Segment{store: store, opts: opts, evaluator: status.NewEvaluator(opts.Thresholds)}
}

// Store saves s as the latest sample.
func Store(store *cache.Store, s collectors.Sample) error {
	if err := cache.SetTyped(store, LatestKey, &s); err != nil {
		return fmt.Errorf("prompt: store sample: %w", err)
	}
	return nil
}

// Clear removes the latest sample so the segment hides once the sampler
// has stopped.
func Clear(store *cache.Store) error {
	if err := store.Delete(LatestKey); err != nil {
		return fmt.Errorf("prompt: clear sample: %w", err)
	}
	return nil
}

// String returns the segment, or "" when no sample has been stored so the
// prompt hides it.
func (g *Segment) String() string {
	s, err := cache.GetTyped[collectors.Sample](g.store, LatestKey)
	if err != nil {
		g.opts.Logger.Debug("prompt: read latest sample", "error", err)
		return ""
	}
	if s == nil {
		return ""
	}

	out := Format(s, g.evaluator.Evaluate(s).Overall)
	if g.opts.StaleAfter > 0 && g.store.Age(LatestKey) > g.opts.StaleAfter {
		out += " ?"
	}
	return out
}

// Format renders s as "cpu 12% mem 40% disk 55%", prefixed with "!" for a
// warning and "!!" for a critical level.
func Format(s *collectors.Sample, level status.Level) string {
	var b strings.Builder
	switch level {
	case status.LevelWarning:
		b.WriteString("! ")
	case status.LevelCritical:
		b.WriteString("!! ")
	}
	fmt.Fprintf(&b, "cpu %.0f%% mem %.0f%% disk %.0f%%", s.CPU, s.Memory, s.Disk)
	return b.String()
}
