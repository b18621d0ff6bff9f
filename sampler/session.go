// Package sampler runs the resident sampling loop.
//
// Each iteration takes one sample and fans it out on three cadences: every
// sample goes to the console and the rolling buffer, every Nth sample is
// appended to the durable log, and the first qualifying sample of a report
// day fires the report trigger.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/GameboyEsc95/VMAS/collectors"
	"github.com/GameboyEsc95/VMAS/report"
)

// DefaultInterval is the time between iteration starts.
const DefaultInterval = 5 * time.Second

// Console shows a sample. history is the CPU series before this sample.
type Console interface {
	Show(s collectors.Sample, history []float64)
}

// LogWriter appends samples to the durable log on its own cadence.
type LogWriter interface {
	Offer(s collectors.Sample, counter uint64) (bool, error)
}

// Mirror receives every sample the LogWriter persisted.
type Mirror interface {
	Insert(ctx context.Context, s collectors.Sample) error
}

// Trigger decides whether a sample starts a report run.
type Trigger interface {
	Evaluate(ctx context.Context, ts time.Time) report.Decision
}

// Renderer draws the buffered CPU series.
type Renderer interface {
	Render(values []float64) error
}

// Display reports whether rendering is worthwhile.
type Display interface {
	Available() bool
}

// Observer is told about every completed iteration.
type Observer interface {
	Observe(Snapshot)
}

// Snapshot describes one completed iteration.
type Snapshot struct {
	Iteration uint64
	Sample    collectors.Sample
	Warnings  []string
	// History is the buffered CPU series including this sample.
	History  []float64
	Flushed  bool
	FlushErr error
	Report   report.Decision
	Rendered bool
}

// Config wires a Session. Provider is required; every other collaborator is
// optional and skipped when nil.
type Config struct {
	Provider   collectors.Provider
	Console    Console
	LogWriter  LogWriter
	Mirror     Mirror
	Trigger    Trigger
	Renderer   Renderer
	Display    Display
	Observer   Observer
	Interval   time.Duration
	BufferSize int
	// ReportOutput receives the report generator's captured output.
	ReportOutput io.Writer
	// Now is the clock used for iteration pacing.
	Now collectors.Clock
}

// Session owns all loop state. It is driven by a single goroutine.
type Session struct {
	cfg    Config
	buffer *Buffer
	logger *slog.Logger

	counter uint64
}

// New validates cfg and returns a Session. If logger is nil, a no-op logger
// is used.
func New(cfg Config, logger *slog.Logger) (*Session, error) {
	if cfg.Provider == nil {
		return nil, errors.New("sampler: provider is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		cfg:    cfg,
		buffer: NewBuffer(cfg.BufferSize),
		logger: logger,
	}, nil
}

// Iterations returns how many samples have been taken.
func (s *Session) Iterations() uint64 {
	return s.counter
}

// Buffer returns the rolling buffer.
func (s *Session) Buffer() *Buffer {
	return s.buffer
}

// Run loops until ctx is cancelled, which is the only way it stops. An
// iteration that overruns the interval is followed immediately by the next
// one; missed ticks are not made up.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("sampler started",
		"interval", s.cfg.Interval,
		"buffer_size", s.buffer.Cap(),
		"provider", s.cfg.Provider.Name(),
	)

	for {
		if err := ctx.Err(); err != nil {
			return s.stop(err)
		}

		start := s.cfg.Now()
		if _, err := s.Step(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("sample failed", "error", err)
		}

		wait := s.cfg.Interval - s.cfg.Now().Sub(start)
		if wait <= 0 {
			s.logger.Debug("iteration overran interval", "elapsed", s.cfg.Now().Sub(start))
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return s.stop(ctx.Err())
		case <-timer.C:
		}
	}
}

func (s *Session) stop(err error) error {
	s.logger.Info("sampler stopping", "iterations", s.counter)
	return err
}

// Step performs one iteration. Only a provider failure is returned: it
// aborts the iteration before anything else runs. Failures of later stages
// are logged and recorded in the Snapshot.
func (s *Session) Step(ctx context.Context) (*Snapshot, error) {
	res, err := s.cfg.Provider.Sample(ctx)
	if err != nil {
		return nil, fmt.Errorf("sampler: %s: %w", s.cfg.Provider.Name(), err)
	}
	if res == nil {
		return nil, fmt.Errorf("sampler: %s returned no sample", s.cfg.Provider.Name())
	}
	for _, w := range res.Warnings {
		s.logger.Warn("provider warning", "provider", s.cfg.Provider.Name(), "warning", w)
	}

	sample := res.Sample
	snap := &Snapshot{Sample: sample, Warnings: res.Warnings}

	if s.cfg.Trigger != nil {
		snap.Report = s.cfg.Trigger.Evaluate(ctx, sample.Timestamp)
		s.surfaceReport(snap.Report)
	}

	if s.cfg.Console != nil {
		s.cfg.Console.Show(sample, s.buffer.Values())
	}

	s.counter++
	snap.Iteration = s.counter

	if s.cfg.LogWriter != nil {
		snap.Flushed, snap.FlushErr = s.cfg.LogWriter.Offer(sample, s.counter)
		if snap.FlushErr != nil {
			s.logger.Error("log write failed", "iteration", s.counter, "error", snap.FlushErr)
		}
		if snap.Flushed && s.cfg.Mirror != nil {
			if err := s.cfg.Mirror.Insert(ctx, sample); err != nil {
				s.logger.Error("mirror insert failed", "error", err)
			}
		}
	}

	s.buffer.Push(sample.Point())
	snap.History = s.buffer.Values()

	if s.buffer.Full() && s.cfg.Renderer != nil {
		snap.Rendered = s.render()
	}

	if s.cfg.Observer != nil {
		s.cfg.Observer.Observe(*snap)
	}
	return snap, nil
}

func (s *Session) render() bool {
	if s.cfg.Display != nil && !s.cfg.Display.Available() {
		s.logger.Info("chart render skipped", "reason", "no display")
		return false
	}
	if err := s.cfg.Renderer.Render(s.buffer.Values()); err != nil {
		s.logger.Error("chart render failed", "error", err)
		return false
	}
	return true
}

func (s *Session) surfaceReport(d report.Decision) {
	if !d.Fired() {
		return
	}
	s.logger.Info("report trigger fired", "day", d.Day, "outcome", d.Outcome.String(), "files", len(d.Files))
	if d.Result == nil || d.Result.Output == "" || s.cfg.ReportOutput == nil {
		return
	}
	if _, err := io.WriteString(s.cfg.ReportOutput, d.Result.Output); err != nil {
		s.logger.Debug("could not echo report output", "error", err)
	}
}
