// Package retry provides a circuit breaker for secondary sinks that may fail
// repeatedly. Once a call has failed MaxFailures times in a row the breaker
// opens and calls are skipped until the reset timeout elapses. Each failed
// probe after that doubles the timeout up to MaxResetTimeout.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by Do while the circuit is open.
var ErrOpen = errors.New("retry: circuit open")

// State represents the circuit breaker state.
type State int

const (
	// StateClosed is normal operation.
	StateClosed State = iota
	// StateOpen skips calls until the reset timeout elapses.
	StateOpen
	// StateHalfOpen lets a single probe through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Config configures the breaker.
type Config struct {
	// Name identifies the guarded sink in log records.
	Name              string
	MaxFailures       int
	ResetTimeout      time.Duration
	MaxResetTimeout   time.Duration
	BackoffMultiplier float64
	Logger            *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the settings used for the SQLite mirror.
func DefaultConfig(name string) Config {
	return Config{
		Name:              name,
		MaxFailures:       3,
		ResetTimeout:      time.Minute,
		MaxResetTimeout:   30 * time.Minute,
		BackoffMultiplier: 2.0,
	}
}

// Stats is a snapshot of breaker counters.
type Stats struct {
	State            State
	ConsecutiveFails int
	TotalFailures    int
	TotalSuccesses   int
	Skipped          int
	CurrentTimeout   time.Duration
}

// Breaker guards calls to a failing dependency.
type Breaker struct {
	cfg    Config
	logger *slog.Logger

	mu             sync.Mutex
	state          State
	failures       int
	lastFailure    time.Time
	currentTimeout time.Duration
	totalFailures  int
	totalSuccesses int
	skipped        int
}

// New returns a closed breaker. Zero-valued fields of cfg fall back to
// DefaultConfig.
func New(cfg Config) *Breaker {
	def := DefaultConfig(cfg.Name)
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = def.ResetTimeout
	}
	if cfg.MaxResetTimeout < cfg.ResetTimeout {
		cfg.MaxResetTimeout = max(def.MaxResetTimeout, cfg.ResetTimeout)
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = def.BackoffMultiplier
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Breaker{
		cfg:            cfg,
		logger:         logger,
		state:          StateClosed,
		currentTimeout: cfg.ResetTimeout,
	}
}

// Do runs fn unless the circuit is open, in which case it returns ErrOpen
// without calling fn.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	b.mu.Lock()
	if b.state == StateOpen {
		elapsed := b.cfg.Now().Sub(b.lastFailure)
		if elapsed < b.currentTimeout {
			b.skipped++
			remaining := b.currentTimeout - elapsed
			b.mu.Unlock()
			b.logger.Debug("circuit open, skipping call", "sink", b.cfg.Name, "retry_in", remaining)
			return fmt.Errorf("%w: %s retry in %s", ErrOpen, b.cfg.Name, remaining.Truncate(time.Second))
		}
		b.state = StateHalfOpen
		b.logger.Info("circuit half-open", "sink", b.cfg.Name)
	}
	b.mu.Unlock()

	err := fn(ctx)
	if err != nil && ctx.Err() != nil {
		// Shutdown is not the sink's fault.
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.recordFailure()
		return err
	}
	if b.state == StateHalfOpen {
		b.logger.Info("circuit closed after successful probe", "sink", b.cfg.Name)
	}
	b.state = StateClosed
	b.failures = 0
	b.totalSuccesses++
	b.currentTimeout = b.cfg.ResetTimeout
	return nil
}

// recordFailure must be called with mu held.
func (b *Breaker) recordFailure() {
	b.failures++
	b.totalFailures++
	b.lastFailure = b.cfg.Now()

	switch {
	case b.state == StateHalfOpen:
		b.currentTimeout = min(time.Duration(float64(b.currentTimeout)*b.cfg.BackoffMultiplier), b.cfg.MaxResetTimeout)
		b.state = StateOpen
		b.logger.Warn("circuit re-opened after failed probe",
			"sink", b.cfg.Name,
			"failures", b.failures,
			"next_timeout", b.currentTimeout,
		)
	case b.failures >= b.cfg.MaxFailures:
		b.state = StateOpen
		b.currentTimeout = b.cfg.ResetTimeout
		b.logger.Warn("circuit opened",
			"sink", b.cfg.Name,
			"failures", b.failures,
			"timeout", b.currentTimeout,
		)
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns a snapshot of the counters.
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		State:            b.state,
		ConsecutiveFails: b.failures,
		TotalFailures:    b.totalFailures,
		TotalSuccesses:   b.totalSuccesses,
		Skipped:          b.skipped,
		CurrentTimeout:   b.currentTimeout,
	}
}

// Reset closes the circuit and clears the failure streak.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.currentTimeout = b.cfg.ResetTimeout
}
