package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

var errSink = errors.New("database is locked")

func newTestBreaker(clock *fakeClock) *Breaker {
	return New(Config{
		Name:              "sqlite",
		MaxFailures:       2,
		ResetTimeout:      time.Minute,
		MaxResetTimeout:   3 * time.Minute,
		BackoffMultiplier: 2,
		Now:               clock.now,
	})
}

func fail(context.Context) error { return errSink }
func ok(context.Context) error   { return nil }

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)}
	b := newTestBreaker(clock)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := b.Do(ctx, fail); !errors.Is(err, errSink) {
			t.Fatalf("call %d err = %v", i, err)
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %s, want open", b.State())
	}

	called := false
	err := b.Do(ctx, func(context.Context) error { called = true; return nil })
	if !errors.Is(err, ErrOpen) || called {
		t.Errorf("open breaker: err = %v, called = %v", err, called)
	}
	if b.Stats().Skipped != 1 {
		t.Errorf("skipped = %d", b.Stats().Skipped)
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	tests := []struct {
		name        string
		probe       func(context.Context) error
		wantState   State
		wantTimeout time.Duration
	}{
		{"probe succeeds", ok, StateClosed, time.Minute},
		{"probe fails", fail, StateOpen, 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{t: time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)}
			b := newTestBreaker(clock)
			b.Do(context.Background(), fail)
			b.Do(context.Background(), fail)

			clock.advance(time.Minute)
			b.Do(context.Background(), tt.probe)

			st := b.Stats()
			if st.State != tt.wantState || st.CurrentTimeout != tt.wantTimeout {
				t.Errorf("stats = %+v, want state %s timeout %s", st, tt.wantState, tt.wantTimeout)
			}
		})
	}
}

func TestBreakerBackoffCapped(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)}
	b := newTestBreaker(clock)
	b.Do(context.Background(), fail)
	b.Do(context.Background(), fail)

	for i := 0; i < 4; i++ {
		clock.advance(b.Stats().CurrentTimeout)
		b.Do(context.Background(), fail)
	}
	if got := b.Stats().CurrentTimeout; got != 3*time.Minute {
		t.Errorf("timeout = %s, want cap 3m", got)
	}
}

func TestBreakerSuccessResetsStreak(t *testing.T) {
	b := New(Config{MaxFailures: 2})
	ctx := context.Background()
	b.Do(ctx, fail)
	b.Do(ctx, ok)
	b.Do(ctx, fail)
	if b.State() != StateClosed {
		t.Errorf("state = %s, want closed after interleaved success", b.State())
	}
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	b := New(Config{MaxFailures: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Do(ctx, func(ctx context.Context) error { return ctx.Err() })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if b.State() != StateClosed || b.Stats().TotalFailures != 0 {
		t.Errorf("cancellation counted as failure: %+v", b.Stats())
	}
}

func TestBreakerReset(t *testing.T) {
	b := New(Config{MaxFailures: 1})
	b.Do(context.Background(), fail)
	b.Reset()
	if b.State() != StateClosed {
		t.Errorf("state = %s after Reset", b.State())
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{StateClosed: "closed", StateOpen: "open", StateHalfOpen: "half_open", State(9): "unknown(9)"} {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
}
