// Package collectors defines the sample data model shared by every vmas
// component and the Provider interface the sampling loop pulls from.
package collectors

import (
	"context"
	"time"
)

// Provider is the interface implemented by metrics sources.
// A Provider is responsible for producing one Sample per call. Sampling loops
// call it exactly once per iteration, so implementations may keep delta state
// (previous CPU counters, per-process tick history) between calls.
type Provider interface {
	// Name returns the provider's identifier, used in log lines.
	Name() string

	// Sample reads the current host utilization.
	// Partial data is not an error: missing sources are reported as 0% with
	// a message in Warnings. An error is returned only when nothing usable
	// could be read, or when ctx is cancelled.
	Sample(ctx context.Context) (*SampleResult, error)
}

// SampleResult holds the output of a Provider call.
type SampleResult struct {
	// Sample is the snapshot itself.
	Sample Sample `json:"sample"`

	// Warnings contains non-fatal issues encountered while sampling.
	// For example, the process table being unreadable while /proc/stat is fine.
	Warnings []string `json:"warnings,omitempty"`
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context) (*SampleResult, error)

// Name returns "func".
func (f ProviderFunc) Name() string { return "func" }

// Sample calls f(ctx).
func (f ProviderFunc) Sample(ctx context.Context) (*SampleResult, error) { return f(ctx) }

// Clock returns the current wall-clock time. Components take a Clock so tests
// can pin the calendar.
type Clock func() time.Time
