package collectors

import (
	"math"
	"time"
)

// Sample is one snapshot of host utilization.
// Samples are created once per loop iteration and never modified afterwards;
// consumers receive copies and must not mutate TopProcesses in place.
type Sample struct {
	// Timestamp is the wall-clock instant the sample was taken.
	Timestamp time.Time `json:"timestamp"`

	// CPU is the aggregate CPU usage percentage (0-100).
	CPU float64 `json:"cpu"`

	// Memory is the used physical memory percentage (0-100).
	Memory float64 `json:"memory"`

	// Disk is the used space percentage of the sampled filesystem (0-100).
	Disk float64 `json:"disk"`

	// TopProcesses lists the busiest processes, highest CPU first.
	TopProcesses []ProcessInfo `json:"top_processes"`
}

// ProcessInfo describes a single process in a Sample.
type ProcessInfo struct {
	Name  string  `json:"name"`
	PID   int32   `json:"pid"`
	CPU   float64 `json:"cpu"`
	MemMB float64 `json:"mem_mb"`
}

// Point is a (timestamp, cpu) pair kept by the rolling buffer.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	CPU       float64   `json:"cpu"`
}

// Point returns the rolling-buffer view of the sample.
func (s Sample) Point() Point {
	return Point{Timestamp: s.Timestamp, CPU: s.CPU}
}

// Percent computes part/total*100 clamped to 0-100.
// A zero or negative total yields 0 rather than NaN or Inf.
func Percent(part, total float64) float64 {
	if total <= 0 || math.IsNaN(part) || math.IsNaN(total) {
		return 0
	}
	return ClampPercent(part / total * 100.0)
}

// ClampPercent limits v to the range 0-100. NaN becomes 0.
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
