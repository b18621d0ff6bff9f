// Package status rates a sample as healthy, warning or critical against
// utilisation thresholds.
package status

import (
	"fmt"

	"github.com/GameboyEsc95/VMAS/collectors"
)

// Level represents system health.
type Level int

const (
	LevelHealthy  Level = iota // Everything normal
	LevelWarning               // Something needs attention
	LevelCritical              // Immediate attention needed
	LevelUnknown               // Insufficient data
)

// String returns the human-readable name for a Level.
func (l Level) String() string {
	switch l {
	case LevelHealthy:
		return "healthy"
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// levelSeverity returns the sort order for levels. Higher is worse.
// Critical > Warning > Unknown > Healthy.
func levelSeverity(l Level) int {
	switch l {
	case LevelHealthy:
		return 0
	case LevelUnknown:
		return 1
	case LevelWarning:
		return 2
	case LevelCritical:
		return 3
	default:
		return 0
	}
}

// worstLevel returns whichever Level is more severe.
func worstLevel(a, b Level) Level {
	if levelSeverity(a) >= levelSeverity(b) {
		return a
	}
	return b
}

// ComponentStatus holds the evaluation result for one metric.
type ComponentStatus struct {
	Component string // "cpu", "memory", "disk"
	Level     Level
	Reason    string
}

// SystemStatus is the aggregate evaluation result.
type SystemStatus struct {
	Overall    Level // Worst of all components
	Reason     string
	Components []ComponentStatus
}

// EvaluatorConfig holds thresholds in percent. A value at or above Warning
// is a warning; at or above Critical is critical.
type EvaluatorConfig struct {
	Warning  float64
	Critical float64
}

// DefaultEvaluatorConfig returns the thresholds the console gauges use.
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{Warning: 70, Critical: 90}
}

// Evaluator rates samples.
type Evaluator struct {
	config EvaluatorConfig
}

// NewEvaluator creates an Evaluator with the given configuration.
func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	return &Evaluator{config: cfg}
}

// Evaluate rates each metric of s and returns the worst as Overall. A nil
// sample is unknown.
func (e *Evaluator) Evaluate(s *collectors.Sample) SystemStatus {
	if s == nil {
		return SystemStatus{Overall: LevelUnknown, Reason: "no data"}
	}

	components := []ComponentStatus{
		e.rate("cpu", s.CPU),
		e.rate("memory", s.Memory),
		e.rate("disk", s.Disk),
	}

	overall := components[0]
	for _, c := range components[1:] {
		if worstLevel(overall.Level, c.Level) != overall.Level {
			overall = c
		}
	}

	return SystemStatus{
		Overall:    overall.Level,
		Reason:     overall.Reason,
		Components: components,
	}
}

func (e *Evaluator) rate(component string, pct float64) ComponentStatus {
	switch {
	case pct >= e.config.Critical:
		return ComponentStatus{component, LevelCritical, fmt.Sprintf("%s at %.0f%%", component, pct)}
	case pct >= e.config.Warning:
		return ComponentStatus{component, LevelWarning, fmt.Sprintf("%s at %.0f%%", component, pct)}
	default:
		return ComponentStatus{component, LevelHealthy, "all metrics normal"}
	}
}
