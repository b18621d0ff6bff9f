package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/GameboyEsc95/VMAS/report"
	"github.com/GameboyEsc95/VMAS/sampler"
)

// Notifier forwards sampler iterations to a running program. It implements
// sampler.Observer and only ever sends messages, so the TUI goroutine never
// touches sampler state.
type Notifier struct {
	send func(tea.Msg)
}

// NewNotifier returns a Notifier that sends to p.
func NewNotifier(p *tea.Program) *Notifier {
	return &Notifier{send: p.Send}
}

// Observe implements sampler.Observer.
func (n *Notifier) Observe(s sampler.Snapshot) {
	n.send(SampleMsg{Sample: s.Sample, History: s.History, Iteration: s.Iteration})

	at := s.Sample.Timestamp
	for _, w := range s.Warnings {
		n.send(EventMsg{At: at, Text: "warning: " + w})
	}
	switch {
	case s.FlushErr != nil:
		n.send(EventMsg{At: at, Text: "log write failed: " + s.FlushErr.Error()})
	case s.Flushed:
		n.send(EventMsg{At: at, Text: fmt.Sprintf("log row written (sample %d)", s.Iteration)})
	}
	if s.Report.Fired() {
		n.send(EventMsg{At: at, Text: describeReport(s.Report)})
	}
	if s.Rendered {
		n.send(EventMsg{At: at, Text: "chart updated"})
	}
}

func describeReport(d report.Decision) string {
	switch d.Outcome {
	case report.NothingToProcess:
		return "report due, no logs to process"
	case report.Invoked:
		return "report generated for " + strings.Join(d.Files, ", ")
	case report.Failed:
		if d.Err != nil {
			return "report failed: " + d.Err.Error()
		}
		return "report failed"
	default:
		return "report " + d.Outcome.String()
	}
}
