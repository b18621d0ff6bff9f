// Package report decides when to produce a usage report and runs the
// generator.
//
// A report is due once per even-numbered calendar day, on the first sample
// taken at or after minute 1 of any hour. It covers the most recent dated
// logs. The built-in generator (Generate) summarises log files into charts and
// PDF reports; an external command can be configured instead.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/GameboyEsc95/VMAS/csvlog"
)

// Outcome is the result of one trigger evaluation.
type Outcome int

const (
	// NotDue means the sample did not qualify.
	NotDue Outcome = iota
	// NothingToProcess means the trigger fired but found no logs.
	NothingToProcess
	// Invoked means the generator ran and exited successfully.
	Invoked
	// Failed means the logs could not be listed or the generator failed.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case NotDue:
		return "not_due"
	case NothingToProcess:
		return "nothing_to_process"
	case Invoked:
		return "invoked"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Decision is the full result of Evaluate.
type Decision struct {
	Outcome Outcome
	Day     int
	Files   []string
	Result  *Result
	Err     error
}

// Fired reports whether the trigger consumed this day.
func (d Decision) Fired() bool {
	return d.Outcome != NotDue
}

// Options configures a Trigger.
type Options struct {
	LogDir  string
	Recent  int
	Invoker Invoker
	// Store is optional; nil keeps debounce state in memory only.
	Store StateStore
}

// Trigger is the calendar debounce in front of the report generator. It is
// not safe for concurrent use; the sampling loop owns it.
type Trigger struct {
	logDir  string
	recent  int
	invoker Invoker
	store   StateStore
	logger  *slog.Logger

	lastDay int
}

// NewTrigger creates an armed Trigger. If logger is nil, a no-op logger is
// used.
func NewTrigger(opts Options, logger *slog.Logger) *Trigger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	recent := opts.Recent
	if recent <= 0 {
		recent = DefaultRecentLogs
	}
	return &Trigger{
		logDir:  opts.LogDir,
		recent:  recent,
		invoker: opts.Invoker,
		store:   opts.Store,
		logger:  logger,
	}
}

// LastDay returns the day of month the trigger last fired on, or 0.
func (t *Trigger) LastDay() int {
	return t.lastDay
}

// Restore loads persisted state. The saved day only counts when it was saved
// on today's date, so a firing on the 14th of last month does not suppress
// the 14th of this month.
func (t *Trigger) Restore(today time.Time) error {
	if t.store == nil {
		return nil
	}
	st, err := t.store.Load()
	if err != nil {
		return fmt.Errorf("report: restore trigger state: %w", err)
	}
	if st == nil {
		return nil
	}
	if st.Date != today.Format(csvlog.FileDateLayout) {
		t.logger.Debug("ignoring trigger state from another date", "date", st.Date)
		return nil
	}
	t.lastDay = st.Day
	t.logger.Info("restored trigger state", "day", st.Day, "outcome", st.Outcome)
	return nil
}

// Qualifies reports whether a sample at ts should fire a trigger that last
// fired on lastDay.
func Qualifies(ts time.Time, lastDay int) bool {
	day := ts.Day()
	return day%2 == 0 && day != lastDay && ts.Minute() >= 1
}

// Evaluate fires the generator if ts qualifies. Once fired, the day is
// consumed regardless of the outcome; a failed run is not retried that day.
func (t *Trigger) Evaluate(ctx context.Context, ts time.Time) Decision {
	if !Qualifies(ts, t.lastDay) {
		return Decision{Outcome: NotDue}
	}

	d := t.fire(ctx, ts)
	t.lastDay = d.Day
	t.persist(ts, d)
	return d
}

func (t *Trigger) fire(ctx context.Context, ts time.Time) Decision {
	d := Decision{Day: ts.Day()}

	files, err := SelectRecent(t.logDir, t.recent)
	if err != nil {
		d.Outcome = Failed
		d.Err = err
		t.logger.Error("report: list logs failed", "dir", t.logDir, "error", err)
		return d
	}
	if len(files) == 0 {
		d.Outcome = NothingToProcess
		t.logger.Info("report due but no logs to process", "dir", t.logDir)
		return d
	}
	d.Files = files

	if t.invoker == nil {
		d.Outcome = Failed
		d.Err = fmt.Errorf("report: no generator configured")
		return d
	}

	res, err := t.invoker.Invoke(ctx, files)
	d.Result = res
	if err != nil {
		d.Outcome = Failed
		d.Err = err
		t.logger.Error("report generator failed", "files", files, "error", err)
		return d
	}

	d.Outcome = Invoked
	if res != nil {
		t.logger.Info("report generated", "files", files, "duration", res.Duration)
	}
	return d
}

func (t *Trigger) persist(ts time.Time, d Decision) {
	if t.store == nil {
		return
	}
	st := State{
		Day:     d.Day,
		Date:    ts.Format(csvlog.FileDateLayout),
		Outcome: d.Outcome.String(),
		FiredAt: ts,
	}
	if err := t.store.Save(st); err != nil {
		t.logger.Warn("could not persist trigger state", "error", err)
	}
}
