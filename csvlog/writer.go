package csvlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/GameboyEsc95/VMAS/collectors"
)

// DefaultFlushEvery is the number of samples between durable rows. At the
// default 5s sampling period this is one row every five minutes.
const DefaultFlushEvery = 60

// FileDateLayout names log files by calendar date.
const FileDateLayout = "2006-01-02"

// Writer appends samples to dated log files on a sample-count cadence.
type Writer struct {
	dir    string
	every  uint64
	now    collectors.Clock
	logger *slog.Logger
}

// NewWriter creates a Writer for dir. every <= 0 means DefaultFlushEvery.
// now picks the file at write time; nil means time.Now. If logger is nil, a
// no-op logger is used.
func NewWriter(dir string, every int, now collectors.Clock, logger *slog.Logger) *Writer {
	if every <= 0 {
		every = DefaultFlushEvery
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Writer{dir: dir, every: uint64(every), now: now, logger: logger}
}

// Dir returns the log directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Every returns the flush cadence in samples.
func (w *Writer) Every() int {
	return int(w.every)
}

// Path returns the log file for the calendar date of t.
func (w *Writer) Path(t time.Time) string {
	return filepath.Join(w.dir, t.Format(FileDateLayout)+".csv")
}

// Due reports whether counter falls on the flush cadence.
func (w *Writer) Due(counter uint64) bool {
	return counter%w.every == 0
}

// Offer appends s when counter is a multiple of the cadence. It reports
// whether a row was written. On error nothing is retried; the next cadence
// tick writes independently.
func (w *Writer) Offer(s collectors.Sample, counter uint64) (bool, error) {
	if !w.Due(counter) {
		return false, nil
	}
	if _, err := w.Append(s); err != nil {
		return false, err
	}
	return true, nil
}

// Append writes one row for s to the file for the current date, writing the
// header first when the file is empty. It returns the path written.
func (w *Writer) Append(s collectors.Sample) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("csvlog: create directory %s: %w", w.dir, err)
	}

	// The file follows the clock, not the sample, so a write straddling
	// midnight lands in the new day's file.
	path := w.Path(w.now())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("csvlog: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("csvlog: stat %s: %w", path, err)
	}

	line := FormatRow(s) + "\n"
	if info.Size() == 0 {
		line = Header + "\n" + line
		w.logger.Info("started new log file", "path", path)
	}

	if _, err := io.WriteString(f, line); err != nil {
		return "", fmt.Errorf("csvlog: write %s: %w", path, err)
	}

	w.logger.Debug("log row written", "path", path, "cpu", s.CPU)
	return path, nil
}
