// Package csvlog writes and reads the durable, dated metric logs.
//
// One file is kept per calendar day, named YYYY-MM-DD.csv:
//
//	timestamp,cpu,memory,disk,top5_processes
//	2024-03-14 10:05:00,12.50,63.20,41.00,"firefox (PID 812) 9.10% 512.33MB | Xorg (PID 77) 2.00% 80.12MB"
//
// The top5_processes column is a single quoted field holding a pipe-delimited,
// human-readable summary. It is not structured CSV.
package csvlog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/GameboyEsc95/VMAS/collectors"
)

// Header is the first row of every log file.
const Header = "timestamp,cpu,memory,disk,top5_processes"

// TimeLayout is the timestamp format of the first column (local time).
const TimeLayout = "2006-01-02 15:04:05"

// processSep separates entries inside the top5_processes field.
const processSep = " | "

// Row is one parsed log line.
type Row struct {
	Timestamp    time.Time
	CPU          float64
	Memory       float64
	Disk         float64
	TopProcesses []collectors.ProcessInfo
}

// FormatRow renders a sample as a log line, without the trailing newline.
// Numbers use two decimal places.
func FormatRow(s collectors.Sample) string {
	return fmt.Sprintf("%s,%.2f,%.2f,%.2f,%s",
		s.Timestamp.Local().Format(TimeLayout),
		s.CPU,
		s.Memory,
		s.Disk,
		quote(FormatProcessSummary(s.TopProcesses)),
	)
}

// FormatProcessSummary renders processes as "name (PID n) c.cc% m.mmMB"
// entries joined by " | ". A '|' in a process name becomes '/'.
func FormatProcessSummary(procs []collectors.ProcessInfo) string {
	parts := make([]string, 0, len(procs))
	for _, p := range procs {
		name := strings.ReplaceAll(p.Name, "|", "/")
		parts = append(parts, fmt.Sprintf("%s (PID %d) %.2f%% %.2fMB", name, p.PID, p.CPU, p.MemMB))
	}
	return strings.Join(parts, processSep)
}

var processEntryRe = regexp.MustCompile(`^(.*) \(PID (-?\d+)\) (-?[0-9.]+)% (-?[0-9.]+)MB$`)

// ParseProcessSummary reverses FormatProcessSummary.
func ParseProcessSummary(field string) ([]collectors.ProcessInfo, error) {
	if strings.TrimSpace(field) == "" {
		return nil, nil
	}

	entries := strings.Split(field, processSep)
	out := make([]collectors.ProcessInfo, 0, len(entries))
	for _, e := range entries {
		m := processEntryRe.FindStringSubmatch(e)
		if m == nil {
			return nil, fmt.Errorf("csvlog: malformed process entry %q", e)
		}
		pid, err := strconv.ParseInt(m[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("csvlog: parse pid in %q: %w", e, err)
		}
		cpu, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return nil, fmt.Errorf("csvlog: parse cpu in %q: %w", e, err)
		}
		mem, err := strconv.ParseFloat(m[4], 64)
		if err != nil {
			return nil, fmt.Errorf("csvlog: parse memory in %q: %w", e, err)
		}
		out = append(out, collectors.ProcessInfo{
			Name:  m[1],
			PID:   int32(pid),
			CPU:   cpu,
			MemMB: mem,
		})
	}
	return out, nil
}

// parseRecord converts one CSV record into a Row.
func parseRecord(rec []string) (Row, error) {
	if len(rec) != 5 {
		return Row{}, fmt.Errorf("csvlog: expected 5 fields, got %d", len(rec))
	}

	ts, err := time.ParseInLocation(TimeLayout, rec[0], time.Local)
	if err != nil {
		return Row{}, fmt.Errorf("csvlog: parse timestamp: %w", err)
	}

	var nums [3]float64
	for i := range nums {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return Row{}, fmt.Errorf("csvlog: parse column %d: %w", i+2, err)
		}
		nums[i] = v
	}

	procs, err := ParseProcessSummary(rec[4])
	if err != nil {
		return Row{}, err
	}

	return Row{
		Timestamp:    ts,
		CPU:          nums[0],
		Memory:       nums[1],
		Disk:         nums[2],
		TopProcesses: procs,
	}, nil
}

// quote wraps s in double quotes, doubling any quote inside (RFC 4180).
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
