package sysmetrics

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/GameboyEsc95/VMAS/collectors"
)

// providerName is the unique identifier for this provider.
const providerName = "sysmetrics"

// ErrNoSource is returned by Probe when none of the metric sources can be read.
var ErrNoSource = errors.New("sysmetrics: no metrics source available")

// Collector implements collectors.Provider for the local host.
// It is not safe for concurrent use: CPU and per-process deltas are tracked
// between calls, and the sampling loop is its only caller.
type Collector struct {
	logger   *slog.Logger
	diskPath string
	topN     int
	now      collectors.Clock

	// prevIdle and prevTotal track the last CPU sample for delta computation.
	prevIdle  uint64
	prevTotal uint64

	// prevProc holds cpuSeconds per PID from the previous call.
	prevProc   map[int32]float64
	prevProcAt time.Time

	// Overridable sources for testing.
	openProcStat    func() (io.ReadCloser, error)
	openProcMeminfo func() (io.ReadCloser, error)
	statfsFunc      func(path string, buf *unix.Statfs_t) error
	listProcesses   func(ctx context.Context) ([]procStat, error)

	// hostCPU and hostMem replace /proc where it is unreadable (non-Linux
	// hosts). Nil disables the fallback.
	hostCPU func(ctx context.Context) (float64, error)
	hostMem func(ctx context.Context) (float64, error)
}

// New creates a Collector.
// If logger is nil, a no-op logger is used.
func New(opts Options, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.DiskPath == "" {
		opts.DiskPath = DefaultDiskPath
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Collector{
		logger:   logger,
		diskPath: opts.DiskPath,
		topN:     opts.TopN,
		now:      opts.Now,
		prevProc: make(map[int32]float64),
		openProcStat: func() (io.ReadCloser, error) {
			return os.Open("/proc/stat")
		},
		openProcMeminfo: func() (io.ReadCloser, error) {
			return os.Open("/proc/meminfo")
		},
		statfsFunc:    unix.Statfs,
		listProcesses: listProcesses,
		hostCPU:       hostCPUPercent,
		hostMem:       hostMemPercent,
	}
}

// Name returns the provider's identifier.
func (c *Collector) Name() string {
	return providerName
}

// Probe checks that at least one metric source is readable. It is called once
// at startup; a failure means there is nothing to sample at all.
func (c *Collector) Probe() error {
	var errs []error

	if f, err := c.openProcStat(); err != nil {
		errs = append(errs, fmt.Errorf("open /proc/stat: %w", err))
	} else {
		f.Close()
		return nil
	}

	if f, err := c.openProcMeminfo(); err != nil {
		errs = append(errs, fmt.Errorf("open /proc/meminfo: %w", err))
	} else {
		f.Close()
		return nil
	}

	if c.hostMem != nil {
		if _, err := c.hostMem(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("host memory: %w", err))
		} else {
			return nil
		}
	}

	var st unix.Statfs_t
	if err := c.statfsFunc(c.diskPath, &st); err != nil {
		errs = append(errs, fmt.Errorf("statfs %s: %w", c.diskPath, err))
	} else {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrNoSource, errors.Join(errs...))
}

// Sample gathers CPU, RAM, Disk and the top processes.
func (c *Collector) Sample(ctx context.Context) (*collectors.SampleResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var warnings []string
	s := collectors.Sample{Timestamp: c.now()}

	cpuPct, cpuWarn := c.readCPU()
	if cpuWarn != "" {
		cpuPct, cpuWarn = fallback(ctx, c.hostCPU, cpuPct, cpuWarn)
	}
	if cpuWarn != "" {
		warnings = append(warnings, cpuWarn)
	}
	s.CPU = cpuPct

	ramPct, ramWarn := c.readRAM()
	if ramWarn != "" {
		ramPct, ramWarn = fallback(ctx, c.hostMem, ramPct, ramWarn)
	}
	if ramWarn != "" {
		warnings = append(warnings, ramWarn)
	}
	s.Memory = ramPct

	diskPct, diskWarn := c.readDisk()
	if diskWarn != "" {
		warnings = append(warnings, diskWarn)
	}
	s.Disk = diskPct

	procs, procWarn := c.readTopProcesses(ctx, s.Timestamp)
	if procWarn != "" {
		warnings = append(warnings, procWarn)
	}
	s.TopProcesses = procs

	c.logger.Debug("sysmetrics sampled",
		"cpu", fmt.Sprintf("%.1f%%", s.CPU),
		"ram", fmt.Sprintf("%.1f%%", s.Memory),
		"disk", fmt.Sprintf("%.1f%%", s.Disk),
		"processes", len(s.TopProcesses),
	)

	return &collectors.SampleResult{Sample: s, Warnings: warnings}, nil
}

// fallback replaces a failed /proc reading with src. When src is nil or also
// fails, the original value and warning stand.
func fallback(ctx context.Context, src func(context.Context) (float64, error), pct float64, warn string) (float64, string) {
	if src == nil {
		return pct, warn
	}
	v, err := src(ctx)
	if err != nil {
		return pct, fmt.Sprintf("%s; gopsutil: %v", warn, err)
	}
	return collectors.ClampPercent(v), ""
}

// readCPU reads /proc/stat to compute CPU usage as a percentage.
// It calculates the delta between the current and previous readings.
// On the first call it returns 0 and seeds the counters.
func (c *Collector) readCPU() (float64, string) {
	f, err := c.openProcStat()
	if err != nil {
		return 0, fmt.Sprintf("sysmetrics: open /proc/stat: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			return 0, "sysmetrics: /proc/stat cpu line too short"
		}

		// Fields: cpu user nice system idle iowait irq softirq steal ...
		var total, idle uint64
		for i := 1; i < len(fields); i++ {
			val, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return 0, fmt.Sprintf("sysmetrics: parse /proc/stat field %d: %v", i, err)
			}
			total += val
			if i == 4 || i == 5 { // idle, iowait
				idle += val
			}
		}

		if c.prevTotal == 0 || total < c.prevTotal {
			c.prevIdle = idle
			c.prevTotal = total
			return 0, ""
		}

		deltaTotal := total - c.prevTotal
		deltaIdle := idle - c.prevIdle

		c.prevIdle = idle
		c.prevTotal = total

		if deltaTotal == 0 {
			return 0, ""
		}

		return collectors.ClampPercent((1.0 - float64(deltaIdle)/float64(deltaTotal)) * 100.0), ""
	}

	return 0, "sysmetrics: cpu line not found in /proc/stat"
}

// readRAM reads /proc/meminfo to compute RAM usage as a percentage.
// Usage = (MemTotal - MemAvailable) / MemTotal * 100
func (c *Collector) readRAM() (float64, string) {
	f, err := c.openProcMeminfo()
	if err != nil {
		return 0, fmt.Sprintf("sysmetrics: open /proc/meminfo: %v", err)
	}
	defer f.Close()

	var memTotal, memAvailable uint64
	var foundTotal, foundAvailable bool

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "MemTotal:") {
			val, err := parseMemInfoLine(line)
			if err != nil {
				return 0, fmt.Sprintf("sysmetrics: parse MemTotal: %v", err)
			}
			memTotal = val
			foundTotal = true
		} else if strings.HasPrefix(line, "MemAvailable:") {
			val, err := parseMemInfoLine(line)
			if err != nil {
				return 0, fmt.Sprintf("sysmetrics: parse MemAvailable: %v", err)
			}
			memAvailable = val
			foundAvailable = true
		}

		if foundTotal && foundAvailable {
			break
		}
	}

	if !foundTotal {
		return 0, "sysmetrics: MemTotal not found in /proc/meminfo"
	}
	if !foundAvailable {
		return 0, "sysmetrics: MemAvailable not found in /proc/meminfo"
	}
	if memTotal == 0 {
		return 0, "sysmetrics: MemTotal is zero"
	}
	if memAvailable > memTotal {
		memAvailable = memTotal
	}

	return collectors.Percent(float64(memTotal-memAvailable), float64(memTotal)), ""
}

// parseMemInfoLine extracts the numeric kB value from a /proc/meminfo line.
// Format: "MemTotal:       16384000 kB"
func parseMemInfoLine(line string) (uint64, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, fmt.Errorf("too few fields: %q", line)
	}
	return strconv.ParseUint(fields[1], 10, 64)
}

// readDisk uses statfs to compute filesystem usage as a percentage.
// A filesystem reporting zero blocks yields 0 with a warning.
func (c *Collector) readDisk() (float64, string) {
	var stat unix.Statfs_t
	if err := c.statfsFunc(c.diskPath, &stat); err != nil {
		return 0, fmt.Sprintf("sysmetrics: statfs %s: %v", c.diskPath, err)
	}

	if stat.Blocks == 0 {
		return 0, "sysmetrics: filesystem reports zero blocks"
	}

	// Available blocks for non-root users.
	used := stat.Blocks - stat.Bfree
	total := used + stat.Bavail

	return collectors.Percent(float64(used), float64(total)), ""
}
