// Package sysmetrics provides the local host metrics provider for vmas.
// It reads CPU, RAM and Disk utilization from /proc and statfs on Linux,
// falls back to gopsutil for CPU and RAM elsewhere, and ranks running
// processes by CPU usage through gopsutil.
package sysmetrics

import "github.com/GameboyEsc95/VMAS/collectors"

const (
	// DefaultTopN is the number of processes kept in each sample.
	DefaultTopN = 5

	// DefaultDiskPath is the filesystem whose usage is sampled.
	DefaultDiskPath = "/"
)

// Options configures a Collector.
type Options struct {
	// DiskPath is the mount point passed to statfs. Empty means DefaultDiskPath.
	DiskPath string

	// TopN is the number of processes reported per sample. Zero means DefaultTopN.
	TopN int

	// Now overrides the sample timestamp source. Nil means time.Now.
	Now collectors.Clock
}

// procStat is the raw per-process reading the collector turns into a
// collectors.ProcessInfo.
type procStat struct {
	pid  int32
	name string
	// cpuSeconds is user+system CPU time consumed since process start.
	cpuSeconds float64
	// lifetimePct is the CPU percentage averaged over the process lifetime,
	// used when no previous reading exists for this PID.
	lifetimePct float64
	rssBytes    uint64
}

// bytesPerMB converts RSS bytes into the MB figure shown in logs.
const bytesPerMB = 1024 * 1024
