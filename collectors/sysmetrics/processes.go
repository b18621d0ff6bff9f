package sysmetrics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/GameboyEsc95/VMAS/collectors"
)

// listProcesses enumerates running processes through gopsutil.
// Processes that exit mid-enumeration or deny access are skipped.
func listProcesses(ctx context.Context) ([]procStat, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]procStat, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}

		st := procStat{pid: p.Pid, name: name}

		if times, err := p.TimesWithContext(ctx); err == nil {
			st.cpuSeconds = times.User + times.System
		}
		if pct, err := p.CPUPercentWithContext(ctx); err == nil {
			st.lifetimePct = pct
		}
		if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
			st.rssBytes = mem.RSS
		}

		out = append(out, st)
	}

	return out, nil
}

// readTopProcesses returns the topN processes by CPU usage.
// CPU usage is the delta of consumed CPU seconds since the previous call over
// the elapsed wall time; PIDs seen for the first time fall back to their
// lifetime average.
func (c *Collector) readTopProcesses(ctx context.Context, now time.Time) ([]collectors.ProcessInfo, string) {
	stats, err := c.listProcesses(ctx)
	if err != nil {
		return nil, fmt.Sprintf("sysmetrics: list processes: %v", err)
	}

	elapsed := now.Sub(c.prevProcAt).Seconds()
	havePrev := !c.prevProcAt.IsZero() && elapsed > 0

	next := make(map[int32]float64, len(stats))
	infos := make([]collectors.ProcessInfo, 0, len(stats))

	for _, st := range stats {
		next[st.pid] = st.cpuSeconds

		cpu := st.lifetimePct
		if prev, ok := c.prevProc[st.pid]; ok && havePrev {
			delta := st.cpuSeconds - prev
			if delta < 0 {
				delta = 0
			}
			cpu = delta / elapsed * 100.0
		}

		infos = append(infos, collectors.ProcessInfo{
			Name:  sanitizeName(st.name),
			PID:   st.pid,
			CPU:   cpu,
			MemMB: float64(st.rssBytes) / bytesPerMB,
		})
	}

	c.prevProc = next
	c.prevProcAt = now

	return topByCPU(infos, c.topN), ""
}

// topByCPU sorts by CPU descending, then PID ascending, and keeps n entries.
func topByCPU(infos []collectors.ProcessInfo, n int) []collectors.ProcessInfo {
	sort.SliceStable(infos, func(i, j int) bool {
		if infos[i].CPU != infos[j].CPU {
			return infos[i].CPU > infos[j].CPU
		}
		return infos[i].PID < infos[j].PID
	})
	if len(infos) > n {
		infos = infos[:n]
	}
	return infos
}

// sanitizeName trims a process name and replaces control characters, which
// would otherwise break the console layout.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, name)
}
