package sysmetrics

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// hostCPUPercent is the portable CPU source used when /proc/stat cannot be
// read. An interval of 0 compares against gopsutil's previous call, which
// matches the once-per-iteration delta of the /proc path.
func hostCPUPercent(ctx context.Context) (float64, error) {
	pcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}
	if len(pcts) == 0 {
		return 0, errors.New("no cpu totals")
	}
	return pcts[0], nil
}

// hostMemPercent is the portable memory source used when /proc/meminfo
// cannot be read.
func hostMemPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}
