package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/GameboyEsc95/VMAS/cache"
	"github.com/GameboyEsc95/VMAS/chart"
	"github.com/GameboyEsc95/VMAS/collectors/sysmetrics"
	"github.com/GameboyEsc95/VMAS/config"
	"github.com/GameboyEsc95/VMAS/csvlog"
	"github.com/GameboyEsc95/VMAS/internal/format"
	"github.com/GameboyEsc95/VMAS/report"
	"github.com/GameboyEsc95/VMAS/storage/sqlite"
)

// diagnose checks every source and output path the sampler depends on and
// prints actionable feedback. Returns 1 if any required check failed.
func diagnose(cfg *config.Config, out io.Writer) int {
	failed := 0
	check := func(ok bool, label, detail string) {
		mark := "✅"
		if !ok {
			mark = "❌"
			failed++
		}
		fmt.Fprintf(out, "   %s %-18s %s\n", mark, label, detail)
	}

	fmt.Fprintln(out, "🔍 vmas diagnostics")
	fmt.Fprintln(out, "============================================================")
	fmt.Fprintln(out)

	// Metric sources
	fmt.Fprintln(out, "📊 Metric sources")
	provider := sysmetrics.New(sysmetrics.Options{DiskPath: cfg.Sampler.DiskPath, TopN: cfg.Sampler.TopN}, nil)
	if err := provider.Probe(); err != nil {
		check(false, "probe", err.Error())
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		res, err := provider.Sample(ctx)
		cancel()
		if err != nil {
			check(false, "sample", err.Error())
		} else {
			check(true, "sample", fmt.Sprintf("mem %s, disk %s, %d processes",
				format.Percent(res.Sample.Memory), format.Percent(res.Sample.Disk), len(res.Sample.TopProcesses)))
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "   ⚠️  %s\n", w)
			}
		}
	}
	fmt.Fprintln(out)

	// Output paths
	fmt.Fprintln(out, "📁 Output paths")
	check(writableDir(cfg.Logs.Dir) == nil, "log dir", cfg.Logs.Dir)
	if logs, err := csvlog.List(cfg.Logs.Dir); err == nil {
		fmt.Fprintf(out, "      %d log file(s)\n", len(logs))
	}
	check(writableDir(filepath.Dir(cfg.Chart.Path)) == nil, "chart", cfg.Chart.Path)
	check(writableDir(cfg.Daemon.StateDir) == nil, "state dir", cfg.Daemon.StateDir)
	if cfg.Storage.SQLiteEnabled {
		if m, err := sqlite.Open(cfg.Storage.SQLitePath, nil); err != nil {
			check(false, "sqlite", err.Error())
		} else {
			n, err := m.Count(context.Background(), nil)
			m.Close()
			check(err == nil, "sqlite", fmt.Sprintf("%s (%d rows)", cfg.Storage.SQLitePath, n))
		}
	}
	fmt.Fprintln(out)

	// Reporting
	fmt.Fprintln(out, "📝 Reporting")
	if len(cfg.Report.Command) == 0 {
		check(true, "generator", "built-in (vmas -report)")
	} else if p, err := exec.LookPath(cfg.Report.Command[0]); err != nil {
		check(false, "generator", err.Error())
	} else {
		check(true, "generator", p)
	}
	if store, err := cache.NewStore(cfg.Daemon.StateDir, nil); err == nil && cfg.Report.PersistState {
		if st, err := report.NewCacheState(store).Load(); err == nil && st != nil {
			fmt.Fprintf(out, "      last fired %s (%s)\n", st.Date, st.Outcome)
		}
	}
	if chart.NewEnvDisplay().Available() {
		fmt.Fprintln(out, "      display available: charts are rendered")
	} else if cfg.Chart.RequireDisplay {
		fmt.Fprintln(out, "      no display: charts are skipped (chart.require_display)")
	}
	fmt.Fprintln(out)

	if failed > 0 {
		fmt.Fprintf(out, "%d check(s) failed.\n", failed)
		return 1
	}
	fmt.Fprintln(out, "✨ All diagnostics passed!")
	return 0
}

// writableDir creates dir if needed and confirms a file can be created in it.
func writableDir(dir string) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".vmas-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
