package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/GameboyEsc95/VMAS/cache"
	"github.com/GameboyEsc95/VMAS/chart"
	"github.com/GameboyEsc95/VMAS/collectors"
	"github.com/GameboyEsc95/VMAS/collectors/sysmetrics"
	"github.com/GameboyEsc95/VMAS/config"
	"github.com/GameboyEsc95/VMAS/csvlog"
	"github.com/GameboyEsc95/VMAS/display/console"
	"github.com/GameboyEsc95/VMAS/display/prompt"
	"github.com/GameboyEsc95/VMAS/display/tui"
	"github.com/GameboyEsc95/VMAS/internal/retry"
	"github.com/GameboyEsc95/VMAS/report"
	"github.com/GameboyEsc95/VMAS/sampler"
	"github.com/GameboyEsc95/VMAS/storage/sqlite"
)

// daemonOptions carries the front-end choices made by main.
type daemonOptions struct {
	// ConfigPath is handed to the self-invoked report generator.
	ConfigPath   string
	Console      sampler.Console
	Observer     sampler.Observer
	ReportOutput io.Writer
}

// daemon owns the resident sampler: the session and everything wired into
// it, plus the PID file and health reporting around it.
type daemon struct {
	config  *config.Config
	logger  *slog.Logger
	store   *cache.Store
	session *sampler.Session
	trigger *report.Trigger
	mirror  *sqlite.Mirror
	pidFile string
	next    sampler.Observer
	now     collectors.Clock

	started    time.Time
	lastReport time.Time
}

// guardedMirror drops inserts while the breaker is open. A dropped insert is
// not an error.
type guardedMirror struct {
	mirror  sampler.Mirror
	breaker *retry.Breaker
}

func newGuardedMirror(m sampler.Mirror, logger *slog.Logger) *guardedMirror {
	cfg := retry.DefaultConfig("sqlite")
	cfg.Logger = logger
	return &guardedMirror{mirror: m, breaker: retry.New(cfg)}
}

func (g *guardedMirror) Insert(ctx context.Context, s collectors.Sample) error {
	err := g.breaker.Do(ctx, func(ctx context.Context) error {
		return g.mirror.Insert(ctx, s)
	})
	if errors.Is(err, retry.ErrOpen) {
		return nil
	}
	return err
}

// newDaemon builds the sampling session from the configuration. A provider
// that cannot read any metric source is fatal here, before the loop starts.
func newDaemon(cfg *config.Config, opts daemonOptions, logger *slog.Logger) (*daemon, error) {
	store, err := cache.NewStore(cfg.Daemon.StateDir, logger)
	if err != nil {
		return nil, fmt.Errorf("daemon: create state store: %w", err)
	}

	provider := sysmetrics.New(sysmetrics.Options{
		DiskPath: cfg.Sampler.DiskPath,
		TopN:     cfg.Sampler.TopN,
	}, logger)
	if err := provider.Probe(); err != nil {
		return nil, fmt.Errorf("daemon: %w", err)
	}

	invoker, err := newInvoker(cfg, opts.ConfigPath, logger)
	if err != nil {
		return nil, fmt.Errorf("daemon: %w", err)
	}

	var state report.StateStore
	if cfg.Report.PersistState {
		state = report.NewCacheState(store)
	}
	trigger := report.NewTrigger(report.Options{
		LogDir:  cfg.Logs.Dir,
		Recent:  cfg.Report.RecentLogs,
		Invoker: invoker,
		Store:   state,
	}, logger)
	if err := trigger.Restore(time.Now()); err != nil {
		logger.Warn("could not restore report trigger state", "error", err)
	}

	var display chart.Display = chart.AlwaysDisplay{}
	if cfg.Chart.RequireDisplay {
		display = chart.NewEnvDisplay()
	}

	d := &daemon{
		config:  cfg,
		logger:  logger,
		store:   store,
		trigger: trigger,
		pidFile: cfg.PIDFile(),
		next:    opts.Observer,
		now:     time.Now,
	}

	scfg := sampler.Config{
		Provider:  provider,
		Console:   opts.Console,
		LogWriter: csvlog.NewWriter(cfg.Logs.Dir, cfg.Sampler.FlushEvery, d.now, logger),
		Trigger:   trigger,
		Renderer: chart.NewRenderer(chart.Options{
			Path:   cfg.Chart.Path,
			Width:  cfg.Chart.Width,
			Height: cfg.Chart.Height,
		}, logger),
		Display:      display,
		Observer:     d,
		Interval:     cfg.Sampler.Interval.Duration,
		BufferSize:   cfg.Sampler.BufferSize,
		ReportOutput: opts.ReportOutput,
	}

	if cfg.Storage.SQLiteEnabled {
		m, err := sqlite.Open(cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("daemon: %w", err)
		}
		d.mirror = m
		scfg.Mirror = newGuardedMirror(m, logger)
	}

	d.session, err = sampler.New(scfg, logger)
	if err != nil {
		d.close()
		return nil, err
	}
	return d, nil
}

// newInvoker returns the configured generator, or this binary's -report mode
// when no command is configured.
func newInvoker(cfg *config.Config, configPath string, logger *slog.Logger) (*report.ExecInvoker, error) {
	command := cfg.Report.Command
	if len(command) == 0 {
		self, err := report.SelfCommand()
		if err != nil {
			return nil, err
		}
		command = []string{self[0]}
		if configPath != "" {
			command = append(command, "-config", configPath)
		}
		command = append(command, self[1:]...)
	}
	return report.NewExecInvoker(command, cfg.Report.Timeout.Duration, logger)
}

// writePIDFile writes the current process PID to the PID file.
func (d *daemon) writePIDFile() error {
	dir := filepath.Dir(d.pidFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create PID file directory: %w", err)
	}
	pid := os.Getpid()
	if err := os.WriteFile(d.pidFile, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	d.logger.Info("wrote PID file", "path", d.pidFile, "pid", pid)
	return nil
}

// removePIDFile removes the PID file on shutdown.
func (d *daemon) removePIDFile() {
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		d.logger.Error("failed to remove PID file", "path", d.pidFile, "error", err)
		return
	}
	d.logger.Info("removed PID file", "path", d.pidFile)
}

// isRunning checks if another sampler is already running by reading the PID
// file and checking if the process exists. Corrupt or stale PID files are
// cleaned up.
func (d *daemon) isRunning() (bool, int) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		return false, 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		d.logger.Warn("corrupt PID file, removing", "path", d.pidFile, "content", string(data))
		os.Remove(d.pidFile)
		return false, 0
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		os.Remove(d.pidFile)
		return false, 0
	}

	// Signal 0 probes for existence without delivering anything.
	if err := process.Signal(syscall.Signal(0)); err != nil {
		d.logger.Warn("stale PID file, removing", "path", d.pidFile, "pid", pid)
		os.Remove(d.pidFile)
		return false, 0
	}

	return true, pid
}

// run holds the PID file and drives the session until ctx is cancelled.
func (d *daemon) run(ctx context.Context) error {
	if running, pid := d.isRunning(); running {
		return fmt.Errorf("sampler already running (PID %d)", pid)
	}

	if err := d.writePIDFile(); err != nil {
		return err
	}
	defer d.removePIDFile()

	d.started = d.now()
	d.writeHealth(0, time.Time{})

	err := d.session.Run(ctx)
	d.shutdown()
	return err
}

// Observe records health after durable flushes and report runs, then passes
// the snapshot on.
func (d *daemon) Observe(s sampler.Snapshot) {
	if s.Report.Fired() {
		d.lastReport = s.Sample.Timestamp
	}
	if err := prompt.Store(d.store, s.Sample); err != nil {
		d.logger.Debug("latest sample not stored", "error", err)
	}
	if s.Flushed || s.Report.Fired() {
		d.writeHealth(s.Iteration, s.Sample.Timestamp)
	}
	if d.next != nil {
		d.next.Observe(s)
	}
}

func (d *daemon) writeHealth(iterations uint64, lastSample time.Time) {
	status := HealthStatus{
		Status:     "ok",
		PID:        os.Getpid(),
		StartedAt:  d.started,
		UpdatedAt:  d.now(),
		LastSample: lastSample,
		Iterations: iterations,
		LastReport: d.lastReport,
	}
	if err := writeHealth(d.store, status); err != nil {
		d.logger.Error("health write failed", "error", err)
	}
}

// shutdown logs final state on exit and hides the prompt segment.
func (d *daemon) shutdown() {
	if err := prompt.Clear(d.store); err != nil {
		d.logger.Warn("latest sample not cleared", "error", err)
	}
	d.logger.Info("sampler shut down",
		"iterations", d.session.Iterations(),
		"last_report_day", d.trigger.LastDay(),
	)
	if meta, err := d.store.Meta(); err == nil {
		for key, ts := range meta.LastUpdate {
			d.logger.Debug("state entry at shutdown", "key", key, "age", time.Since(ts).String())
		}
	}
}

func (d *daemon) close() {
	if d.mirror != nil {
		if err := d.mirror.Close(); err != nil {
			d.logger.Error("close sqlite mirror", "error", err)
		}
	}
}

// runDaemon runs the sampler with plain console output.
func runDaemon(ctx context.Context, cfg *config.Config, opts daemonOptions, logger *slog.Logger) error {
	d, err := newDaemon(cfg, opts, logger)
	if err != nil {
		return err
	}
	defer d.close()
	return d.run(ctx)
}

// runDashboard runs the sampler behind the interactive dashboard. Quitting
// the dashboard stops the sampler, and a sampler failure closes the
// dashboard.
func runDashboard(ctx context.Context, cfg *config.Config, opts daemonOptions, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	p := tea.NewProgram(tui.NewModel(), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(gCtx))

	opts.Console = nil
	opts.ReportOutput = nil
	opts.Observer = tui.NewNotifier(p)

	d, err := newDaemon(cfg, opts, logger)
	if err != nil {
		return err
	}
	defer d.close()

	g.Go(func() error {
		err := d.run(gCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	return g.Wait()
}

// sampleOnce prints a single sample. The CPU figure needs two readings, so
// the provider is primed first.
func sampleOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	provider := sysmetrics.New(sysmetrics.Options{
		DiskPath: cfg.Sampler.DiskPath,
		TopN:     cfg.Sampler.TopN,
	}, logger)
	if err := provider.Probe(); err != nil {
		return err
	}
	if _, err := provider.Sample(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second):
	}

	session, err := sampler.New(sampler.Config{
		Provider: provider,
		Console:  console.New(os.Stdout, console.Options{}),
	}, logger)
	if err != nil {
		return err
	}
	_, err = session.Step(ctx)
	return err
}
