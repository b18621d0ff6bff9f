// vmas is a resident system metrics sampler.
//
// It samples CPU, memory, disk and the busiest processes every few seconds,
// shows them on the console, keeps a dated CSV log, draws a usage chart and
// runs a report generator over the newest logs on even days of the month.
//
// Usage:
//
//	vmas [flags]
//	vmas -report FILE.csv...
//	vmas -view [FILE.png]
//
// Flags:
//
//	-config string    Path to configuration file (default: ~/.config/vmas/config.yaml)
//	-init-config      Write the default configuration to the -config path
//	-once             Print one sample and exit
//	-tui              Run the interactive dashboard
//	-report           Generate reports for the CSV files given as arguments
//	-health           Check the running sampler's health
//	-json             Output health check as JSON (with -health)
//	-diagnose         Check metric sources and output paths
//	-view             Print the usage chart inline in the terminal
//	-prompt           Print the latest sample as a shell prompt segment
//	-starship         Print a Starship custom module for -prompt
//	-systemd-unit     Print a systemd unit for this binary
//	-man              Print man page to stdout in roff format
//	-verbose          Enable debug logging
//	-version          Print version and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/GameboyEsc95/VMAS/cache"
	"github.com/GameboyEsc95/VMAS/config"
	"github.com/GameboyEsc95/VMAS/display/color"
	"github.com/GameboyEsc95/VMAS/display/console"
	"github.com/GameboyEsc95/VMAS/display/prompt"
	"github.com/GameboyEsc95/VMAS/docs/manpage"
	"github.com/GameboyEsc95/VMAS/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  = flag.String("config", "", "Path to configuration file (default: ~/.config/vmas/config.yaml)")
		writeConfig = flag.Bool("init-config", false, "Write the default configuration to the -config path")
		runOnce     = flag.Bool("once", false, "Print one sample and exit")
		runTUI      = flag.Bool("tui", false, "Run the interactive dashboard")
		runReport   = flag.Bool("report", false, "Generate reports for the CSV files given as arguments")
		runHealth   = flag.Bool("health", false, "Check the running sampler's health")
		healthJSON  = flag.Bool("json", false, "Output health check as JSON (with -health)")
		runDiagnose = flag.Bool("diagnose", false, "Check metric sources and output paths")
		runView     = flag.Bool("view", false, "Print the usage chart inline in the terminal")
		runPrompt   = flag.Bool("prompt", false, "Print the latest sample as a shell prompt segment")
		starship    = flag.Bool("starship", false, "Print a Starship custom module for -prompt")
		systemdUnit = flag.Bool("systemd-unit", false, "Print a systemd unit for this binary")
		showMan     = flag.Bool("man", false, "Print man page to stdout in roff format")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	// ---------------------------------------------------------------
	// Commands that don't require config
	// ---------------------------------------------------------------

	if *showVersion {
		fmt.Printf("vmas %s (%s) built %s\n", version, commit, date)
		return 0
	}

	if *showMan {
		fmt.Print(manpage.Generate(version, commit, date, manFlags()))
		return 0
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "vmas: %v\n", err)
	}

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}

	if *systemdUnit {
		return printUnit(path, *configPath != "")
	}

	if *writeConfig {
		return initConfig(path, os.Stdout, os.Stderr)
	}

	if *starship {
		sc := prompt.DefaultStarshipConfig()
		if *configPath != "" {
			sc.ConfigPath = *configPath
		}
		fmt.Print(prompt.GenerateStarship(sc))
		return 0
	}

	// ---------------------------------------------------------------
	// Load configuration (required for remaining modes)
	// ---------------------------------------------------------------

	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		return 1
	}

	dashboard := *runTUI || cfg.Display.TUI
	resident := !*runReport && !*runDiagnose && !*runHealth && !*runOnce && !*runPrompt && !*runView
	if dashboard && resident && cfg.Daemon.LogFile == "" {
		// The dashboard owns the terminal.
		cfg.Daemon.LogFile = filepath.Join(cfg.Daemon.StateDir, "vmas.log")
	}

	logger, closeLog, err := newLogger(cfg.Daemon, *verbose, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vmas: %v\n", err)
		return 1
	}
	defer closeLog()

	mode, _ := color.ParseMode(cfg.Display.Color)
	color.Apply(mode)

	if *runReport {
		return reportMain(cfg, flag.Args(), logger, os.Stdout, os.Stderr)
	}

	if *runDiagnose {
		return diagnose(cfg, os.Stdout)
	}

	if *runView {
		return viewChart(cfg, flag.Arg(0), os.Stdout, os.Stderr)
	}

	if *runPrompt {
		store, err := cache.NewStore(cfg.Daemon.StateDir, logger)
		if err != nil {
			return 1
		}
		seg := prompt.NewSegment(store, prompt.Options{StaleAfter: 3 * cfg.Sampler.Interval.Duration, Logger: logger})
		if out := seg.String(); out != "" {
			fmt.Println(out)
		}
		return 0
	}

	if *runHealth {
		store, err := cache.NewStore(cfg.Daemon.StateDir, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open state dir: %v\n", err)
			return 1
		}
		return checkHealth(store, staleAfter(cfg), *healthJSON, os.Stdout, os.Stderr)
	}

	// ---------------------------------------------------------------
	// Context with signal handling
	// ---------------------------------------------------------------

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *runOnce {
		if err := sampleOnce(ctx, cfg, logger); err != nil {
			fmt.Fprintf(os.Stderr, "vmas: %v\n", err)
			return 1
		}
		return 0
	}

	// ---------------------------------------------------------------
	// Resident sampler
	// ---------------------------------------------------------------

	opts := daemonOptions{ConfigPath: path}
	if dashboard {
		err = runDashboard(ctx, cfg, opts, logger)
	} else {
		opts.Console = console.New(os.Stdout, console.Options{Clear: color.StdoutIsTerminal()})
		opts.ReportOutput = os.Stdout
		err = runDaemon(ctx, cfg, opts, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "vmas: %v\n", err)
		return 1
	}
	return 0
}

// staleAfter is how old health.json may get before -health reports stale:
// twice the time between durable flushes.
func staleAfter(cfg *config.Config) time.Duration {
	return 2 * cfg.Sampler.Interval.Duration * time.Duration(cfg.Sampler.FlushEvery)
}

func printUnit(configPath string, explicit bool) int {
	unit := service.DefaultUnitConfig()
	if exe, err := os.Executable(); err == nil {
		unit.BinaryPath = exe
	}
	if wd, err := os.Getwd(); err == nil {
		unit.WorkingDirectory = wd
	}
	if _, err := os.Stat(configPath); err == nil || explicit {
		unit.ConfigPath = configPath
	}
	fmt.Print(service.GenerateUnit(unit))
	return 0
}

func manFlags() []manpage.Flag {
	var flags []manpage.Flag
	flag.VisitAll(func(f *flag.Flag) {
		arg, usage := flag.UnquoteUsage(f)
		flags = append(flags, manpage.Flag{Name: f.Name, Arg: arg, Desc: usage})
	})
	return flags
}
