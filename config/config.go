// Package config provides configuration parsing for vmas.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the vmas configuration.
type Config struct {
	// Sampler holds sampling loop settings.
	Sampler SamplerConfig `yaml:"sampler" toml:"sampler"`

	// Logs holds durable log settings.
	Logs LogsConfig `yaml:"logs" toml:"logs"`

	// Report holds report trigger settings.
	Report ReportConfig `yaml:"report" toml:"report"`

	// Chart holds chart rendering settings.
	Chart ChartConfig `yaml:"chart" toml:"chart"`

	// Storage holds the optional SQLite mirror settings.
	Storage StorageConfig `yaml:"storage" toml:"storage"`

	// Daemon holds process-level settings.
	Daemon DaemonConfig `yaml:"daemon" toml:"daemon"`

	// Display holds console settings.
	Display DisplayConfig `yaml:"display" toml:"display"`
}

// SamplerConfig holds sampling loop settings.
type SamplerConfig struct {
	// Interval is the time between iteration starts.
	Interval Duration `yaml:"interval" toml:"interval"`
	// FlushEvery appends every Nth sample to the durable log.
	FlushEvery int `yaml:"flush_every" toml:"flush_every"`
	// BufferSize is the rolling buffer capacity.
	BufferSize int `yaml:"buffer_size" toml:"buffer_size"`
	// TopN is how many processes each sample lists.
	TopN int `yaml:"top_n" toml:"top_n"`
	// DiskPath is the filesystem whose usage is sampled.
	DiskPath string `yaml:"disk_path" toml:"disk_path"`
}

// LogsConfig holds durable log settings.
type LogsConfig struct {
	// Dir holds one CSV file per local date.
	Dir string `yaml:"dir" toml:"dir"`
}

// ReportConfig holds report trigger settings.
type ReportConfig struct {
	// Command is the generator argv. The selected log paths are appended.
	// Empty means this executable's -report mode.
	Command []string `yaml:"command" toml:"command"`
	// RecentLogs is how many of the newest logs a run receives.
	RecentLogs int `yaml:"recent_logs" toml:"recent_logs"`
	// Timeout bounds one generator run.
	Timeout Duration `yaml:"timeout" toml:"timeout"`
	// PersistState keeps the last fired day across restarts.
	PersistState bool `yaml:"persist_state" toml:"persist_state"`
	// OutputDir receives generated reports.
	OutputDir string `yaml:"output_dir" toml:"output_dir"`
}

// ChartConfig holds chart rendering settings.
type ChartConfig struct {
	Path   string `yaml:"path" toml:"path"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
	// RequireDisplay skips rendering when no display is available.
	RequireDisplay bool `yaml:"require_display" toml:"require_display"`
}

// StorageConfig holds the optional SQLite mirror settings.
type StorageConfig struct {
	SQLiteEnabled bool   `yaml:"sqlite_enabled" toml:"sqlite_enabled"`
	SQLitePath    string `yaml:"sqlite_path" toml:"sqlite_path"`
}

// DaemonConfig holds process-level settings.
type DaemonConfig struct {
	// StateDir holds trigger state, health and the PID file.
	StateDir string `yaml:"state_dir" toml:"state_dir"`
	// PIDFile overrides <state_dir>/vmas.pid.
	PIDFile string `yaml:"pid_file" toml:"pid_file"`
	// LogFile receives diagnostics. Empty means stderr.
	LogFile string `yaml:"log_file" toml:"log_file"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level"`
}

// DisplayConfig holds console settings.
type DisplayConfig struct {
	// TUI runs the interactive dashboard instead of the plain console.
	TUI bool `yaml:"tui" toml:"tui"`
	// Color is auto, always or never.
	Color string `yaml:"color" toml:"color"`
	// ImageProtocol is how -view prints the chart: auto, kitty, iterm2 or
	// halfblock.
	ImageProtocol string `yaml:"image_protocol" toml:"image_protocol"`
}

// Duration is a time.Duration that reads and writes strings like "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string. Negative values are rejected.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if v < 0 {
		return fmt.Errorf("negative duration %q", s)
	}
	d.Duration = v
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	stateDir := filepath.Join(xdgStateHome(home), "vmas")

	return &Config{
		Sampler: SamplerConfig{
			Interval:   Duration{5 * time.Second},
			FlushEvery: 60,
			BufferSize: 10,
			TopN:       5,
			DiskPath:   "/",
		},
		Logs: LogsConfig{
			Dir: "logs",
		},
		Report: ReportConfig{
			RecentLogs:   2,
			Timeout:      Duration{10 * time.Minute},
			PersistState: true,
			OutputDir:    "reports",
		},
		Chart: ChartConfig{
			Path:           "usage_graph.png",
			Width:          640,
			Height:         480,
			RequireDisplay: true,
		},
		Storage: StorageConfig{
			SQLiteEnabled: false,
			SQLitePath:    "metrics.db",
		},
		Daemon: DaemonConfig{
			StateDir: stateDir,
			LogLevel: "info",
		},
		Display: DisplayConfig{
			Color:         "auto",
			ImageProtocol: "auto",
		},
	}
}

// DefaultPath returns the config file looked up when -config is not given.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(xdgConfigHome(home), "vmas", "config.yaml")
}

// LoadConfig loads configuration from a YAML or TOML file (chosen by
// extension), merging with defaults, then applies VMAS_* environment
// overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := decode(path, data, config); err != nil {
				return nil, err
			}
		}
	}

	if err := applyEnvOverrides(config, os.LookupEnv); err != nil {
		return nil, err
	}
	return config, nil
}

func decode(path string, data []byte, config *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), config); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for required fields and logical consistency.
func (c *Config) Validate() error {
	if c.Sampler.Interval.Duration <= 0 {
		return fmt.Errorf("sampler.interval must be positive, got %s", c.Sampler.Interval)
	}
	if c.Sampler.FlushEvery < 1 {
		return fmt.Errorf("sampler.flush_every must be at least 1, got %d", c.Sampler.FlushEvery)
	}
	if c.Sampler.BufferSize < 1 {
		return fmt.Errorf("sampler.buffer_size must be at least 1, got %d", c.Sampler.BufferSize)
	}
	if c.Sampler.TopN < 0 {
		return fmt.Errorf("sampler.top_n must be non-negative, got %d", c.Sampler.TopN)
	}
	if c.Sampler.DiskPath == "" {
		return fmt.Errorf("sampler.disk_path is required")
	}
	if c.Logs.Dir == "" {
		return fmt.Errorf("logs.dir is required")
	}

	if c.Report.RecentLogs < 1 {
		return fmt.Errorf("report.recent_logs must be at least 1, got %d", c.Report.RecentLogs)
	}
	if len(c.Report.Command) > 0 && strings.TrimSpace(c.Report.Command[0]) == "" {
		return fmt.Errorf("report.command[0] must name a program")
	}

	if c.Chart.Path == "" {
		return fmt.Errorf("chart.path is required")
	}
	if c.Chart.Width < 64 || c.Chart.Height < 64 {
		return fmt.Errorf("chart size must be at least 64x64, got %dx%d", c.Chart.Width, c.Chart.Height)
	}

	if c.Storage.SQLiteEnabled && c.Storage.SQLitePath == "" {
		return fmt.Errorf("storage.sqlite_path is required when sqlite is enabled")
	}

	if c.Daemon.StateDir == "" {
		return fmt.Errorf("daemon.state_dir is required")
	}
	switch strings.ToLower(c.Daemon.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("daemon.log_level must be 'debug', 'info', 'warn', or 'error', got %q", c.Daemon.LogLevel)
	}

	switch c.Display.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("display.color must be 'auto', 'always', or 'never', got %q", c.Display.Color)
	}

	switch c.Display.ImageProtocol {
	case "", "auto", "kitty", "iterm2", "halfblock":
	default:
		return fmt.Errorf("display.image_protocol must be 'auto', 'kitty', 'iterm2', or 'halfblock', got %q", c.Display.ImageProtocol)
	}

	return nil
}

// PIDFile returns the configured PID file or the default under StateDir.
func (c *Config) PIDFile() string {
	if c.Daemon.PIDFile != "" {
		return c.Daemon.PIDFile
	}
	return filepath.Join(c.Daemon.StateDir, "vmas.pid")
}

// SaveConfig saves configuration as YAML, or TOML when path ends in .toml.
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("config: create %s: %w", dir, err)
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var b strings.Builder
		if err := toml.NewEncoder(&b).Encode(config); err != nil {
			return fmt.Errorf("config: encode: %w", err)
		}
		data = []byte(b.String())
	} else {
		var err error
		data, err = yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("config: encode: %w", err)
		}
	}

	return os.WriteFile(path, data, 0644)
}

func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

func xdgStateHome(home string) string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".local", "state")
}
