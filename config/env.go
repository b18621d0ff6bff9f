package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides copies VMAS_* variables over file values.
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("VMAS_INTERVAL"); ok && v != "" {
		if err := cfg.Sampler.Interval.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("config: VMAS_INTERVAL: %w", err)
		}
	}
	if v, ok := lookup("VMAS_FLUSH_EVERY"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: VMAS_FLUSH_EVERY: %w", err)
		}
		cfg.Sampler.FlushEvery = n
	}
	if v, ok := lookup("VMAS_LOG_DIR"); ok && v != "" {
		cfg.Logs.Dir = v
	}
	if v, ok := lookup("VMAS_REPORT_COMMAND"); ok && v != "" {
		cfg.Report.Command = strings.Fields(v)
	}
	if v, ok := lookup("VMAS_CHART_PATH"); ok && v != "" {
		cfg.Chart.Path = v
	}
	if v, ok := lookup("VMAS_LOG_LEVEL"); ok && v != "" {
		cfg.Daemon.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup("VMAS_SQLITE_PATH"); ok && v != "" {
		cfg.Storage.SQLitePath = v
		cfg.Storage.SQLiteEnabled = true
	}
	return nil
}
