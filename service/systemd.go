// Package service generates a systemd unit that keeps vmas running.
//
// The unit is printed, not installed. Install it with
//
//	vmas -systemd-unit > ~/.config/systemd/user/vmas.service
//	systemctl --user enable --now vmas
package service

import (
	"fmt"
	"strings"
)

// Scope selects where the unit is installed.
type Scope int

const (
	// User units run under the invoking user's systemd instance.
	User Scope = iota
	// System units run under PID 1 and need a User= line.
	System
)

// String returns the lowercase name of the scope.
func (s Scope) String() string {
	switch s {
	case User:
		return "user"
	case System:
		return "system"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// UnitConfig controls the generated unit.
type UnitConfig struct {
	// BinaryPath is the absolute path of the vmas executable.
	BinaryPath string
	// ConfigPath is passed with -config. Empty omits the flag.
	ConfigPath string
	// WorkingDirectory is where relative log, chart and report paths land.
	WorkingDirectory string
	// Scope is User or System.
	Scope Scope
	// RunAs is the account for System units.
	RunAs string
}

// DefaultUnitConfig returns a user-scope unit that runs vmas from PATH.
func DefaultUnitConfig() UnitConfig {
	return UnitConfig{
		BinaryPath: "/usr/local/bin/vmas",
		Scope:      User,
	}
}

// GenerateUnit returns the unit file text.
func GenerateUnit(cfg UnitConfig) string {
	exec := quoteArg(cfg.BinaryPath)
	if cfg.ConfigPath != "" {
		exec += " -config " + quoteArg(cfg.ConfigPath)
	}

	var extra strings.Builder
	if cfg.WorkingDirectory != "" {
		fmt.Fprintf(&extra, "WorkingDirectory=%s\n", cfg.WorkingDirectory)
	}
	if cfg.Scope == System && cfg.RunAs != "" {
		fmt.Fprintf(&extra, "User=%s\n", cfg.RunAs)
	}

	wantedBy := "default.target"
	if cfg.Scope == System {
		wantedBy = "multi-user.target"
	}

	return fmt.Sprintf(`# vmas %[1]s unit
[Unit]
Description=vmas system metrics sampler
After=network.target

[Service]
Type=simple
ExecStart=%[2]s
%[3]sRestart=always
RestartSec=5

[Install]
WantedBy=%[4]s
`, cfg.Scope, exec, extra.String(), wantedBy)
}

// quoteArg double-quotes s for ExecStart when it contains whitespace or
// quotes, following systemd's command line syntax.
func quoteArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"'\\") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
