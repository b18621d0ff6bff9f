package prompt

import (
	"fmt"
	"strings"
)

// StarshipConfig describes the generated Starship custom module.
type StarshipConfig struct {
	BinaryPath string
	ConfigPath string
	Symbol     string
	Style      string
}

// DefaultStarshipConfig runs "vmas" from PATH.
func DefaultStarshipConfig() StarshipConfig {
	return StarshipConfig{
		BinaryPath: "vmas",
		Symbol:     "",
		Style:      "cyan",
	}
}

// GenerateStarship returns a [custom.vmas] section for starship.toml.
func GenerateStarship(cfg StarshipConfig) string {
	command := cfg.BinaryPath
	if cfg.ConfigPath != "" {
		command += " -config " + cfg.ConfigPath
	}
	command += " -prompt"

	var b strings.Builder
	b.WriteString("# vmas Starship custom module\n")
	b.WriteString("# Add \"${custom.vmas}\" to your format string\n\n")
	b.WriteString("[custom.vmas]\n")
	fmt.Fprintf(&b, "command = %q\n", command)
	fmt.Fprintf(&b, "when = %q\n", "command -v "+cfg.BinaryPath)
	b.WriteString("format = \"[$symbol($output)]($style) \"\n")
	fmt.Fprintf(&b, "symbol = %q\n", cfg.Symbol)
	fmt.Fprintf(&b, "style = %q\n", cfg.Style)
	b.WriteString("shell = [\"sh\"]\n")
	return b.String()
}
