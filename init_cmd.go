package main

import (
	"fmt"
	"io"
	"os"

	"github.com/GameboyEsc95/VMAS/config"
)

// initConfig writes the default configuration to path. An existing file is
// left alone.
func initConfig(path string, stdout, stderr io.Writer) int {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(stderr, "config already exists: %s\n", path)
		return 1
	}
	if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
		fmt.Fprintf(stderr, "vmas: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return 0
}
