package console

import (
	"os"
	"strconv"

	"github.com/charmbracelet/x/term"
)

// TerminalWidth returns the width of the terminal on stdout, falling back to
// $COLUMNS and then 80.
func TerminalWidth() int {
	return terminalWidth(func() (int, int, error) { return term.GetSize(os.Stdout.Fd()) }, os.Getenv)
}

func terminalWidth(getSize func() (int, int, error), getenv func(string) string) int {
	if w, _, err := getSize(); err == nil && w > 0 {
		return w
	}
	if cols := getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil && w > 0 {
			return w
		}
	}
	return 80
}
