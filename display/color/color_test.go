package color

import (
	"strings"
	"testing"
)

func TestShouldDisable(t *testing.T) {
	env := func(vars map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) {
			v, ok := vars[k]
			return v, ok
		}
	}
	tty := func() bool { return true }
	pipe := func() bool { return false }

	tests := []struct {
		name   string
		lookup func(string) (string, bool)
		isTTY  func() bool
		want   bool
	}{
		{"tty without NO_COLOR", env(nil), tty, false},
		{"NO_COLOR empty still disables", env(map[string]string{"NO_COLOR": ""}), tty, true},
		{"NO_COLOR set", env(map[string]string{"NO_COLOR": "1"}), tty, true},
		{"piped", env(nil), pipe, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldDisable(tt.lookup, tt.isTTY); got != tt.want {
				t.Errorf("shouldDisable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{" Always ", ModeAlways, false},
		{"never", ModeNever, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestApplyExplicitModes(t *testing.T) {
	if Apply(ModeNever) {
		t.Error("Apply(never) reported color enabled")
	}
	if !Apply(ModeAlways) {
		t.Error("Apply(always) reported color disabled")
	}
	ForceDisable()
}

func TestApplyNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if Apply(ModeAuto) {
		t.Error("Apply(auto) enabled color with NO_COLOR set")
	}
}

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text unchanged", "hello world", "hello world"},
		{"strips color codes", "\x1b[31mred text\x1b[0m", "red text"},
		{"strips multiple sequences", "\x1b[1;31;40mstyle\x1b[0m gap \x1b[32mgreen\x1b[0m", "style gap green"},
		{"clear screen stripped", "\x1b[H\x1b[2Jtext", "text"},
		{"preserves gauge blocks", "CPU \x1b[32m███\x1b[0m░░ 45%", "CPU ███░░ 45%"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripANSI(tt.input)
			if got != tt.want {
				t.Errorf("StripANSI(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if strings.Contains(got, "\x1b") {
				t.Errorf("StripANSI(%q) still contains ESC", tt.input)
			}
		})
	}
}
