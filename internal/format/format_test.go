package format

import (
	"testing"
	"time"
)

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"firefox", 10, "firefox"},
		{"chromium-browser", 10, "chromiu..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, ""},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		if got := TruncateWithEllipsis(tt.in, tt.width); got != tt.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPercentAndMegabytes(t *testing.T) {
	if got := Percent(12.345); got != "12.3%" {
		t.Errorf("Percent = %q", got)
	}
	if got := Megabytes(512); got != "512.0 MB" {
		t.Errorf("Megabytes(512) = %q", got)
	}
	if got := Megabytes(2048); got != "2.0 GB" {
		t.Errorf("Megabytes(2048) = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "0s"},
		{5 * time.Second, "5s"},
		{5*time.Minute + 30*time.Second, "5m 30s"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{76 * time.Hour, "3d 4h"},
		{-5 * time.Second, "5s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatAgo(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{3 * time.Second, "just now"},
		{45 * time.Second, "45s ago"},
		{3 * time.Minute, "3m ago"},
		{2 * time.Hour, "2h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := formatAgo(tt.d); got != tt.want {
			t.Errorf("formatAgo(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
	if got := FormatTimeSince(time.Time{}); got != "never" {
		t.Errorf("FormatTimeSince(zero) = %q", got)
	}
}
