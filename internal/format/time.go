// Package format provides shared string and time formatting utilities.
package format

import (
	"fmt"
	"time"
)

type unit struct {
	size   time.Duration
	suffix string
}

var units = []unit{
	{24 * time.Hour, "d"},
	{time.Hour, "h"},
	{time.Minute, "m"},
	{time.Second, "s"},
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// FormatTimeSince renders the time elapsed since t as "45s ago", "3m ago" and
// so on, "just now" under ten seconds and "never" for the zero time.
func FormatTimeSince(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return formatAgo(time.Since(t))
}

// formatAgo uses the largest whole unit of d.
func formatAgo(d time.Duration) string {
	d = abs(d)
	if d < 10*time.Second {
		return "just now"
	}
	for _, u := range units {
		if d >= u.size {
			return fmt.Sprintf("%d%s ago", d/u.size, u.suffix)
		}
	}
	return "just now"
}

// FormatDuration renders d with its two largest units: "5m 30s", "2h 15m",
// "3d 4h". Under a minute only seconds are shown.
func FormatDuration(d time.Duration) string {
	d = abs(d)
	for i, u := range units[:len(units)-1] {
		if d >= u.size {
			next := units[i+1]
			return fmt.Sprintf("%d%s %d%s", d/u.size, u.suffix, (d%u.size)/next.size, next.suffix)
		}
	}
	return fmt.Sprintf("%ds", d/time.Second)
}
