package format

import "fmt"

// TruncateWithEllipsis truncates s to maxWidth runes, appending "..." when it
// was cut. Below a width of 4 the string is hard-truncated.
func TruncateWithEllipsis(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= maxWidth {
		return s
	}

	if maxWidth < 4 {
		return string(runes[:maxWidth])
	}

	return string(runes[:maxWidth-3]) + "..."
}

// Percent renders a utilisation value as "12.3%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Megabytes renders a size in MB, switching to GB at 1024 MB.
func Megabytes(mb float64) string {
	if mb >= 1024 {
		return fmt.Sprintf("%.1f GB", mb/1024)
	}
	return fmt.Sprintf("%.1f MB", mb)
}
