package subtitle

import (
	"fmt"
	"strings"
)

// SRTTimestamp converts seconds to the SRT time format HH:MM:SS,mmm.
// Milliseconds are truncated, not rounded; a value of 1.9996 formats as
// 00:00:01,999 rather than carrying into the next second.
func SRTTimestamp(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := int(seconds) % 60
	millis := int((seconds - float64(int(seconds))) * 1000)

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// ASSTimestamp converts seconds to the ASS time format H:MM:SS.CC with an
// unpadded hour field and truncated centiseconds.
func ASSTimestamp(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := int(seconds) % 60
	centis := int((seconds - float64(int(seconds))) * 100)

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centis)
}

// ASSColor converts a #RRGGBB hex color to the ASS native &HAABBGGRR form.
// The caller is expected to pass six hex digits after an optional leading #;
// Style.Validate enforces that at the configuration boundary. Shorter input
// yields a mis-formed token rather than an error.
func ASSColor(hex, alpha string) string {
	hex = strings.TrimPrefix(hex, "#")
	r, g, b := clip(hex, 0, 2), clip(hex, 2, 4), clip(hex, 4, 6)
	return fmt.Sprintf("&H%s%s%s%s", alpha, b, g, r)
}

// clip slices s[i:j] with bounds clamped to len(s).
func clip(s string, i, j int) string {
	if i > len(s) {
		i = len(s)
	}
	if j > len(s) {
		j = len(s)
	}
	return s[i:j]
}
