package format

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
	ellipsis       = "..."
)

func parse(iso string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(iso))
	return t, err == nil
}

func datePart(iso string) string {
	before, _, _ := strings.Cut(iso, "T")
	return before
}

// Date formats an ISO timestamp as local "YYYY-MM-DD HH:MM".
func Date(iso string) string {
	t, ok := parse(iso)
	if !ok {
		return datePart(iso)
	}
	return t.Local().Format(dateTimeLayout)
}

// DateOnly formats an ISO timestamp as its UTC calendar date.
func DateOnly(iso string) string {
	t, ok := parse(iso)
	if !ok {
		return datePart(iso)
	}
	return t.UTC().Format(dateLayout)
}

// RelativeTimeFrom formats an ISO timestamp relative to the given time.
func RelativeTimeFrom(iso string, now time.Time) string {
	t, ok := parse(iso)
	if !ok {
		return datePart(iso)
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "min")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 30*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	default:
		return t.UTC().Format(dateLayout)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// Truncate shortens s to at most n runes, ending in "..." when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= len(ellipsis) {
		return string([]rune(s)[:max(n, 0)])
	}
	return string([]rune(s)[:n-len(ellipsis)]) + ellipsis
}
