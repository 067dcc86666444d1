package wallet

import (
	"math"
	"time"
)

// =============================================================================
// CALENDAR HELPERS - Local-day arithmetic
// =============================================================================
// Every day-scoped rule in this domain (daily usage, streaks, "today"
// stats) is a local calendar rule. Days are keyed as YYYY-MM-DD strings in
// the device's local zone.

const dayKeyLayout = "2006-01-02"

// DayKey returns the local calendar-day key for t.
func DayKey(t time.Time) string {
	return t.Local().Format(dayKeyLayout)
}

// ParseDayKey parses a YYYY-MM-DD key into a local midnight time.
func ParseDayKey(key string) (time.Time, error) {
	return time.ParseInLocation(dayKeyLayout, key, time.Local)
}

// startOfDay truncates t to local midnight.
func startOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// sameDay reports whether two instants fall on the same local calendar day.
func sameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// daysBetween returns the number of whole calendar days from a to b
// (positive when b is later). Rounding absorbs DST-shortened/-lengthened
// days between the two local midnights.
func daysBetween(a, b time.Time) int {
	sa, sb := startOfDay(a), startOfDay(b)
	return int(math.Round(sb.Sub(sa).Hours() / 24))
}

// startOfWeek returns local midnight of the Monday of t's calendar week.
// Weeks are Monday-aligned throughout this package.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}
