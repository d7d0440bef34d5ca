package domain

import "time"

// The compliance engine works in whole civil days: due dates, event dates and
// look-back windows never carry a time of day. Dates are normalized to UTC
// midnight so equality and Before/After comparisons behave as day comparisons.

// DateOf truncates t to its UTC civil date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the civil date n days after t.
func AddDays(t time.Time, n int) time.Time {
	return DateOf(t).AddDate(0, 0, n)
}

// DaysBetween returns the signed number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)) / (24 * time.Hour))
}

// SameDay reports whether a and b fall on the same UTC civil date.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
