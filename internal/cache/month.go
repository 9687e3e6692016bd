package cache

import "time"

// MonthKey formats t's UTC month as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// SameMonth reports whether a and b fall in the same UTC calendar month.
func SameMonth(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// NextMonthStart returns the first instant of the UTC month after t.
func NextMonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// UntilMonthEnd returns the TTL that expires at the start of the next UTC
// month, never less than an hour.
func UntilMonthEnd(now time.Time) time.Duration {
	return max(NextMonthStart(now).Sub(now), time.Hour)
}
