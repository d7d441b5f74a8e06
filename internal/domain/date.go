package domain

import "time"

// DayStart truncates t to the start of its calendar day in loc
func DayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayStart(a, loc).Equal(DayStart(b, loc))
}

// BeforeDay reports whether the calendar day of a is strictly before the
// calendar day of b in loc. Expiration and scheduling rules compare whole
// days, never instants.
func BeforeDay(a, b time.Time, loc *time.Location) bool {
	return DayStart(a, loc).Before(DayStart(b, loc))
}

// MonthKey returns the sortable "yyyy-mm" grouping key for t
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
