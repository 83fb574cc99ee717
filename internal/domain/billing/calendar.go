// internal/domain/billing/calendar.go
package billing

import "time"

// AdjustToBusinessDay shifts a date that falls on a weekend back to the
// preceding Friday: Saturday moves back one day, Sunday moves back two.
// Weekdays are returned unchanged. The shift is always backward so a billing
// cycle closes no later than its nominal date.
func AdjustToBusinessDay(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, -2)
	}
	return t
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LastBusinessDayOfMonth returns the last day of the month, shifted back to
// Friday if it lands on a weekend.
func LastBusinessDayOfMonth(year int, month time.Month) time.Time {
	last := time.Date(year, month, DaysInMonth(year, month), 0, 0, 0, 0, time.UTC)
	return AdjustToBusinessDay(last)
}

// AddMonthsClamped adds n months to a date, clamping the day-of-month to the
// target month's length. Jan 31 plus one month yields Feb 28 (or 29), never
// Mar 3. time.AddDate alone overflows short months, so the day is clamped
// before the shift.
func AddMonthsClamped(t time.Time, n int) time.Time {
	// Anchor at day 1 to make the month shift itself safe, then restore the
	// clamped day.
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	shifted := first.AddDate(0, n, 0)
	day := t.Day()
	if max := DaysInMonth(shifted.Year(), shifted.Month()); day > max {
		day = max
	}
	return time.Date(shifted.Year(), shifted.Month(), day, 0, 0, 0, 0, t.Location())
}

// DateOnly truncates a timestamp to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day. Locations
// are ignored: instant comparison would put midnight in New York after
// midnight UTC of the same date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween counts the calendar days from a to b, negative when b is
// earlier. Both ends are normalized to UTC midnight first, so mixed
// locations and DST transitions cannot skew the count.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}

// midMonthRef returns the 15th of t's month. Month arithmetic anchored
// mid-month cannot be distorted by month-length differences.
func midMonthRef(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 15, 0, 0, 0, 0, t.Location())
}
