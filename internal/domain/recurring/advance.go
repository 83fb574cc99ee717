// internal/domain/recurring/advance.go
package recurring

import (
	"time"

	"family_billing_bot/internal/domain/billing"
)

// NextOccurrence computes the occurrence that follows from, per the
// pattern's frequency.
//
// Weekly adds seven days. Monthly advances one calendar month; when the
// pattern is fixed with an anchor DayOfMonth, the day snaps back to
// min(anchor, days in target month), healing a previously clamped or
// user-overridden date back onto the stable schedule (Feb 28 with anchor 31
// advances to Mar 31, not Mar 28). Yearly adds one year, clamping Feb 29 to
// Feb 28 off leap years.
func NextOccurrence(p *Pattern, from time.Time) time.Time {
	from = billing.DateOnly(from)

	switch p.Frequency {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		next := billing.AddMonthsClamped(from, 1)
		if p.DuePattern == DuePatternFixed && p.DayOfMonth > 0 {
			day := p.DayOfMonth
			if max := billing.DaysInMonth(next.Year(), next.Month()); day > max {
				day = max
			}
			next = time.Date(next.Year(), next.Month(), day, 0, 0, 0, 0, next.Location())
		}
		return next
	case FrequencyYearly:
		day := from.Day()
		month := from.Month()
		year := from.Year() + 1
		if max := billing.DaysInMonth(year, month); day > max {
			day = max
		}
		return time.Date(year, month, day, 0, 0, 0, 0, from.Location())
	}
	return from
}
