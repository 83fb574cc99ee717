// internal/domain/billing/cycle.go
package billing

import "time"

// Cycle is the derived closing/due pair for one statement period. It is a
// projection computed on demand from CardConfig plus a reference date, never
// persisted: rules and overrides can change, and recomputing keeps the cycle
// consistent with the latest configuration without migration.
type Cycle struct {
	ClosingDate time.Time
	DueDate     time.Time
}

// CalculateCycle computes the closing and due dates of the cycle whose
// nominal closing falls in ref's month.
//
// An override for (ref.Year, ref.Month) wins unconditionally and its dates
// are returned verbatim, with no business-day adjustment. Otherwise the
// card's rule applies: last_business_day takes the month's last business
// day; fixed clamps the configured day to the month's length and shifts
// weekend landings back to Friday. The due date is closing plus the payment
// gap in plain calendar days, deliberately unadjusted.
func CalculateCycle(cfg *CardConfig, ref time.Time) Cycle {
	year, month := ref.Year(), ref.Month()

	if o, ok := cfg.OverrideFor(year, month); ok {
		return Cycle{
			ClosingDate: DateOnly(o.ClosingDate),
			DueDate:     DateOnly(o.DueDate),
		}
	}

	var closing time.Time
	if cfg.ClosingRule == ClosingRuleLastBusinessDay {
		closing = LastBusinessDayOfMonth(year, month)
	} else {
		day := cfg.ClosingDay
		if day < 1 {
			day = 1
		}
		if max := DaysInMonth(year, month); day > max {
			day = max
		}
		closing = AdjustToBusinessDay(time.Date(year, month, day, 0, 0, 0, 0, ref.Location()))
	}

	return Cycle{
		ClosingDate: closing,
		DueDate:     closing.AddDate(0, 0, cfg.PaymentDueGap),
	}
}

// InstallmentDates projects the posting dates of an n-part installment plan
// starting at first. Each part lands one month after the previous, with the
// day clamped to short months so a plan opened on the 31st never drifts.
func InstallmentDates(first time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	dates := make([]time.Time, n)
	base := DateOnly(first)
	for i := range dates {
		dates[i] = AddMonthsClamped(base, i)
	}
	return dates
}
