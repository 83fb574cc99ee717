// internal/domain/billing/status.go
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Charge is the slice of a ledger transaction the aggregator needs. The
// ledger package owns the full record; callers map into Charge at the
// boundary so billing stays free of ledger imports.
type Charge struct {
	Instrument InstrumentID
	Currency   string
	Amount     decimal.Decimal
	PostedAt   time.Time
	Expense    bool
}

// Status describes the currently active cycle of one card: its boundaries,
// the spend accumulated so far and the days left until it closes.
type Status struct {
	CycleStart   time.Time
	ClosingDate  time.Time
	DueDate      time.Time
	CurrentSpend decimal.Decimal
	DaysToClose  int
}

// CardStatus computes the active cycle of cfg as of today and aggregates the
// matching charges into a current-spend figure.
//
// The nominal cycle for today's month may already have closed (today past its
// closing date); in that case the active cycle is next month's, computed from
// a mid-month reference one month forward. The cycle start is the previous
// closing date plus one day, the previous closing again found via a mid-month
// anchor to avoid month-length distortion.
func CardStatus(cfg *CardConfig, charges []Charge, currency string, today time.Time) Status {
	today = DateOnly(today)

	cycle := CalculateCycle(cfg, today)
	if DaysBetween(cycle.ClosingDate, today) > 0 {
		cycle = CalculateCycle(cfg, AddMonthsClamped(midMonthRef(today), 1))
	}

	cycleStart := CycleStartFor(cfg, cycle.ClosingDate)

	return Status{
		CycleStart:   cycleStart,
		ClosingDate:  cycle.ClosingDate,
		DueDate:      cycle.DueDate,
		CurrentSpend: SpendBetween(cfg, charges, currency, cycleStart, cycle.ClosingDate),
		DaysToClose:  DaysBetween(today, cycle.ClosingDate),
	}
}

// CycleStartFor finds the first day of the cycle that closes on closing: the
// previous cycle's closing date plus one day. The previous cycle is computed
// from a mid-month reference one month back.
func CycleStartFor(cfg *CardConfig, closing time.Time) time.Time {
	prev := CalculateCycle(cfg, AddMonthsClamped(midMonthRef(closing), -1))
	return DateOnly(prev.ClosingDate.AddDate(0, 0, 1))
}

// SpendBetween sums the expense charges on cfg's instrument in the given
// currency posted within [start, end] inclusive.
func SpendBetween(cfg *CardConfig, charges []Charge, currency string, start, end time.Time) decimal.Decimal {
	sum := decimal.Zero
	for _, ch := range charges {
		if !ch.Expense || ch.Currency != currency || ch.Instrument != cfg.Instrument {
			continue
		}
		if DaysBetween(ch.PostedAt, start) > 0 || DaysBetween(end, ch.PostedAt) > 0 {
			continue
		}
		sum = sum.Add(ch.Amount)
	}
	return sum
}
