package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func charge(day time.Time, amount float64) Charge {
	return Charge{
		Instrument: "Visa Gold",
		Currency:   "USD",
		Amount:     decimal.NewFromFloat(amount),
		PostedAt:   day,
		Expense:    true,
	}
}

func TestCardStatus_ActiveCycleBeforeClosing(t *testing.T) {
	cfg := fixedCard(25, 10)
	today := date(2025, time.March, 10)

	st := CardStatus(cfg, nil, "USD", today)

	// Feb 25 2025 is a Tuesday, Mar 25 a Tuesday.
	if want := date(2025, time.March, 25); !st.ClosingDate.Equal(want) {
		t.Errorf("ClosingDate = %s, want %s", st.ClosingDate, want)
	}
	if want := date(2025, time.February, 26); !st.CycleStart.Equal(want) {
		t.Errorf("CycleStart = %s, want %s", st.CycleStart, want)
	}
	if st.DaysToClose != 15 {
		t.Errorf("DaysToClose = %d, want 15", st.DaysToClose)
	}
}

func TestCardStatus_RolloverPastClosing(t *testing.T) {
	// Spec scenario: closing day 25, gap 10, today Jan 26 2025 (one day past
	// closing). Active cycle closes Feb 25, starts Jan 26.
	cfg := fixedCard(25, 10)
	today := date(2025, time.January, 26)

	st := CardStatus(cfg, nil, "USD", today)

	// Jan 25 2025 is a Saturday, so January's nominal closing shifted to Fri
	// Jan 24; Feb 25 is a Tuesday.
	if want := date(2025, time.February, 25); !st.ClosingDate.Equal(want) {
		t.Errorf("ClosingDate = %s, want %s", st.ClosingDate, want)
	}
	if want := date(2025, time.March, 7); !st.DueDate.Equal(want) {
		t.Errorf("DueDate = %s, want closing+10 = %s", st.DueDate, want)
	}
	if want := date(2025, time.January, 25); !st.CycleStart.Equal(want) {
		t.Errorf("CycleStart = %s, want %s", st.CycleStart, want)
	}
	if st.DaysToClose != 30 {
		t.Errorf("DaysToClose = %d, want 30", st.DaysToClose)
	}
}

func TestCardStatus_LocalClockBehindUTC(t *testing.T) {
	// The closing date of a last-business-day card is built in UTC while a
	// production "today" carries the local zone. Day comparisons must be by
	// calendar day, or midnight behind UTC counts as "past" the closing.
	cfg := &CardConfig{
		Instrument:    "Amex Green",
		ClosingRule:   ClosingRuleLastBusinessDay,
		PaymentDueGap: 21,
	}
	local := time.FixedZone("UTC-5", -5*3600)

	// Aug 29 2025 is the last business day of August (the 31st is a Sunday).
	// On the closing day itself the cycle must still be August's.
	st := CardStatus(cfg, nil, "USD", time.Date(2025, time.August, 29, 0, 0, 0, 0, local))
	if want := date(2025, time.August, 29); !SameDay(st.ClosingDate, want) {
		t.Errorf("ClosingDate on the closing day = %s, want %s", st.ClosingDate, want)
	}
	if st.DaysToClose != 0 {
		t.Errorf("DaysToClose on the closing day = %d, want 0", st.DaysToClose)
	}

	st = CardStatus(cfg, nil, "USD", time.Date(2025, time.August, 19, 0, 0, 0, 0, local))
	if st.DaysToClose != 10 {
		t.Errorf("DaysToClose = %d, want 10", st.DaysToClose)
	}
}

func TestCardStatus_SpendAggregation(t *testing.T) {
	cfg := fixedCard(25, 10)
	today := date(2025, time.March, 10)
	// Active cycle: Feb 26 .. Mar 25.

	charges := []Charge{
		charge(date(2025, time.February, 26), 100),                // first day, counted
		charge(date(2025, time.March, 25), 50),                    // closing day, counted
		charge(date(2025, time.March, 5), 25.50),                  // mid-cycle, counted
		charge(date(2025, time.February, 25), 999),                // day before cycle start
		charge(date(2025, time.March, 26), 999),                   // after closing
		{Instrument: "Visa Gold", Currency: "EUR", Amount: decimal.NewFromInt(999), PostedAt: date(2025, time.March, 5), Expense: true},  // wrong currency
		{Instrument: "Amex Green", Currency: "USD", Amount: decimal.NewFromInt(999), PostedAt: date(2025, time.March, 5), Expense: true}, // wrong card
		{Instrument: "Visa Gold", Currency: "USD", Amount: decimal.NewFromInt(999), PostedAt: date(2025, time.March, 5), Expense: false}, // income
	}

	st := CardStatus(cfg, charges, "USD", today)

	if want := decimal.NewFromFloat(175.50); !st.CurrentSpend.Equal(want) {
		t.Errorf("CurrentSpend = %s, want %s", st.CurrentSpend, want)
	}
}

func TestCardStatus_OverrideMonthRollover(t *testing.T) {
	cfg := fixedCard(25, 10)
	cfg.Overrides = []DateOverride{{
		Year:        2025,
		Month:       time.March,
		ClosingDate: date(2025, time.March, 20),
		DueDate:     date(2025, time.March, 30),
	}}

	// Today is past the overridden closing: the active cycle is April's,
	// derived from the rule again.
	st := CardStatus(cfg, nil, "USD", date(2025, time.March, 21))

	if want := date(2025, time.April, 25); !st.ClosingDate.Equal(want) {
		t.Errorf("ClosingDate = %s, want %s", st.ClosingDate, want)
	}
	if want := date(2025, time.March, 21); !st.CycleStart.Equal(want) {
		t.Errorf("CycleStart = %s, want override closing + 1 = %s", st.CycleStart, want)
	}
}
