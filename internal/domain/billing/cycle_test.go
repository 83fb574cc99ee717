package billing

import (
	"testing"
	"time"
)

func fixedCard(closingDay, gap int) *CardConfig {
	return &CardConfig{
		Instrument:    "Visa Gold",
		ClosingRule:   ClosingRuleFixed,
		ClosingDay:    closingDay,
		PaymentDueGap: gap,
	}
}

func TestCalculateCycle_FixedDayClampedToShortMonth(t *testing.T) {
	cfg := fixedCard(31, 10)

	cycle := CalculateCycle(cfg, date(2025, time.April, 10))

	// April has 30 days; the 30th is a Wednesday, no weekend shift.
	if want := date(2025, time.April, 30); !cycle.ClosingDate.Equal(want) {
		t.Errorf("ClosingDate = %s, want %s", cycle.ClosingDate, want)
	}
	if want := date(2025, time.May, 10); !cycle.DueDate.Equal(want) {
		t.Errorf("DueDate = %s, want %s", cycle.DueDate, want)
	}
}

func TestCalculateCycle_WeekendClosingShiftsToFriday(t *testing.T) {
	tests := []struct {
		name       string
		closingDay int
		ref        time.Time
		want       time.Time
	}{
		{"saturday closing", 15, date(2025, time.March, 1), date(2025, time.March, 14)},
		{"sunday closing", 16, date(2025, time.March, 1), date(2025, time.March, 14)},
		{"weekday closing untouched", 14, date(2025, time.March, 1), date(2025, time.March, 14)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cycle := CalculateCycle(fixedCard(tc.closingDay, 10), tc.ref)
			if !cycle.ClosingDate.Equal(tc.want) {
				t.Errorf("ClosingDate = %s, want %s", cycle.ClosingDate, tc.want)
			}
		})
	}
}

func TestCalculateCycle_DueDateNotBusinessDayAdjusted(t *testing.T) {
	// Closing Fri Mar 14 + 1 day gap lands the due date on Saturday; the gap
	// is plain calendar days and must stay there.
	cycle := CalculateCycle(fixedCard(14, 1), date(2025, time.March, 1))
	if want := date(2025, time.March, 15); !cycle.DueDate.Equal(want) {
		t.Errorf("DueDate = %s, want %s", cycle.DueDate, want)
	}
}

func TestCalculateCycle_ZeroGap(t *testing.T) {
	cycle := CalculateCycle(fixedCard(20, 0), date(2025, time.March, 1))
	if !cycle.DueDate.Equal(cycle.ClosingDate) {
		t.Errorf("DueDate = %s, want equal to ClosingDate %s", cycle.DueDate, cycle.ClosingDate)
	}
}

func TestCalculateCycle_LastBusinessDayRule(t *testing.T) {
	cfg := &CardConfig{
		Instrument:    "Amex Green",
		ClosingRule:   ClosingRuleLastBusinessDay,
		PaymentDueGap: 21,
	}

	// Aug 31 2025 is a Sunday; last business day is Fri Aug 29.
	cycle := CalculateCycle(cfg, date(2025, time.August, 3))
	if want := date(2025, time.August, 29); !cycle.ClosingDate.Equal(want) {
		t.Errorf("ClosingDate = %s, want %s", cycle.ClosingDate, want)
	}
	if want := date(2025, time.September, 19); !cycle.DueDate.Equal(want) {
		t.Errorf("DueDate = %s, want %s", cycle.DueDate, want)
	}
}

func TestCalculateCycle_OverridePrecedence(t *testing.T) {
	cfg := fixedCard(25, 10)
	cfg.Overrides = []DateOverride{{
		Year:  2025,
		Month: time.March,
		// Saturday on purpose: override dates are taken verbatim, with no
		// business-day adjustment.
		ClosingDate: date(2025, time.March, 22),
		DueDate:     date(2025, time.April, 2),
	}}

	for _, ref := range []time.Time{
		date(2025, time.March, 1),
		date(2025, time.March, 25),
		date(2025, time.March, 31),
	} {
		cycle := CalculateCycle(cfg, ref)
		if want := date(2025, time.March, 22); !cycle.ClosingDate.Equal(want) {
			t.Errorf("ref %s: ClosingDate = %s, want override %s", ref, cycle.ClosingDate, want)
		}
		if want := date(2025, time.April, 2); !cycle.DueDate.Equal(want) {
			t.Errorf("ref %s: DueDate = %s, want override %s", ref, cycle.DueDate, want)
		}
	}

	// The neighboring month falls back to the rule.
	cycle := CalculateCycle(cfg, date(2025, time.April, 1))
	if want := date(2025, time.April, 25); !cycle.ClosingDate.Equal(want) {
		t.Errorf("April ClosingDate = %s, want rule-derived %s", cycle.ClosingDate, want)
	}
}

func TestCalculateCycle_ClosingDayBelowRangeClamped(t *testing.T) {
	cycle := CalculateCycle(fixedCard(0, 5), date(2025, time.July, 10))
	// Jul 1 2025 is a Tuesday.
	if want := date(2025, time.July, 1); !cycle.ClosingDate.Equal(want) {
		t.Errorf("ClosingDate = %s, want %s", cycle.ClosingDate, want)
	}
}

func TestInstallmentDates(t *testing.T) {
	got := InstallmentDates(date(2025, time.January, 31), 4)
	want := []time.Time{
		date(2025, time.January, 31),
		date(2025, time.February, 28),
		date(2025, time.March, 31),
		date(2025, time.April, 30),
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("dates[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if InstallmentDates(date(2025, time.January, 31), 0) != nil {
		t.Error("expected nil for zero installments")
	}
}
