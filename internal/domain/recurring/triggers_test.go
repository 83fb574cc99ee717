package recurring

import (
	"testing"
	"time"

	"family_billing_bot/internal/domain/billing"
)

func TestEffectiveTriggers_Defaults(t *testing.T) {
	p := &Pattern{}
	trigs := p.EffectiveTriggers()
	if len(trigs) != 2 {
		t.Fatalf("got %d default triggers, want 2", len(trigs))
	}
	if trigs[0].Days != 1 || trigs[0].Direction != DirectionBefore || trigs[0].Target != TargetDueDate {
		t.Errorf("first default = %+v, want 1 day before due date", trigs[0])
	}
	if trigs[1].Days != 0 || trigs[1].Direction != DirectionOnDay || trigs[1].Target != TargetDueDate {
		t.Errorf("second default = %+v, want on due day", trigs[1])
	}
}

func TestEffectiveTriggers_ConfiguredWinOverDefaults(t *testing.T) {
	p := &Pattern{Triggers: []NotificationTrigger{
		{ID: "t1", Days: 3, Direction: DirectionBefore, Target: TargetClosingDate},
	}}
	trigs := p.EffectiveTriggers()
	if len(trigs) != 1 || trigs[0].ID != "t1" {
		t.Errorf("got %+v, want only the configured trigger", trigs)
	}
}

func TestAnchorDate_DueDate(t *testing.T) {
	p := &Pattern{NextDueDate: date(2025, time.April, 7)}
	anchor, ok := AnchorDate(p, NotificationTrigger{Target: TargetDueDate}, nil)
	if !ok {
		t.Fatal("due_date anchor should always resolve")
	}
	if want := date(2025, time.April, 7); !anchor.Equal(want) {
		t.Errorf("anchor = %s, want %s", anchor, want)
	}
}

func TestAnchorDate_ClosingDateViaLinkedCard(t *testing.T) {
	card := &billing.CardConfig{
		Instrument:    "Visa Gold",
		ClosingRule:   billing.ClosingRuleFixed,
		ClosingDay:    25,
		PaymentDueGap: 10,
	}
	// Due Mar 7 2025, gap 10: approximate closing Feb 25, and the calculator
	// confirms Feb 25 (a Tuesday) exactly.
	p := &Pattern{NextDueDate: date(2025, time.March, 7), Instrument: "Visa Gold"}

	anchor, ok := AnchorDate(p, NotificationTrigger{Target: TargetClosingDate}, card)
	if !ok {
		t.Fatal("closing_date anchor should resolve with a linked card")
	}
	if want := date(2025, time.February, 25); !anchor.Equal(want) {
		t.Errorf("anchor = %s, want %s", anchor, want)
	}
}

func TestAnchorDate_ClosingDateBusinessDayAdjusted(t *testing.T) {
	card := &billing.CardConfig{
		Instrument:    "Visa Gold",
		ClosingRule:   billing.ClosingRuleFixed,
		ClosingDay:    15, // Sat Mar 15 2025, adjusted to Fri Mar 14
		PaymentDueGap: 10,
	}
	p := &Pattern{NextDueDate: date(2025, time.March, 25), Instrument: "Visa Gold"}

	anchor, ok := AnchorDate(p, NotificationTrigger{Target: TargetClosingDate}, card)
	if !ok {
		t.Fatal("closing_date anchor should resolve with a linked card")
	}
	if want := date(2025, time.March, 14); !anchor.Equal(want) {
		t.Errorf("anchor = %s, want business-day-adjusted %s", anchor, want)
	}
}

func TestAnchorDate_ClosingDateWithoutCardUnresolvable(t *testing.T) {
	p := &Pattern{NextDueDate: date(2025, time.March, 7)}
	if _, ok := AnchorDate(p, NotificationTrigger{Target: TargetClosingDate}, nil); ok {
		t.Error("closing_date anchor without a linked card must not resolve")
	}
}

func TestTriggerDate(t *testing.T) {
	anchor := date(2025, time.April, 10)
	tests := []struct {
		name string
		trig NotificationTrigger
		want time.Time
	}{
		{"before subtracts", NotificationTrigger{Days: 3, Direction: DirectionBefore}, date(2025, time.April, 7)},
		{"after adds", NotificationTrigger{Days: 2, Direction: DirectionAfter}, date(2025, time.April, 12)},
		{"on_day unchanged", NotificationTrigger{Days: 5, Direction: DirectionOnDay}, date(2025, time.April, 10)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TriggerDate(tc.trig, anchor); !got.Equal(tc.want) {
				t.Errorf("TriggerDate = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestFiredSet(t *testing.T) {
	fired := make(FiredSet)
	k := NewFireKey(42, "t1", date(2025, time.April, 10))

	if fired.Contains(k) {
		t.Error("empty set must not contain the key")
	}
	fired.Add(k)
	if !fired.Contains(k) {
		t.Error("set must contain the key after Add")
	}

	// Same trigger on another day is a distinct key.
	if fired.Contains(NewFireKey(42, "t1", date(2025, time.April, 11))) {
		t.Error("key must be day-scoped")
	}
}
