// internal/domain/recurring/pattern.go
package recurring

import (
	"time"

	"family_billing_bot/internal/domain/billing"

	"github.com/shopspring/decimal"
)

// Frequency is how often a recurring obligation repeats.
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// DuePattern selects how a monthly pattern's due day is derived.
type DuePattern string

const (
	DuePatternFixed       DuePattern = "fixed"
	DuePatternRelative    DuePattern = "relative"
	DuePatternLastWorkday DuePattern = "last_workday"
)

// FlowType marks a pattern (and the transactions it emits) as money in or out.
type FlowType string

const (
	FlowIncome  FlowType = "income"
	FlowExpense FlowType = "expense"
)

// TriggerDirection places a notification trigger relative to its anchor date.
type TriggerDirection string

const (
	DirectionBefore TriggerDirection = "before"
	DirectionAfter  TriggerDirection = "after"
	DirectionOnDay  TriggerDirection = "on_day"
)

// TriggerTarget selects which date a trigger anchors on.
type TriggerTarget string

const (
	TargetDueDate     TriggerTarget = "due_date"
	TargetClosingDate TriggerTarget = "closing_date"
)

// NotificationTrigger is one reminder rule: fire Days days before/after (or
// on) the pattern's due date or the linked card's closing date. Triggers are
// configuration, immutable at evaluation time.
type NotificationTrigger struct {
	ID        string // UUID
	Days      int
	Direction TriggerDirection
	Target    TriggerTarget
}

// Pattern is a template for a repeating income or expense obligation.
//
// NextDueDate is the authoritative mutable state: it always denotes the next
// not-yet-resolved occurrence, advances exactly once per resolution (paid or
// skipped) and never moves backward.
type Pattern struct {
	ID         int64
	MemberID   int64 // owning family member, 0 when shared
	Flow       FlowType
	Amount     decimal.Decimal
	Currency   string
	Title      string
	Category   string
	Instrument billing.InstrumentID // linked card, empty when none

	Frequency   Frequency
	NextDueDate time.Time
	DuePattern  DuePattern
	DayOfMonth  int // anchor day for monthly fixed schedules, 0 when unset

	Triggers  []NotificationTrigger
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveTriggers returns the pattern's configured triggers, or the two
// implicit defaults when none are configured: one day before the due date and
// on the due day itself.
func (p *Pattern) EffectiveTriggers() []NotificationTrigger {
	if len(p.Triggers) > 0 {
		return p.Triggers
	}
	return []NotificationTrigger{
		{ID: "default-1-before", Days: 1, Direction: DirectionBefore, Target: TargetDueDate},
		{ID: "default-on-day", Days: 0, Direction: DirectionOnDay, Target: TargetDueDate},
	}
}
