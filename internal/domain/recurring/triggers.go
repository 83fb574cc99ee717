// internal/domain/recurring/triggers.go
package recurring

import (
	"fmt"
	"time"

	"family_billing_bot/internal/domain/billing"
)

// FireKey identifies one trigger evaluation on one calendar day. Keys are
// recorded after delivery so the same (pattern, trigger) fires at most once
// per day within a process.
type FireKey string

// NewFireKey builds the dedup key for a trigger firing on day.
func NewFireKey(patternID int64, triggerID string, day time.Time) FireKey {
	return FireKey(fmt.Sprintf("%d|%s|%s", patternID, triggerID, day.Format("2006-01-02")))
}

// FiredSet is the session-scoped record of delivered trigger firings. It is
// threaded through evaluation explicitly: callers own it, decide its
// lifetime, and must serialize evaluations that share one.
type FiredSet map[FireKey]struct{}

func (s FiredSet) Contains(k FireKey) bool { _, ok := s[k]; return ok }
func (s FiredSet) Add(k FireKey)           { s[k] = struct{}{} }

// AnchorDate resolves the date a trigger is measured against.
//
// due_date targets use the pattern's next due date directly. closing_date
// targets need the linked card: the closing is approximated as due minus the
// card's payment gap, then the cycle calculator is re-run at that reference
// to get the exact business-day-adjusted closing. With no linked card the
// trigger is unresolvable and ok is false.
func AnchorDate(p *Pattern, trig NotificationTrigger, card *billing.CardConfig) (anchor time.Time, ok bool) {
	switch trig.Target {
	case TargetDueDate:
		return billing.DateOnly(p.NextDueDate), true
	case TargetClosingDate:
		if card == nil {
			return time.Time{}, false
		}
		approx := billing.DateOnly(p.NextDueDate).AddDate(0, 0, -card.PaymentDueGap)
		cycle := billing.CalculateCycle(card, approx)
		return billing.DateOnly(cycle.ClosingDate), true
	}
	return time.Time{}, false
}

// TriggerDate offsets the anchor per the trigger's direction: before
// subtracts, after adds, on_day leaves the anchor unchanged.
func TriggerDate(trig NotificationTrigger, anchor time.Time) time.Time {
	switch trig.Direction {
	case DirectionBefore:
		return anchor.AddDate(0, 0, -trig.Days)
	case DirectionAfter:
		return anchor.AddDate(0, 0, trig.Days)
	}
	return anchor
}
