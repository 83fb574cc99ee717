// internal/app/reminder_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"family_billing_bot/internal/domain/billing"
	"family_billing_bot/internal/domain/delivery"
	"family_billing_bot/internal/domain/ledger"
	"family_billing_bot/internal/domain/member"
	"family_billing_bot/internal/domain/recurring"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Firing is one trigger that matched today: the dedup key plus the composed
// reminders, one per recipient (shared patterns fan out to every active
// member).
type Firing struct {
	Key       recurring.FireKey
	PatternID int64
	Reminders []delivery.Reminder
}

// EvaluationInput is a read-only snapshot of everything trigger evaluation
// needs. Fired is consulted but never written: callers record keys after
// delivery, which keeps EvaluateDue pure and re-runnable.
type EvaluationInput struct {
	Patterns []*recurring.Pattern
	Members  []*member.Member
	History  []*ledger.Transaction
	Cards    map[billing.InstrumentID]*billing.CardConfig
	Today    time.Time

	Fired recurring.FiredSet

	// AfterCloseMaxDays bounds closing_date/after triggers: an offset past
	// this many days is treated as misconfigured and never fires. Zero or
	// negative means no bound.
	AfterCloseMaxDays int
}

// EvaluateDue walks every pattern's effective triggers and returns the
// firings whose trigger date is exactly today and whose key is not yet in the
// fired set. At most one firing per (pattern, trigger, day) results.
//
// Triggers targeting a closing date with no linked card are unresolvable and
// skipped silently: a configuration gap, not a failure.
func EvaluateDue(in EvaluationInput) []Firing {
	today := billing.DateOnly(in.Today)
	charges := ledger.Charges(in.History)

	var firings []Firing
	for _, p := range in.Patterns {
		if p.NextDueDate.IsZero() {
			continue
		}

		var card *billing.CardConfig
		if p.Instrument != "" {
			card = in.Cards[p.Instrument]
		}

		for _, trig := range p.EffectiveTriggers() {
			key := recurring.NewFireKey(p.ID, trig.ID, today)
			if in.Fired.Contains(key) {
				continue
			}
			if trig.Target == recurring.TargetClosingDate && trig.Direction == recurring.DirectionAfter &&
				in.AfterCloseMaxDays > 0 && trig.Days > in.AfterCloseMaxDays {
				continue
			}

			anchor, ok := recurring.AnchorDate(p, trig, card)
			if !ok {
				continue
			}
			if !billing.SameDay(today, recurring.TriggerDate(trig, anchor)) {
				continue
			}

			title, body := composeReminder(p, trig, anchor, card, charges)
			firings = append(firings, Firing{
				Key:       key,
				PatternID: p.ID,
				Reminders: addressReminders(p, in.Members, title, body),
			})
		}
	}
	return firings
}

// composeReminder builds the title/body pair for a matched trigger. The
// wording depends on the target and direction: on-day due, upcoming due,
// overdue, upcoming closing, or just-closed with the cycle total.
func composeReminder(p *recurring.Pattern, trig recurring.NotificationTrigger, anchor time.Time, card *billing.CardConfig, charges []billing.Charge) (title, body string) {
	symbol := currencySymbol(p.Currency)

	if trig.Target == recurring.TargetClosingDate {
		if trig.Direction == recurring.DirectionAfter {
			title = fmt.Sprintf("Card closed: %s", p.Title)
			if trig.Days == 1 {
				body = "Your card closed yesterday."
			} else {
				body = fmt.Sprintf("Your card closed %d days ago.", trig.Days)
			}
			if card != nil {
				// anchor is the exact closing date; sum that cycle.
				start := billing.CycleStartFor(card, anchor)
				total := billing.SpendBetween(card, charges, p.Currency, start, anchor)
				body += fmt.Sprintf(" Cycle total: %s%s.", symbol, formatAmount(total))
			}
			return title, body
		}
		title = fmt.Sprintf("Card closing soon: %s", p.Title)
		body = fmt.Sprintf("Your card closes in %d days.", trig.Days)
		return title, body
	}

	switch trig.Direction {
	case recurring.DirectionOnDay:
		title = fmt.Sprintf("Due today: %s", p.Title)
		body = fmt.Sprintf("Today is the payment deadline. Estimated amount: %s%s.", symbol, formatAmount(p.Amount))
	case recurring.DirectionBefore:
		title = fmt.Sprintf("Due soon: %s", p.Title)
		body = fmt.Sprintf("Due in %d days. Pay on time to avoid interest.", trig.Days)
	default:
		title = fmt.Sprintf("Past due: %s", p.Title)
		body = fmt.Sprintf("Payment was due %d days ago.", trig.Days)
	}
	return title, body
}

// addressReminders resolves the recipients: the owning member when the
// pattern has one, every active member otherwise.
func addressReminders(p *recurring.Pattern, members []*member.Member, title, body string) []delivery.Reminder {
	var out []delivery.Reminder
	for _, m := range members {
		if !m.IsActive {
			continue
		}
		if p.MemberID != 0 && m.ID != p.MemberID {
			continue
		}
		suffix := " Assigned to: " + m.DisplayName() + "."
		if p.MemberID == 0 {
			suffix = " Assigned to: Shared."
		}
		out = append(out, delivery.Reminder{
			RecipientChatID: m.TelegramID,
			Title:           title,
			Body:            body + suffix,
		})
	}
	return out
}

func currencySymbol(code string) string {
	switch code {
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return "$"
	}
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ReminderService runs trigger evaluation over repository snapshots and
// dispatches the resulting reminders. It owns the process-scoped fired set:
// keys are recorded only after a successful send, so a delivery failure is
// retried by the next evaluation run the same day. The set is not persisted;
// a restart may re-fire that day's reminders.
type ReminderService struct {
	patternRepo       recurring.Repository
	ledgerRepo        ledger.Repository
	cardRepo          billing.Repository
	memberRepo        member.Repository
	notifier          delivery.Notifier
	logger            *logrus.Entry
	afterCloseMaxDays int

	fired recurring.FiredSet
}

func NewReminderService(
	pr recurring.Repository,
	lr ledger.Repository,
	cr billing.Repository,
	mr member.Repository,
	n delivery.Notifier,
	logger *logrus.Entry,
	afterCloseMaxDays int,
) *ReminderService {
	return &ReminderService{
		patternRepo:       pr,
		ledgerRepo:        lr,
		cardRepo:          cr,
		memberRepo:        mr,
		notifier:          n,
		logger:            logger,
		afterCloseMaxDays: afterCloseMaxDays,
		fired:             make(recurring.FiredSet),
	}
}

// EvaluateAndNotify loads the current snapshot, evaluates today's triggers
// and sends what fired. Runs are expected to be serialized by the scheduler;
// the service is not safe for concurrent evaluation.
func (s *ReminderService) EvaluateAndNotify(ctx context.Context, today time.Time) error {
	patterns, err := s.patternRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list recurring patterns: %w", err)
	}
	members, err := s.memberRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active members: %w", err)
	}
	history, err := s.ledgerRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}
	cardList, err := s.cardRepo.ListCards(ctx)
	if err != nil {
		return fmt.Errorf("failed to list card configs: %w", err)
	}
	cards := make(map[billing.InstrumentID]*billing.CardConfig, len(cardList))
	for _, c := range cardList {
		cards[c.Instrument] = c
	}

	firings := EvaluateDue(EvaluationInput{
		Patterns:          patterns,
		Members:           members,
		History:           history,
		Cards:             cards,
		Today:             today,
		Fired:             s.fired,
		AfterCloseMaxDays: s.afterCloseMaxDays,
	})
	s.logger.WithFields(logrus.Fields{
		"patterns": len(patterns),
		"firings":  len(firings),
		"day":      billing.DateOnly(today).Format("2006-01-02"),
	}).Info("Reminder evaluation completed")

	for _, f := range firings {
		delivered := 0
		for _, r := range f.Reminders {
			if err := s.notifier.Send(ctx, r); err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"pattern_id": f.PatternID,
					"chat_id":    r.RecipientChatID,
				}).Error("Failed to deliver reminder")
				continue
			}
			delivered++
		}
		if delivered > 0 || len(f.Reminders) == 0 {
			s.fired.Add(f.Key)
		}
	}
	return nil
}
