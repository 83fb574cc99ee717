// internal/app/recurring_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"family_billing_bot/internal/domain/billing"
	"family_billing_bot/internal/domain/ledger"
	"family_billing_bot/internal/domain/recurring"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrStaleResolution guards against resolving the same occurrence twice: the
// caller passes the due date it is confirming, and a mismatch with the
// pattern's current NextDueDate means someone already resolved it.
var ErrStaleResolution = errors.New("occurrence already resolved")

// Resolution is the outcome of resolving one recurring occurrence.
type Resolution struct {
	Pattern     *recurring.Pattern
	Transaction *ledger.Transaction // non-nil only when the occurrence was paid
}

// RecurringService resolves recurring occurrences: marking one paid emits an
// immutable ledger transaction and advances the pattern's due date; skipping
// advances the date without a transaction. NextDueDate is the only pattern
// field either path mutates, and it only ever moves forward.
type RecurringService struct {
	patternRepo recurring.Repository
	ledgerRepo  ledger.Repository
	logger      *logrus.Entry
}

func NewRecurringService(pr recurring.Repository, lr ledger.Repository, logger *logrus.Entry) *RecurringService {
	return &RecurringService{patternRepo: pr, ledgerRepo: lr, logger: logger}
}

// Resolve advances the pattern identified by id past the occurrence at
// confirmedDue. markPaid additionally records the payment in the ledger,
// timestamped now.
func (s *RecurringService) Resolve(ctx context.Context, id int64, confirmedDue time.Time, markPaid bool, now time.Time) (*Resolution, error) {
	p, err := s.patternRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern %d: %w", id, err)
	}

	if !billing.SameDay(p.NextDueDate, confirmedDue) {
		return nil, ErrStaleResolution
	}
	due := billing.DateOnly(p.NextDueDate)

	res := &Resolution{Pattern: p}

	if markPaid {
		tx := &ledger.Transaction{
			ID:         uuid.NewString(),
			MemberID:   p.MemberID,
			Flow:       string(p.Flow),
			Amount:     p.Amount,
			Currency:   p.Currency,
			Title:      p.Title,
			Category:   p.Category,
			Instrument: p.Instrument,
			Notes:      "Paid from recurring",
			PostedAt:   now,
		}
		if err := s.ledgerRepo.Create(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to record payment for pattern %d: %w", id, err)
		}
		res.Transaction = tx
	}

	next := recurring.NextOccurrence(p, due)
	if err := s.patternRepo.AdvanceDueDate(ctx, p.ID, next); err != nil {
		return nil, fmt.Errorf("failed to advance pattern %d: %w", id, err)
	}
	p.NextDueDate = next

	s.logger.WithFields(logrus.Fields{
		"pattern_id": p.ID,
		"paid":       markPaid,
		"next_due":   next.Format("2006-01-02"),
	}).Info("Recurring occurrence resolved")
	return res, nil
}

// Upcoming lists patterns due on or before the given horizon.
func (s *RecurringService) Upcoming(ctx context.Context, horizon time.Time) ([]*recurring.Pattern, error) {
	patterns, err := s.patternRepo.ListDueOnOrBefore(ctx, horizon)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming patterns: %w", err)
	}
	return patterns, nil
}
