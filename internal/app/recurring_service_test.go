package app

import (
	"context"
	"testing"
	"time"

	"family_billing_bot/internal/domain/recurring"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func setupRecurringServiceTest(patterns ...*recurring.Pattern) (*RecurringService, *memPatternRepo, *memLedgerRepo) {
	patternRepo := newMemPatternRepo(patterns...)
	ledgerRepo := &memLedgerRepo{}
	svc := NewRecurringService(patternRepo, ledgerRepo, logrus.New().WithField("test", true))
	return svc, patternRepo, ledgerRepo
}

func TestResolve_MarkPaidEmitsTransactionAndAdvances(t *testing.T) {
	p := rentPattern() // monthly fixed, anchor 5, due 2025-04-05
	svc, patternRepo, ledgerRepo := setupRecurringServiceTest(p)

	now := time.Date(2025, time.April, 5, 14, 30, 0, 0, time.UTC)
	res, err := svc.Resolve(context.Background(), p.ID, date(2025, time.April, 5), true, now)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if res.Transaction == nil {
		t.Fatal("marking paid must emit a transaction")
	}
	tx := res.Transaction
	if tx.ID == "" {
		t.Error("transaction must carry a generated ID")
	}
	if !tx.Amount.Equal(decimal.NewFromInt(1200)) || tx.Currency != "USD" {
		t.Errorf("transaction amount = %s %s, want 1200 USD", tx.Amount, tx.Currency)
	}
	if tx.Notes != "Paid from recurring" {
		t.Errorf("transaction notes = %q", tx.Notes)
	}
	if !tx.PostedAt.Equal(now) {
		t.Errorf("PostedAt = %s, want %s", tx.PostedAt, now)
	}
	if len(ledgerRepo.txs) != 1 {
		t.Fatalf("ledger holds %d transactions, want 1", len(ledgerRepo.txs))
	}

	if want := date(2025, time.May, 5); !res.Pattern.NextDueDate.Equal(want) {
		t.Errorf("NextDueDate = %s, want %s", res.Pattern.NextDueDate, want)
	}
	stored, _ := patternRepo.GetByID(context.Background(), p.ID)
	if want := date(2025, time.May, 5); !stored.NextDueDate.Equal(want) {
		t.Errorf("persisted NextDueDate = %s, want %s", stored.NextDueDate, want)
	}
}

func TestResolve_SkipAdvancesWithoutTransaction(t *testing.T) {
	p := rentPattern()
	svc, _, ledgerRepo := setupRecurringServiceTest(p)

	res, err := svc.Resolve(context.Background(), p.ID, date(2025, time.April, 5), false, time.Now())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Transaction != nil {
		t.Error("skipping must not emit a transaction")
	}
	if len(ledgerRepo.txs) != 0 {
		t.Errorf("ledger holds %d transactions after skip, want 0", len(ledgerRepo.txs))
	}
	if want := date(2025, time.May, 5); !res.Pattern.NextDueDate.Equal(want) {
		t.Errorf("NextDueDate = %s, want %s", res.Pattern.NextDueDate, want)
	}
}

func TestResolve_StaleResolutionRejected(t *testing.T) {
	p := rentPattern()
	svc, _, ledgerRepo := setupRecurringServiceTest(p)

	// First press wins.
	if _, err := svc.Resolve(context.Background(), p.ID, date(2025, time.April, 5), true, time.Now()); err != nil {
		t.Fatalf("first Resolve returned error: %v", err)
	}

	// Second press confirms a due date that has already advanced.
	_, err := svc.Resolve(context.Background(), p.ID, date(2025, time.April, 5), true, time.Now())
	if err != ErrStaleResolution {
		t.Fatalf("second Resolve error = %v, want ErrStaleResolution", err)
	}
	if len(ledgerRepo.txs) != 1 {
		t.Errorf("ledger holds %d transactions, want 1: stale press must not double-pay", len(ledgerRepo.txs))
	}
}

func TestResolve_AnchorHealingThroughService(t *testing.T) {
	p := rentPattern()
	p.DayOfMonth = 31
	p.NextDueDate = date(2025, time.February, 28) // previously clamped

	svc, _, _ := setupRecurringServiceTest(p)

	res, err := svc.Resolve(context.Background(), p.ID, date(2025, time.February, 28), false, time.Now())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if want := date(2025, time.March, 31); !res.Pattern.NextDueDate.Equal(want) {
		t.Errorf("NextDueDate = %s, want healed %s", res.Pattern.NextDueDate, want)
	}
}

func TestUpcoming(t *testing.T) {
	near := rentPattern()
	far := rentPattern()
	far.ID = 11
	far.NextDueDate = date(2025, time.June, 1)

	svc, _, _ := setupRecurringServiceTest(near, far)

	got, err := svc.Upcoming(context.Background(), date(2025, time.April, 30))
	if err != nil {
		t.Fatalf("Upcoming returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != near.ID {
		t.Fatalf("Upcoming = %d patterns, want only the one due in April", len(got))
	}
}
