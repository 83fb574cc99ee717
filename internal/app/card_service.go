// internal/app/card_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"family_billing_bot/internal/domain/billing"
	"family_billing_bot/internal/domain/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidAmount       = errors.New("purchase amount must be positive")
	ErrInvalidInstallments = errors.New("installment count must be at least 1")
)

// CardView pairs a card's configuration with its computed active-cycle
// status, ready for rendering.
type CardView struct {
	Config *billing.CardConfig
	Status billing.Status
}

// CardService answers card status queries for the bot's status views. Cycles
// are always derived from configuration plus "now", never materialized.
type CardService struct {
	cardRepo   billing.Repository
	ledgerRepo ledger.Repository
	currency   string
	logger     *logrus.Entry
}

func NewCardService(cr billing.Repository, lr ledger.Repository, defaultCurrency string, logger *logrus.Entry) *CardService {
	return &CardService{cardRepo: cr, ledgerRepo: lr, currency: defaultCurrency, logger: logger}
}

// Status computes the active cycle and current spend of one card. The ledger
// query is scoped to the card's instrument over a window that generously
// covers the active cycle; the aggregator applies the exact cycle bounds.
func (s *CardService) Status(ctx context.Context, instrument billing.InstrumentID, today time.Time) (*CardView, error) {
	cfg, err := s.cardRepo.GetCardByInstrument(ctx, instrument)
	if err != nil {
		return nil, fmt.Errorf("failed to load card %q: %w", instrument, err)
	}
	day := billing.DateOnly(today)
	txs, err := s.ledgerRepo.ListByInstrument(ctx, instrument, billing.AddMonthsClamped(day, -2), day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for card %q: %w", instrument, err)
	}
	return &CardView{
		Config: cfg,
		Status: billing.CardStatus(cfg, ledger.Charges(txs), s.currency, today),
	}, nil
}

// StatusAll computes the status of every configured card.
func (s *CardService) StatusAll(ctx context.Context, today time.Time) ([]*CardView, error) {
	cards, err := s.cardRepo.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list card configs: %w", err)
	}
	txs, err := s.ledgerRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	charges := ledger.Charges(txs)

	views := make([]*CardView, 0, len(cards))
	for _, cfg := range cards {
		views = append(views, &CardView{
			Config: cfg,
			Status: billing.CardStatus(cfg, charges, s.currency, today),
		})
	}
	s.logger.WithField("cards", len(views)).Debug("Card statuses computed")
	return views, nil
}

// RecordPurchase appends a card purchase to the ledger. With installments of
// 1 a single transaction posts at now. A larger count splits the amount into
// that many equal monthly parts, each part one calendar month after the
// previous with the day clamped to short months; the last part absorbs the
// rounding remainder so the parts always sum to the original amount. Every
// part carries its position in the plan and a "(i/n)" title suffix.
func (s *CardService) RecordPurchase(
	ctx context.Context,
	memberID int64,
	instrument billing.InstrumentID,
	amount decimal.Decimal,
	title string,
	installments int,
	now time.Time,
) ([]*ledger.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if installments < 1 {
		return nil, ErrInvalidInstallments
	}
	cfg, err := s.cardRepo.GetCardByInstrument(ctx, instrument)
	if err != nil {
		return nil, fmt.Errorf("failed to load card %q: %w", instrument, err)
	}

	if installments == 1 {
		tx := &ledger.Transaction{
			ID:         uuid.NewString(),
			MemberID:   memberID,
			Flow:       "expense",
			Amount:     amount,
			Currency:   s.currency,
			Title:      title,
			Instrument: cfg.Instrument,
			PostedAt:   now,
		}
		if err := s.ledgerRepo.Create(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to record purchase on card %q: %w", instrument, err)
		}
		s.logger.WithFields(logrus.Fields{
			"instrument": instrument,
			"amount":     amount.StringFixed(2),
		}).Info("Purchase recorded")
		return []*ledger.Transaction{tx}, nil
	}

	count := decimal.NewFromInt(int64(installments))
	part := amount.DivRound(count, 2)
	last := amount.Sub(part.Mul(count.Sub(decimal.NewFromInt(1))))

	dates := billing.InstallmentDates(now, installments)
	txs := make([]*ledger.Transaction, 0, installments)
	for i, d := range dates {
		a := part
		if i == installments-1 {
			a = last
		}
		tx := &ledger.Transaction{
			ID:                 uuid.NewString(),
			MemberID:           memberID,
			Flow:               "expense",
			Amount:             a,
			Currency:           s.currency,
			Title:              fmt.Sprintf("%s (%d/%d)", title, i+1, installments),
			Instrument:         cfg.Instrument,
			InstallmentCurrent: i + 1,
			InstallmentTotal:   installments,
			PostedAt:           d,
		}
		if err := s.ledgerRepo.Create(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to record installment %d/%d on card %q: %w", i+1, installments, instrument, err)
		}
		txs = append(txs, tx)
	}
	s.logger.WithFields(logrus.Fields{
		"instrument":   instrument,
		"amount":       amount.StringFixed(2),
		"installments": installments,
	}).Info("Installment purchase recorded")
	return txs, nil
}
