package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"family_billing_bot/internal/domain/billing"
)

// Custom errors specific to card configuration storage
var ErrCardNotFound = fmt.Errorf("card configuration not found")
var ErrDuplicateInstrument = fmt.Errorf("card configuration for this instrument already exists")

type PostgresCardRepository struct {
	db *sql.DB
}

func NewPostgresCardRepository(db *sql.DB) *PostgresCardRepository {
	return &PostgresCardRepository{db: db}
}

func (r *PostgresCardRepository) CreateCard(ctx context.Context, cfg *billing.CardConfig) error {
	query := `INSERT INTO card_configs (instrument, closing_rule, closing_day, payment_due_gap, bank_name, network, last4, credit_limit)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		cfg.Instrument.String(), cfg.ClosingRule, cfg.ClosingDay, cfg.PaymentDueGap,
		cfg.BankName, cfg.Network, cfg.Last4, cfg.Limit,
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "card_configs_instrument_key") {
			return ErrDuplicateInstrument
		}
		return fmt.Errorf("error creating card config: %w", err)
	}
	return nil
}

func (r *PostgresCardRepository) UpdateCard(ctx context.Context, cfg *billing.CardConfig) error {
	query := `UPDATE card_configs
               SET closing_rule = $1, closing_day = $2, payment_due_gap = $3,
                   bank_name = $4, network = $5, last4 = $6, credit_limit = $7, updated_at = NOW()
               WHERE id = $8
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		cfg.ClosingRule, cfg.ClosingDay, cfg.PaymentDueGap,
		cfg.BankName, cfg.Network, cfg.Last4, cfg.Limit, cfg.ID,
	).Scan(&cfg.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrCardNotFound
		}
		return fmt.Errorf("error updating card config: %w", err)
	}
	return nil
}

func (r *PostgresCardRepository) DeleteCard(ctx context.Context, instrument billing.InstrumentID) error {
	// Overrides go with the card via ON DELETE CASCADE.
	res, err := r.db.ExecContext(ctx, `DELETE FROM card_configs WHERE instrument = $1`, instrument.String())
	if err != nil {
		return fmt.Errorf("error deleting card config: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (r *PostgresCardRepository) GetCardByInstrument(ctx context.Context, instrument billing.InstrumentID) (*billing.CardConfig, error) {
	query := `SELECT id, instrument, closing_rule, closing_day, payment_due_gap, bank_name, network, last4, credit_limit, created_at, updated_at
               FROM card_configs WHERE instrument = $1`
	cfg := &billing.CardConfig{}
	var instrumentStr string
	err := r.db.QueryRowContext(ctx, query, instrument.String()).Scan(
		&cfg.ID, &instrumentStr, &cfg.ClosingRule, &cfg.ClosingDay, &cfg.PaymentDueGap,
		&cfg.BankName, &cfg.Network, &cfg.Last4, &cfg.Limit, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("error getting card config: %w", err)
	}
	cfg.Instrument = billing.InstrumentID(instrumentStr)

	if cfg.Overrides, err = r.listOverrides(ctx, cfg.ID); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *PostgresCardRepository) ListCards(ctx context.Context) ([]*billing.CardConfig, error) {
	query := `SELECT id, instrument, closing_rule, closing_day, payment_due_gap, bank_name, network, last4, credit_limit, created_at, updated_at
               FROM card_configs ORDER BY instrument`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing card configs: %w", err)
	}
	defer rows.Close()

	cards := make([]*billing.CardConfig, 0)
	for rows.Next() {
		cfg := &billing.CardConfig{}
		var instrumentStr string
		if err := rows.Scan(
			&cfg.ID, &instrumentStr, &cfg.ClosingRule, &cfg.ClosingDay, &cfg.PaymentDueGap,
			&cfg.BankName, &cfg.Network, &cfg.Last4, &cfg.Limit, &cfg.CreatedAt, &cfg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning card config row: %w", err)
		}
		cfg.Instrument = billing.InstrumentID(instrumentStr)
		cards = append(cards, cfg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card configs: %w", err)
	}

	for _, cfg := range cards {
		if cfg.Overrides, err = r.listOverrides(ctx, cfg.ID); err != nil {
			return nil, err
		}
	}
	return cards, nil
}

func (r *PostgresCardRepository) listOverrides(ctx context.Context, cardID int64) ([]billing.DateOverride, error) {
	query := `SELECT id, year, month, closing_date, due_date
               FROM card_date_overrides WHERE card_id = $1 ORDER BY year, month`
	rows, err := r.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("error listing card overrides: %w", err)
	}
	defer rows.Close()

	overrides := make([]billing.DateOverride, 0)
	for rows.Next() {
		var o billing.DateOverride
		var month int
		if err := rows.Scan(&o.ID, &o.Year, &month, &o.ClosingDate, &o.DueDate); err != nil {
			return nil, fmt.Errorf("error scanning card override row: %w", err)
		}
		o.Month = time.Month(month)
		overrides = append(overrides, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card overrides: %w", err)
	}
	return overrides, nil
}

// UpsertOverride replaces any existing override for the same card and month:
// the (card_id, year, month) unique constraint backs the at-most-one
// invariant.
func (r *PostgresCardRepository) UpsertOverride(ctx context.Context, cardID int64, o *billing.DateOverride) error {
	query := `INSERT INTO card_date_overrides (card_id, year, month, closing_date, due_date)
               VALUES ($1, $2, $3, $4, $5)
               ON CONFLICT (card_id, year, month)
               DO UPDATE SET closing_date = EXCLUDED.closing_date, due_date = EXCLUDED.due_date
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, cardID, o.Year, int(o.Month), o.ClosingDate, o.DueDate).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("error upserting card override: %w", err)
	}
	return nil
}

func (r *PostgresCardRepository) DeleteOverride(ctx context.Context, cardID int64, year int, month int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM card_date_overrides WHERE card_id = $1 AND year = $2 AND month = $3`, cardID, year, month)
	if err != nil {
		return fmt.Errorf("error deleting card override: %w", err)
	}
	return nil
}
