package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"family_billing_bot/internal/domain/billing"
	"family_billing_bot/internal/domain/ledger"
)

// Custom errors specific to ledger storage
var ErrTransactionNotFound = fmt.Errorf("transaction not found")

type PostgresLedgerRepository struct {
	db *sql.DB
}

func NewPostgresLedgerRepository(db *sql.DB) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

const transactionColumns = `id, member_id, flow, amount, currency, title, category, instrument, installment_current, installment_total, notes, posted_at, created_at`

func (r *PostgresLedgerRepository) Create(ctx context.Context, tx *ledger.Transaction) error {
	query := `INSERT INTO transactions
               (id, member_id, flow, amount, currency, title, category, instrument, installment_current, installment_total, notes, posted_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
               RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query,
		tx.ID, nullableID(tx.MemberID), tx.Flow, tx.Amount, tx.Currency, tx.Title, tx.Category,
		nullableInstrument(tx.Instrument), tx.InstallmentCurrent, tx.InstallmentTotal, tx.Notes, tx.PostedAt,
	).Scan(&tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating transaction: %w", err)
	}
	return nil
}

func (r *PostgresLedgerRepository) GetByID(ctx context.Context, id string) (*ledger.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("error getting transaction by ID: %w", err)
	}
	return tx, nil
}

func (r *PostgresLedgerRepository) ListAll(ctx context.Context) ([]*ledger.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY posted_at, id`
	return r.list(ctx, query)
}

func (r *PostgresLedgerRepository) ListByInstrument(ctx context.Context, instrument billing.InstrumentID, from, to time.Time) ([]*ledger.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
               WHERE instrument = $1 AND posted_at >= $2 AND posted_at <= $3
               ORDER BY posted_at, id`
	return r.list(ctx, query, instrument.String(), from, to)
}

func (r *PostgresLedgerRepository) list(ctx context.Context, query string, args ...any) ([]*ledger.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*ledger.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		txs = append(txs, tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}

func scanTransaction(row rowScanner) (*ledger.Transaction, error) {
	tx := &ledger.Transaction{}
	var memberID sql.NullInt64
	var instrument sql.NullString
	if err := row.Scan(
		&tx.ID, &memberID, &tx.Flow, &tx.Amount, &tx.Currency, &tx.Title, &tx.Category,
		&instrument, &tx.InstallmentCurrent, &tx.InstallmentTotal, &tx.Notes, &tx.PostedAt, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}
	if memberID.Valid {
		tx.MemberID = memberID.Int64
	}
	if instrument.Valid {
		tx.Instrument = billing.InstrumentID(instrument.String)
	}
	return tx, nil
}
