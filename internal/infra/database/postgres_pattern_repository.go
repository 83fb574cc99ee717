package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"family_billing_bot/internal/domain/billing"
	"family_billing_bot/internal/domain/recurring"
)

// Custom errors specific to recurring pattern storage
var ErrPatternNotFound = fmt.Errorf("recurring pattern not found")

type PostgresPatternRepository struct {
	db *sql.DB
}

func NewPostgresPatternRepository(db *sql.DB) *PostgresPatternRepository {
	return &PostgresPatternRepository{db: db}
}

func (r *PostgresPatternRepository) Create(ctx context.Context, p *recurring.Pattern) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for pattern create: %w", err)
	}
	defer txn.Rollback()

	query := `INSERT INTO recurring_patterns
               (member_id, flow, amount, currency, title, category, instrument, frequency, next_due_date, due_pattern, day_of_month, notes)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
               RETURNING id, created_at, updated_at`
	err = txn.QueryRowContext(ctx, query,
		nullableID(p.MemberID), p.Flow, p.Amount, p.Currency, p.Title, p.Category,
		nullableInstrument(p.Instrument), p.Frequency, p.NextDueDate, p.DuePattern,
		nullableDay(p.DayOfMonth), p.Notes,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating recurring pattern: %w", err)
	}

	for i := range p.Triggers {
		trig := &p.Triggers[i]
		_, err := txn.ExecContext(ctx,
			`INSERT INTO notification_triggers (id, pattern_id, days, direction, target) VALUES ($1, $2, $3, $4, $5)`,
			trig.ID, p.ID, trig.Days, trig.Direction, trig.Target,
		)
		if err != nil {
			return fmt.Errorf("error creating notification trigger for pattern %d: %w", p.ID, err)
		}
	}

	return txn.Commit()
}

const patternColumns = `id, member_id, flow, amount, currency, title, category, instrument, frequency, next_due_date, due_pattern, day_of_month, notes, created_at, updated_at`

func (r *PostgresPatternRepository) GetByID(ctx context.Context, id int64) (*recurring.Pattern, error) {
	query := `SELECT ` + patternColumns + ` FROM recurring_patterns WHERE id = $1`
	p, err := scanPattern(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPatternNotFound
		}
		return nil, fmt.Errorf("error getting recurring pattern by ID: %w", err)
	}
	if p.Triggers, err = r.listTriggers(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresPatternRepository) ListAll(ctx context.Context) ([]*recurring.Pattern, error) {
	return r.listWhere(ctx, ``, nil)
}

func (r *PostgresPatternRepository) ListDueOnOrBefore(ctx context.Context, day time.Time) ([]*recurring.Pattern, error) {
	return r.listWhere(ctx, `WHERE next_due_date <= $1`, []any{day})
}

func (r *PostgresPatternRepository) listWhere(ctx context.Context, where string, args []any) ([]*recurring.Pattern, error) {
	query := `SELECT ` + patternColumns + ` FROM recurring_patterns ` + where + ` ORDER BY next_due_date, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing recurring patterns: %w", err)
	}
	defer rows.Close()

	patterns := make([]*recurring.Pattern, 0)
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning recurring pattern row: %w", err)
		}
		patterns = append(patterns, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring patterns: %w", err)
	}

	for _, p := range patterns {
		if p.Triggers, err = r.listTriggers(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return patterns, nil
}

func (r *PostgresPatternRepository) listTriggers(ctx context.Context, patternID int64) ([]recurring.NotificationTrigger, error) {
	query := `SELECT id, days, direction, target FROM notification_triggers WHERE pattern_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, patternID)
	if err != nil {
		return nil, fmt.Errorf("error listing notification triggers: %w", err)
	}
	defer rows.Close()

	var triggers []recurring.NotificationTrigger
	for rows.Next() {
		var trig recurring.NotificationTrigger
		if err := rows.Scan(&trig.ID, &trig.Days, &trig.Direction, &trig.Target); err != nil {
			return nil, fmt.Errorf("error scanning notification trigger row: %w", err)
		}
		triggers = append(triggers, trig)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification triggers: %w", err)
	}
	return triggers, nil
}

// AdvanceDueDate writes the pattern's new NextDueDate, its only mutable
// field.
func (r *PostgresPatternRepository) AdvanceDueDate(ctx context.Context, id int64, next time.Time) error {
	query := `UPDATE recurring_patterns SET next_due_date = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, next, id).Scan(&updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrPatternNotFound
		}
		return fmt.Errorf("error advancing recurring pattern: %w", err)
	}
	return nil
}

func (r *PostgresPatternRepository) Delete(ctx context.Context, id int64) error {
	// Triggers go with the pattern via ON DELETE CASCADE.
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_patterns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting recurring pattern: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPatternNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPattern(row rowScanner) (*recurring.Pattern, error) {
	p := &recurring.Pattern{}
	var memberID sql.NullInt64
	var instrument sql.NullString
	var dayOfMonth sql.NullInt32
	if err := row.Scan(
		&p.ID, &memberID, &p.Flow, &p.Amount, &p.Currency, &p.Title, &p.Category,
		&instrument, &p.Frequency, &p.NextDueDate, &p.DuePattern, &dayOfMonth,
		&p.Notes, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if memberID.Valid {
		p.MemberID = memberID.Int64
	}
	if instrument.Valid {
		p.Instrument = billing.InstrumentID(instrument.String)
	}
	if dayOfMonth.Valid {
		p.DayOfMonth = int(dayOfMonth.Int32)
	}
	return p, nil
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func nullableInstrument(id billing.InstrumentID) sql.NullString {
	return sql.NullString{String: id.String(), Valid: id != ""}
}

func nullableDay(day int) sql.NullInt32 {
	return sql.NullInt32{Int32: int32(day), Valid: day > 0}
}
