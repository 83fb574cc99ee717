package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"family_billing_bot/internal/domain/member"
)

// Custom errors
var ErrMemberNotFound = fmt.Errorf("family member not found")
var ErrDuplicateTelegramID = fmt.Errorf("member with this Telegram ID already exists")

type PostgresMemberRepository struct {
	db *sql.DB
}

func NewPostgresMemberRepository(db *sql.DB) *PostgresMemberRepository {
	return &PostgresMemberRepository{db: db}
}

func (r *PostgresMemberRepository) Create(ctx context.Context, m *member.Member) error {
	query := `INSERT INTO family_members (telegram_id, first_name, last_name, is_admin, is_active)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, m.TelegramID, m.FirstName, m.LastName, m.IsAdmin, m.IsActive).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "family_members_telegram_id_key") {
			return ErrDuplicateTelegramID
		}
		return fmt.Errorf("error creating member: %w", err)
	}
	return nil
}

func (r *PostgresMemberRepository) GetByID(ctx context.Context, id int64) (*member.Member, error) {
	query := `SELECT id, telegram_id, first_name, last_name, is_admin, is_active, created_at, updated_at
               FROM family_members WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), "by ID")
}

func (r *PostgresMemberRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*member.Member, error) {
	query := `SELECT id, telegram_id, first_name, last_name, is_admin, is_active, created_at, updated_at
               FROM family_members WHERE telegram_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, telegramID), "by Telegram ID")
}

func (r *PostgresMemberRepository) scanOne(row *sql.Row, by string) (*member.Member, error) {
	m := &member.Member{}
	err := row.Scan(&m.ID, &m.TelegramID, &m.FirstName, &m.LastName, &m.IsAdmin, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("error getting member %s: %w", by, err)
	}
	return m, nil
}

func (r *PostgresMemberRepository) Update(ctx context.Context, m *member.Member) error {
	query := `UPDATE family_members
               SET first_name = $1, last_name = $2, is_admin = $3, is_active = $4, updated_at = NOW()
               WHERE id = $5
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, m.FirstName, m.LastName, m.IsAdmin, m.IsActive, m.ID).Scan(&m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrMemberNotFound
		}
		return fmt.Errorf("error updating member: %w", err)
	}
	return nil
}

func (r *PostgresMemberRepository) ListActive(ctx context.Context) ([]*member.Member, error) {
	query := `SELECT id, telegram_id, first_name, last_name, is_admin, is_active, created_at, updated_at
               FROM family_members WHERE is_active = TRUE ORDER BY first_name, last_name`
	return r.list(ctx, query, "active members")
}

func (r *PostgresMemberRepository) ListAll(ctx context.Context) ([]*member.Member, error) {
	query := `SELECT id, telegram_id, first_name, last_name, is_admin, is_active, created_at, updated_at
               FROM family_members ORDER BY id`
	return r.list(ctx, query, "all members")
}

func (r *PostgresMemberRepository) list(ctx context.Context, query, what string) ([]*member.Member, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", what, err)
	}
	defer rows.Close()

	members := make([]*member.Member, 0)
	for rows.Next() {
		m := &member.Member{}
		if err := rows.Scan(&m.ID, &m.TelegramID, &m.FirstName, &m.LastName, &m.IsAdmin, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning member row: %w", err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}
	return members, nil
}
