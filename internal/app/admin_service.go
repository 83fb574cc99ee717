package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"family_billing_bot/internal/domain/billing"
	"family_billing_bot/internal/domain/member"
	idb "family_billing_bot/internal/infra/database"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrMemberAlreadyExists = fmt.Errorf("member with this Telegram ID already exists")
var ErrMemberAlreadyInactive = fmt.Errorf("member is already inactive")
var ErrInvalidClosingDay = fmt.Errorf("closing day must be between 1 and 31")

// AdminService handles family and card administration initiated by the admin
// over bot commands.
type AdminService struct {
	memberRepo      member.Repository
	cardRepo        billing.Repository
	adminTelegramID int64
}

func NewAdminService(mr member.Repository, cr billing.Repository, adminID int64) *AdminService {
	return &AdminService{
		memberRepo:      mr,
		cardRepo:        cr,
		adminTelegramID: adminID,
	}
}

// AddMember registers a new family member as a notification recipient.
func (s *AdminService) AddMember(ctx context.Context, performingAdminID int64, telegramID int64, firstName, lastNameValue string) (*member.Member, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	_, err := s.memberRepo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return nil, ErrMemberAlreadyExists
	}
	if err != idb.ErrMemberNotFound {
		return nil, fmt.Errorf("failed to check existing member: %w", err)
	}

	var lastName sql.NullString
	if lastNameValue != "" {
		lastName.String = lastNameValue
		lastName.Valid = true
	}

	newMember := &member.Member{
		TelegramID: telegramID,
		FirstName:  firstName,
		LastName:   lastName,
		IsActive:   true,
	}
	if err := s.memberRepo.Create(ctx, newMember); err != nil {
		if err == idb.ErrDuplicateTelegramID {
			return nil, ErrMemberAlreadyExists
		}
		return nil, fmt.Errorf("failed to create member in repository: %w", err)
	}
	return newMember, nil
}

// RemoveMember deactivates a member; they stop receiving reminders.
func (s *AdminService) RemoveMember(ctx context.Context, performingAdminID int64, telegramID int64) (*member.Member, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	target, err := s.memberRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if err == idb.ErrMemberNotFound {
			return nil, idb.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member by Telegram ID for removal: %w", err)
	}
	if !target.IsActive {
		return target, ErrMemberAlreadyInactive
	}

	target.IsActive = false
	if err := s.memberRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to deactivate member: %w", err)
	}
	return target, nil
}

// ListMembers returns active members, or all when includeInactive is set.
func (s *AdminService) ListMembers(ctx context.Context, performingAdminID int64, includeInactive bool) ([]*member.Member, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	if includeInactive {
		return s.memberRepo.ListAll(ctx)
	}
	return s.memberRepo.ListActive(ctx)
}

// SaveCard creates or updates a card configuration. The closing day is
// validated here, at save time; the cycle calculator assumes valid input and
// only clamps defensively.
func (s *AdminService) SaveCard(ctx context.Context, performingAdminID int64, cfg *billing.CardConfig) error {
	if performingAdminID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}
	if cfg.ClosingRule == billing.ClosingRuleFixed && (cfg.ClosingDay < 1 || cfg.ClosingDay > 31) {
		return ErrInvalidClosingDay
	}

	existing, err := s.cardRepo.GetCardByInstrument(ctx, cfg.Instrument)
	if err == nil {
		cfg.ID = existing.ID
		return s.cardRepo.UpdateCard(ctx, cfg)
	}
	if err != idb.ErrCardNotFound {
		return fmt.Errorf("failed to check existing card: %w", err)
	}
	return s.cardRepo.CreateCard(ctx, cfg)
}

// SetOverride pins explicit closing/due dates for one month of a card,
// replacing any previous override for that month.
func (s *AdminService) SetOverride(ctx context.Context, performingAdminID int64, instrument billing.InstrumentID, year int, month time.Month, closing, due time.Time) error {
	if performingAdminID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}

	cfg, err := s.cardRepo.GetCardByInstrument(ctx, instrument)
	if err != nil {
		return fmt.Errorf("failed to load card %q for override: %w", instrument, err)
	}
	return s.cardRepo.UpsertOverride(ctx, cfg.ID, &billing.DateOverride{
		Year:        year,
		Month:       month,
		ClosingDate: closing,
		DueDate:     due,
	})
}
