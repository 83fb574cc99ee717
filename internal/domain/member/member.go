package member

import (
	"database/sql"
	"time"
)

// Member is one family member and notification recipient.
type Member struct {
	ID         int64
	TelegramID int64
	FirstName  string
	LastName   sql.NullString
	IsAdmin    bool
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayName renders the member's name for notification bodies.
func (m *Member) DisplayName() string {
	if m.LastName.Valid && m.LastName.String != "" {
		return m.FirstName + " " + m.LastName.String
	}
	return m.FirstName
}
