package member

import "context"

// Repository defines persistence for family members.
type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id int64) (*Member, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*Member, error)
	Update(ctx context.Context, m *Member) error
	ListActive(ctx context.Context) ([]*Member, error)
	ListAll(ctx context.Context) ([]*Member, error)
}
