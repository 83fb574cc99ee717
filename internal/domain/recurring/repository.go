// internal/domain/recurring/repository.go
package recurring

import (
	"context"
	"time"
)

// Repository defines persistence for recurring patterns and their triggers.
// Triggers are loaded eagerly with their pattern.
type Repository interface {
	Create(ctx context.Context, p *Pattern) error
	GetByID(ctx context.Context, id int64) (*Pattern, error)
	ListAll(ctx context.Context) ([]*Pattern, error)
	ListDueOnOrBefore(ctx context.Context, day time.Time) ([]*Pattern, error)
	Delete(ctx context.Context, id int64) error

	// AdvanceDueDate persists a pattern resolution: NextDueDate is the only
	// field it writes.
	AdvanceDueDate(ctx context.Context, id int64, next time.Time) error
}
