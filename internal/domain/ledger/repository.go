// internal/domain/ledger/repository.go
package ledger

import (
	"context"
	"time"

	"family_billing_bot/internal/domain/billing"
)

// Repository defines persistence for ledger transactions.
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id string) (*Transaction, error)
	ListAll(ctx context.Context) ([]*Transaction, error)
	ListByInstrument(ctx context.Context, instrument billing.InstrumentID, from, to time.Time) ([]*Transaction, error)
}
