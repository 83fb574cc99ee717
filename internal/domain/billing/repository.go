// internal/domain/billing/repository.go
package billing

import "context"

// Repository defines persistence for card configurations and their date
// overrides. Overrides are loaded eagerly with their card: the cycle
// calculator needs them on every call.
type Repository interface {
	CreateCard(ctx context.Context, cfg *CardConfig) error
	UpdateCard(ctx context.Context, cfg *CardConfig) error
	DeleteCard(ctx context.Context, instrument InstrumentID) error
	GetCardByInstrument(ctx context.Context, instrument InstrumentID) (*CardConfig, error)
	ListCards(ctx context.Context) ([]*CardConfig, error)

	// UpsertOverride replaces any existing override for the same card, year
	// and month (at most one per pair).
	UpsertOverride(ctx context.Context, cardID int64, o *DateOverride) error
	DeleteOverride(ctx context.Context, cardID int64, year int, month int) error
}
