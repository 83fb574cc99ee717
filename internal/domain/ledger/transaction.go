// internal/domain/ledger/transaction.go
package ledger

import (
	"time"

	"family_billing_bot/internal/domain/billing"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable historical fact. This core only ever appends
// (when a recurring occurrence is marked paid) and aggregates; it never
// mutates an existing record.
type Transaction struct {
	ID         string // UUID
	MemberID   int64
	Flow       string // "income" or "expense"
	Amount     decimal.Decimal
	Currency   string
	Title      string
	Category   string
	Instrument billing.InstrumentID // paying card, empty when none

	// Installment plan position, zero when the transaction is not part of one.
	InstallmentCurrent int
	InstallmentTotal   int

	Notes     string
	PostedAt  time.Time
	CreatedAt time.Time
}

// IsExpense reports whether the transaction counts toward card spend.
func (t *Transaction) IsExpense() bool { return t.Flow == "expense" }

// AsCharge maps the transaction into the billing aggregator's input shape.
func (t *Transaction) AsCharge() billing.Charge {
	return billing.Charge{
		Instrument: t.Instrument,
		Currency:   t.Currency,
		Amount:     t.Amount,
		PostedAt:   t.PostedAt,
		Expense:    t.IsExpense(),
	}
}

// Charges maps a transaction list for the billing aggregator.
func Charges(txs []*Transaction) []billing.Charge {
	out := make([]billing.Charge, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.AsCharge())
	}
	return out
}
