// internal/domain/billing/card.go
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstrumentID identifies one payment instrument (e.g. "Visa Gold"). It is
// the join key between card configurations, recurring patterns and ledger
// transactions. Raw strings are converted to it once at the boundary;
// everything below compares InstrumentID values, never free-form strings.
type InstrumentID string

func (id InstrumentID) String() string { return string(id) }

// ClosingRule selects how a card's monthly closing date is derived.
type ClosingRule string

const (
	ClosingRuleFixed           ClosingRule = "fixed"
	ClosingRuleLastBusinessDay ClosingRule = "last_business_day"
)

// CardNetwork is presentational metadata, irrelevant to cycle math.
type CardNetwork string

const (
	NetworkVisa       CardNetwork = "Visa"
	NetworkMastercard CardNetwork = "Mastercard"
	NetworkAmex       CardNetwork = "Amex"
	NetworkOther      CardNetwork = "Other"
)

// DateOverride pins a single (year, month) to explicit closing and due dates,
// bypassing the card's closing rule entirely. At most one override exists per
// card and month; the repository enforces the unique constraint.
type DateOverride struct {
	ID          int64
	Year        int
	Month       time.Month
	ClosingDate time.Time
	DueDate     time.Time
}

// CardConfig describes one credit or debit instrument. It is read-only input
// for the cycle calculator: mutation happens only through the admin flow.
type CardConfig struct {
	ID            int64
	Instrument    InstrumentID
	ClosingRule   ClosingRule
	ClosingDay    int // 1-31, meaningful only for ClosingRuleFixed
	PaymentDueGap int // calendar days from closing to payment due
	Overrides     []DateOverride

	// Presentational fields, carried for the status views.
	BankName  string
	Network   CardNetwork
	Last4     string
	Limit     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OverrideFor returns the override pinned to the given year and month, if any.
func (c *CardConfig) OverrideFor(year int, month time.Month) (DateOverride, bool) {
	for _, o := range c.Overrides {
		if o.Year == year && o.Month == month {
			return o, true
		}
	}
	return DateOverride{}, false
}
