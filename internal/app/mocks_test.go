package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"family_billing_bot/internal/domain/billing"
	"family_billing_bot/internal/domain/delivery"
	"family_billing_bot/internal/domain/ledger"
	"family_billing_bot/internal/domain/member"
	"family_billing_bot/internal/domain/recurring"
)

var errNotFound = errors.New("not found")

type memPatternRepo struct {
	patterns map[int64]*recurring.Pattern
}

func newMemPatternRepo(patterns ...*recurring.Pattern) *memPatternRepo {
	r := &memPatternRepo{patterns: make(map[int64]*recurring.Pattern)}
	for _, p := range patterns {
		r.patterns[p.ID] = p
	}
	return r
}

func (r *memPatternRepo) Create(_ context.Context, p *recurring.Pattern) error {
	r.patterns[p.ID] = p
	return nil
}

func (r *memPatternRepo) GetByID(_ context.Context, id int64) (*recurring.Pattern, error) {
	p, ok := r.patterns[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPatternRepo) ListAll(_ context.Context) ([]*recurring.Pattern, error) {
	out := make([]*recurring.Pattern, 0, len(r.patterns))
	for _, p := range r.patterns {
		out = append(out, p)
	}
	return out, nil
}

func (r *memPatternRepo) ListDueOnOrBefore(_ context.Context, day time.Time) ([]*recurring.Pattern, error) {
	var out []*recurring.Pattern
	for _, p := range r.patterns {
		if !p.NextDueDate.After(day) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPatternRepo) Delete(_ context.Context, id int64) error {
	delete(r.patterns, id)
	return nil
}

func (r *memPatternRepo) AdvanceDueDate(_ context.Context, id int64, next time.Time) error {
	p, ok := r.patterns[id]
	if !ok {
		return errNotFound
	}
	p.NextDueDate = next
	return nil
}

type memLedgerRepo struct {
	txs []*ledger.Transaction

	byInstrumentCalls int
}

func (r *memLedgerRepo) Create(_ context.Context, tx *ledger.Transaction) error {
	r.txs = append(r.txs, tx)
	return nil
}

func (r *memLedgerRepo) GetByID(_ context.Context, id string) (*ledger.Transaction, error) {
	for _, tx := range r.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, errNotFound
}

func (r *memLedgerRepo) ListAll(_ context.Context) ([]*ledger.Transaction, error) {
	return r.txs, nil
}

func (r *memLedgerRepo) ListByInstrument(_ context.Context, instrument billing.InstrumentID, from, to time.Time) ([]*ledger.Transaction, error) {
	r.byInstrumentCalls++
	var out []*ledger.Transaction
	for _, tx := range r.txs {
		if tx.Instrument == instrument && !tx.PostedAt.Before(from) && !tx.PostedAt.After(to) {
			out = append(out, tx)
		}
	}
	return out, nil
}

type memCardRepo struct {
	cards map[billing.InstrumentID]*billing.CardConfig
}

func newMemCardRepo(cards ...*billing.CardConfig) *memCardRepo {
	r := &memCardRepo{cards: make(map[billing.InstrumentID]*billing.CardConfig)}
	for _, c := range cards {
		r.cards[c.Instrument] = c
	}
	return r
}

func (r *memCardRepo) CreateCard(_ context.Context, cfg *billing.CardConfig) error {
	r.cards[cfg.Instrument] = cfg
	return nil
}

func (r *memCardRepo) UpdateCard(_ context.Context, cfg *billing.CardConfig) error {
	r.cards[cfg.Instrument] = cfg
	return nil
}

func (r *memCardRepo) DeleteCard(_ context.Context, instrument billing.InstrumentID) error {
	delete(r.cards, instrument)
	return nil
}

func (r *memCardRepo) GetCardByInstrument(_ context.Context, instrument billing.InstrumentID) (*billing.CardConfig, error) {
	c, ok := r.cards[instrument]
	if !ok {
		return nil, errNotFound
	}
	return c, nil
}

func (r *memCardRepo) ListCards(_ context.Context) ([]*billing.CardConfig, error) {
	out := make([]*billing.CardConfig, 0, len(r.cards))
	for _, c := range r.cards {
		out = append(out, c)
	}
	return out, nil
}

func (r *memCardRepo) UpsertOverride(_ context.Context, cardID int64, o *billing.DateOverride) error {
	for _, c := range r.cards {
		if c.ID != cardID {
			continue
		}
		for i := range c.Overrides {
			if c.Overrides[i].Year == o.Year && c.Overrides[i].Month == o.Month {
				c.Overrides[i] = *o
				return nil
			}
		}
		c.Overrides = append(c.Overrides, *o)
		return nil
	}
	return errNotFound
}

func (r *memCardRepo) DeleteOverride(_ context.Context, cardID int64, year int, month int) error {
	return nil
}

type memMemberRepo struct {
	members []*member.Member
}

func (r *memMemberRepo) Create(_ context.Context, m *member.Member) error {
	r.members = append(r.members, m)
	return nil
}

func (r *memMemberRepo) GetByID(_ context.Context, id int64) (*member.Member, error) {
	for _, m := range r.members {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, errNotFound
}

func (r *memMemberRepo) GetByTelegramID(_ context.Context, telegramID int64) (*member.Member, error) {
	for _, m := range r.members {
		if m.TelegramID == telegramID {
			return m, nil
		}
	}
	return nil, errNotFound
}

func (r *memMemberRepo) Update(_ context.Context, m *member.Member) error { return nil }

func (r *memMemberRepo) ListActive(_ context.Context) ([]*member.Member, error) {
	var out []*member.Member
	for _, m := range r.members {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMemberRepo) ListAll(_ context.Context) ([]*member.Member, error) {
	return r.members, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []delivery.Reminder
	fail bool
}

func (n *recordingNotifier) Send(_ context.Context, r delivery.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("delivery failed")
	}
	n.sent = append(n.sent, r)
	return nil
}
