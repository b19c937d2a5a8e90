package journey

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/murasakijyuutann/transport-payment/internal/card"
	"github.com/murasakijyuutann/transport-payment/internal/db"
	"github.com/murasakijyuutann/transport-payment/internal/ledger"
	"github.com/murasakijyuutann/transport-payment/internal/station"
)

// memDB is an in-memory stand-in for the journey, card, station and ledger
// stores. WithTx runs transactions one at a time and restores the previous
// state when fn fails.
type memDB struct {
	mu sync.Mutex

	cards    map[string]card.Card
	stations map[string]station.Station
	journeys map[int64]Journey
	balances map[int64]decimal.Decimal
	txns     []ledger.Transaction
	nextID   int64
}

func newMemDB() *memDB {
	m := &memDB{
		cards:    map[string]card.Card{},
		stations: map[string]station.Station{},
		journeys: map[int64]Journey{},
		balances: map[int64]decimal.Decimal{},
	}
	for _, st := range []*station.Station{central, uptown, airport} {
		m.stations[st.StationCode] = *st
	}
	return m
}

func (m *memDB) WithTx(ctx context.Context, fn func(q db.Querier) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	journeys := make(map[int64]Journey, len(m.journeys))
	for k, v := range m.journeys {
		journeys[k] = v
	}
	balances := make(map[int64]decimal.Decimal, len(m.balances))
	for k, v := range m.balances {
		balances[k] = v
	}
	txns := len(m.txns)
	nextID := m.nextID

	if err := fn(nil); err != nil {
		m.journeys, m.balances, m.txns, m.nextID = journeys, balances, m.txns[:txns], nextID
		return err
	}
	return nil
}

func (m *memDB) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memDB) FindByNumber(ctx context.Context, q db.Querier, cardNumber string) (*card.Card, error) {
	c, ok := m.cards[cardNumber]
	if !ok {
		return nil, card.ErrCardNotFound
	}
	return &c, nil
}

func (m *memDB) LockByNumber(ctx context.Context, q db.Querier, cardNumber string) (*card.Card, error) {
	return m.FindByNumber(ctx, q, cardNumber)
}

func (m *memDB) LockByID(ctx context.Context, q db.Querier, id int64) (*card.Card, error) {
	for _, c := range m.cards {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, card.ErrCardNotFound
}

func (m *memDB) FindByCode(ctx context.Context, q db.Querier, code string) (*station.Station, error) {
	st, ok := m.stations[code]
	if !ok {
		return nil, station.ErrStationNotFound
	}
	return &st, nil
}

func (m *memDB) FindByIDs(ctx context.Context, q db.Querier, ids []int64) (map[int64]*station.Station, error) {
	out := map[int64]*station.Station{}
	for _, st := range m.stations {
		for _, id := range ids {
			if st.ID == id {
				st := st
				out[id] = &st
			}
		}
	}
	return out, nil
}

func (m *memDB) Create(ctx context.Context, q db.Querier, j *Journey) error {
	for _, existing := range m.journeys {
		if existing.CardID == j.CardID && existing.Status == StatusInProgress {
			return ErrActiveJourneyExists
		}
	}
	j.ID = m.id()
	j.Status = StatusInProgress
	m.journeys[j.ID] = *j
	return nil
}

func (m *memDB) FindByID(ctx context.Context, q db.Querier, id int64) (*Journey, error) {
	j, ok := m.journeys[id]
	if !ok {
		return nil, ErrJourneyNotFound
	}
	return &j, nil
}

func (m *memDB) FindActiveByCard(ctx context.Context, q db.Querier, cardID int64) (*Journey, error) {
	for _, j := range m.journeys {
		if j.CardID == cardID && j.Status == StatusInProgress {
			return &j, nil
		}
	}
	return nil, ErrNoActiveJourney
}

func (m *memDB) Complete(ctx context.Context, q db.Querier, j *Journey) error {
	return m.close(j, StatusCompleted)
}

func (m *memDB) MarkIncomplete(ctx context.Context, q db.Querier, j *Journey) error {
	return m.close(j, StatusIncomplete)
}

func (m *memDB) close(j *Journey, status Status) error {
	if m.journeys[j.ID].Status != StatusInProgress {
		return ErrJourneyNotInProgress
	}
	j.Status = status
	m.journeys[j.ID] = *j
	return nil
}

func (m *memDB) FindStaleInProgress(ctx context.Context, q db.Querier, cutoff time.Time) ([]Journey, error) {
	var out []Journey
	for _, j := range m.journeys {
		if j.Status == StatusInProgress && j.TapInTime.Before(cutoff) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].TapInTime.Before(out[b].TapInTime) })
	return out, nil
}

func (m *memDB) ListByUser(ctx context.Context, q db.Querier, userID int64, limit, offset int) ([]View, error) {
	return nil, nil
}

func (m *memDB) GetOrCreateWallet(ctx context.Context, q db.Querier, userID int64) (*ledger.Wallet, error) {
	return &ledger.Wallet{UserID: userID, Balance: m.balances[userID]}, nil
}

func (m *memDB) LockWallet(ctx context.Context, q db.Querier, userID int64) (*ledger.Wallet, error) {
	return m.GetOrCreateWallet(ctx, q, userID)
}

func (m *memDB) Debit(ctx context.Context, q db.Querier, userID int64, amount decimal.Decimal, entry ledger.Entry) (*ledger.Transaction, error) {
	if amount.IsNegative() {
		return nil, ledger.ErrInvalidAmount
	}
	after := m.balances[userID].Sub(amount)
	if after.IsNegative() {
		return nil, ledger.ErrInsufficientFunds
	}
	m.balances[userID] = after

	txn := ledger.Transaction{
		ID:           m.id(),
		UserID:       userID,
		JourneyID:    entry.JourneyID,
		Type:         entry.Type,
		Amount:       amount,
		Status:       ledger.StatusCompleted,
		BalanceAfter: after,
		CreatedAt:    entry.At,
	}
	m.txns = append(m.txns, txn)
	return &txn, nil
}

func (m *memDB) DailySpend(ctx context.Context, q db.Querier, userID int64, day time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, t := range m.txns {
		if t.UserID == userID && t.Type == ledger.TypeJourneyPayment && t.Status == ledger.StatusCompleted &&
			t.CreatedAt.Format(time.DateOnly) == day.Format(time.DateOnly) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func newMemService(m *memDB, now func() time.Time) Service {
	return NewService(Deps{
		Tx:         m,
		Journeys:   m,
		Cards:      m,
		Stations:   m,
		Ledger:     m,
		Calculator: testCalculator(),
		Now:        now,
	}, Config{MaxDuration: 24 * time.Hour})
}
