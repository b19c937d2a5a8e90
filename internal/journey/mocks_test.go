package journey

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/murasakijyuutann/transport-payment/internal/card"
	"github.com/murasakijyuutann/transport-payment/internal/db"
	"github.com/murasakijyuutann/transport-payment/internal/ledger"
	"github.com/murasakijyuutann/transport-payment/internal/notify"
	"github.com/murasakijyuutann/transport-payment/internal/station"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, q db.Querier, j *Journey) error {
	return m.Called(ctx, q, j).Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, q db.Querier, id int64) (*Journey, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Journey), args.Error(1)
}

func (m *MockRepository) FindActiveByCard(ctx context.Context, q db.Querier, cardID int64) (*Journey, error) {
	args := m.Called(ctx, q, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Journey), args.Error(1)
}

func (m *MockRepository) Complete(ctx context.Context, q db.Querier, j *Journey) error {
	return m.Called(ctx, q, j).Error(0)
}

func (m *MockRepository) MarkIncomplete(ctx context.Context, q db.Querier, j *Journey) error {
	return m.Called(ctx, q, j).Error(0)
}

func (m *MockRepository) FindStaleInProgress(ctx context.Context, q db.Querier, cutoff time.Time) ([]Journey, error) {
	args := m.Called(ctx, q, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Journey), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, q db.Querier, userID int64, limit, offset int) ([]View, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]View), args.Error(1)
}

type MockCards struct {
	mock.Mock
}

func (m *MockCards) FindByNumber(ctx context.Context, q db.Querier, cardNumber string) (*card.Card, error) {
	args := m.Called(ctx, q, cardNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*card.Card), args.Error(1)
}

func (m *MockCards) LockByNumber(ctx context.Context, q db.Querier, cardNumber string) (*card.Card, error) {
	args := m.Called(ctx, q, cardNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*card.Card), args.Error(1)
}

func (m *MockCards) LockByID(ctx context.Context, q db.Querier, id int64) (*card.Card, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*card.Card), args.Error(1)
}

type MockStations struct {
	mock.Mock
}

func (m *MockStations) FindByCode(ctx context.Context, q db.Querier, code string) (*station.Station, error) {
	args := m.Called(ctx, q, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*station.Station), args.Error(1)
}

func (m *MockStations) FindByIDs(ctx context.Context, q db.Querier, ids []int64) (map[int64]*station.Station, error) {
	args := m.Called(ctx, q, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*station.Station), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) GetOrCreateWallet(ctx context.Context, q db.Querier, userID int64) (*ledger.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Wallet), args.Error(1)
}

func (m *MockLedger) LockWallet(ctx context.Context, q db.Querier, userID int64) (*ledger.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Wallet), args.Error(1)
}

func (m *MockLedger) Debit(ctx context.Context, q db.Querier, userID int64, amount decimal.Decimal, entry ledger.Entry) (*ledger.Transaction, error) {
	args := m.Called(ctx, q, userID, amount, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockLedger) DailySpend(ctx context.Context, q db.Querier, userID int64, day time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, q, userID, day)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendJourneyReceipt(ctx context.Context, r notify.JourneyReceipt) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockNotifier) SendPenaltyNotice(ctx context.Context, n notify.PenaltyNotice) error {
	return m.Called(ctx, n).Error(0)
}

type MockService struct {
	mock.Mock
}

func (m *MockService) TapIn(ctx context.Context, req TapRequest) (*TapInResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TapInResult), args.Error(1)
}

func (m *MockService) TapOut(ctx context.Context, req TapRequest) (*TapOutResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TapOutResult), args.Error(1)
}

func (m *MockService) SweepIncompleteJourneys(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockService) ActiveJourney(ctx context.Context, cardNumber string) (*View, error) {
	args := m.Called(ctx, cardNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*View), args.Error(1)
}

func (m *MockService) History(ctx context.Context, userID int64, limit, offset int) ([]View, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]View), args.Error(1)
}

func decEq(s string) interface{} {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func timeEq(want time.Time) interface{} {
	return mock.MatchedBy(func(t time.Time) bool { return t.Equal(want) })
}
