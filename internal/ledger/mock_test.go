package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/murasakijyuutann/transport-payment/internal/db"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetOrCreateWallet(ctx context.Context, q db.Querier, userID int64) (*Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Wallet), args.Error(1)
}

func (m *MockRepository) LockWallet(ctx context.Context, q db.Querier, userID int64) (*Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Wallet), args.Error(1)
}

func (m *MockRepository) Debit(ctx context.Context, q db.Querier, userID int64, amount decimal.Decimal, entry Entry) (*Transaction, error) {
	args := m.Called(ctx, q, userID, amount, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Transaction), args.Error(1)
}

func (m *MockRepository) Credit(ctx context.Context, q db.Querier, userID int64, amount decimal.Decimal, entry Entry) (*Transaction, error) {
	args := m.Called(ctx, q, userID, amount, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Transaction), args.Error(1)
}

func (m *MockRepository) DailySpend(ctx context.Context, q db.Querier, userID int64, day time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, q, userID, day)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRepository) ListTransactions(ctx context.Context, q db.Querier, userID int64, limit, offset int) ([]Transaction, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Transaction), args.Error(1)
}

type MockService struct {
	mock.Mock
}

func (m *MockService) Balance(ctx context.Context, userID int64) (*Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Wallet), args.Error(1)
}

func (m *MockService) TopUp(ctx context.Context, userID int64, amount decimal.Decimal) (*Transaction, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Transaction), args.Error(1)
}

func (m *MockService) Transactions(ctx context.Context, userID int64, limit, offset int) ([]Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Transaction), args.Error(1)
}

func (m *MockService) DailySpend(ctx context.Context, userID int64, day time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, day)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func decEq(s string) interface{} {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func timeEq(want time.Time) interface{} {
	return mock.MatchedBy(func(t time.Time) bool { return t.Equal(want) })
}
