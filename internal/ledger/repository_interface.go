package ledger

import (
	"context"
	"time"

	"github.com/murasakijyuutann/transport-payment/internal/db"
	"github.com/shopspring/decimal"
)

// Repository mutates balances. Every method takes the Querier it runs on so
// callers can compose ledger writes with their own inside one transaction.
type Repository interface {
	GetOrCreateWallet(ctx context.Context, q db.Querier, userID int64) (*Wallet, error)
	LockWallet(ctx context.Context, q db.Querier, userID int64) (*Wallet, error)
	Debit(ctx context.Context, q db.Querier, userID int64, amount decimal.Decimal, entry Entry) (*Transaction, error)
	Credit(ctx context.Context, q db.Querier, userID int64, amount decimal.Decimal, entry Entry) (*Transaction, error)
	DailySpend(ctx context.Context, q db.Querier, userID int64, day time.Time) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, q db.Querier, userID int64, limit, offset int) ([]Transaction, error)
}
