package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/murasakijyuutann/transport-payment/internal/db"
	"github.com/murasakijyuutann/transport-payment/internal/logger"
	"github.com/murasakijyuutann/transport-payment/internal/metrics"
)

// Service exposes the ledger operations that run in their own transaction.
type Service interface {
	Balance(ctx context.Context, userID int64) (*Wallet, error)
	TopUp(ctx context.Context, userID int64, amount decimal.Decimal) (*Transaction, error)
	Transactions(ctx context.Context, userID int64, limit, offset int) ([]Transaction, error)
	DailySpend(ctx context.Context, userID int64, day time.Time) (decimal.Decimal, error)
}

type service struct {
	tx   db.Transactor
	repo Repository
}

func NewService(tx db.Transactor, repo Repository) Service {
	return &service{tx: tx, repo: repo}
}

func (s *service) Balance(ctx context.Context, userID int64) (*Wallet, error) {
	var w *Wallet
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		var err error
		w, err = s.repo.GetOrCreateWallet(ctx, q, userID)
		return err
	})
	return w, err
}

func (s *service) TopUp(ctx context.Context, userID int64, amount decimal.Decimal) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var txn *Transaction
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		var err error
		txn, err = s.repo.Credit(ctx, q, userID, amount.Round(2), Entry{
			Type:        TypeTopUp,
			Description: "Balance top-up",
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWalletTopUp(amount.InexactFloat64())
	logger.Info("wallet topped up",
		"user_id", userID,
		"amount", txn.Amount.StringFixed(2),
		"balance", txn.BalanceAfter.StringFixed(2),
	)
	return txn, nil
}

func (s *service) Transactions(ctx context.Context, userID int64, limit, offset int) ([]Transaction, error) {
	var txs []Transaction
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		var err error
		txs, err = s.repo.ListTransactions(ctx, q, userID, limit, offset)
		return err
	})
	return txs, err
}

func (s *service) DailySpend(ctx context.Context, userID int64, day time.Time) (decimal.Decimal, error) {
	var spent decimal.Decimal
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		var err error
		spent, err = s.repo.DailySpend(ctx, q, userID, day)
		return err
	})
	return spent, err
}
