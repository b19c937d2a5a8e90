package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/murasakijyuutann/transport-payment/internal/apperr"
	"github.com/murasakijyuutann/transport-payment/internal/db"
)

var (
	ErrInsufficientFunds = apperr.New(apperr.ErrInsufficientBalance, "insufficient funds")
	ErrInvalidAmount     = apperr.New(apperr.ErrInvalidAmount, "amount must be positive")
)

const walletColumns = `id, user_id, balance, currency, created_at, updated_at`

type repository struct {
	loc *time.Location
}

// NewRepository returns a ledger repository that buckets daily spend by
// calendar date in loc.
func NewRepository(loc *time.Location) Repository {
	if loc == nil {
		loc = time.UTC
	}
	return &repository{loc: loc}
}

func (r *repository) GetOrCreateWallet(ctx context.Context, q db.Querier, userID int64) (*Wallet, error) {
	return r.wallet(ctx, q, userID, "")
}

// LockWallet takes the row lock that serializes balance changes and
// daily-spend reads for one user until the surrounding transaction ends.
func (r *repository) LockWallet(ctx context.Context, q db.Querier, userID int64) (*Wallet, error) {
	return r.wallet(ctx, q, userID, " FOR UPDATE")
}

// wallet reads the user's wallet, opening it first if it does not exist yet.
// Two transactions opening the same wallet both end up reading the one row:
// the second insert waits for the first to commit and then does nothing.
func (r *repository) wallet(ctx context.Context, q db.Querier, userID int64, lock string) (*Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1` + lock

	w := &Wallet{}
	err := sqlx.GetContext(ctx, q, w, query, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if _, err := q.ExecContext(ctx,
		`INSERT INTO wallets (user_id)
		 VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID,
	); err != nil {
		return nil, err
	}

	if err := sqlx.GetContext(ctx, q, w, query, userID); err != nil {
		return nil, err
	}
	return w, nil
}

// Debit subtracts amount and records the entry. A zero amount is accepted so
// a fully capped journey still leaves its ledger row.
func (r *repository) Debit(ctx context.Context, q db.Querier, userID int64, amount decimal.Decimal, entry Entry) (*Transaction, error) {
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	return r.apply(ctx, q, userID, amount.Neg(), amount, entry)
}

func (r *repository) Credit(ctx context.Context, q db.Querier, userID int64, amount decimal.Decimal, entry Entry) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return r.apply(ctx, q, userID, amount, amount, entry)
}

func (r *repository) apply(ctx context.Context, q db.Querier, userID int64, delta, amount decimal.Decimal, entry Entry) (*Transaction, error) {
	w, err := r.LockWallet(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}

	newBalance := w.Balance.Add(delta)
	if newBalance.IsNegative() {
		return nil, ErrInsufficientFunds
	}

	_, err = q.ExecContext(ctx,
		`UPDATE wallets
		 SET balance = $1, updated_at = NOW()
		 WHERE id = $2`,
		newBalance, w.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update wallet: %w", err)
	}

	at := entry.At
	if at.IsZero() {
		at = time.Now()
	}

	txn := &Transaction{
		Reference:    uuid.NewString(),
		UserID:       userID,
		WalletID:     w.ID,
		JourneyID:    entry.JourneyID,
		CardID:       entry.CardID,
		Type:         entry.Type,
		Amount:       amount,
		Status:       StatusCompleted,
		Description:  entry.Description,
		BalanceAfter: newBalance,
		CreatedAt:    at,
	}

	err = q.QueryRowxContext(ctx,
		`INSERT INTO transactions (reference, user_id, wallet_id, journey_id, card_id, type, amount, status, description, balance_after, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		txn.Reference, txn.UserID, txn.WalletID, txn.JourneyID, txn.CardID,
		txn.Type, txn.Amount, txn.Status, txn.Description, txn.BalanceAfter, txn.CreatedAt,
	).Scan(&txn.ID)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	return txn, nil
}

// DailySpend sums completed journey payments created on day's calendar date.
func (r *repository) DailySpend(ctx context.Context, q db.Querier, userID int64, day time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := sqlx.GetContext(ctx, q, &total, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1
		  AND type = 'JOURNEY_PAYMENT'
		  AND status = 'COMPLETED'
		  AND DATE(created_at AT TIME ZONE $2) = $3
	`, userID, r.loc.String(), day.In(r.loc).Format(time.DateOnly))
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *repository) ListTransactions(ctx context.Context, q db.Querier, userID int64, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var txs []Transaction
	err := sqlx.SelectContext(ctx, q, &txs, `
		SELECT id, reference, user_id, wallet_id, journey_id, card_id, type, amount, status, description, balance_after, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return txs, nil
}
