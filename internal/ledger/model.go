package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string
type TransactionStatus string

const (
	TypeJourneyPayment     TransactionType = "JOURNEY_PAYMENT"
	TypeTopUp              TransactionType = "TOP_UP"
	TypePenalty            TransactionType = "PENALTY"
	TypeRefund             TransactionType = "REFUND"
	TypeDailyCapAdjustment TransactionType = "DAILY_CAP_ADJUSTMENT"

	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
	StatusRefunded  TransactionStatus = "REFUNDED"
)

// Wallet holds a user's prepaid balance.
type Wallet struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Currency  string          `db:"currency" json:"currency"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Transaction is an append-only ledger row.
type Transaction struct {
	ID           int64             `db:"id" json:"id"`
	Reference    string            `db:"reference" json:"reference"`
	UserID       int64             `db:"user_id" json:"user_id"`
	WalletID     int64             `db:"wallet_id" json:"wallet_id"`
	JourneyID    *int64            `db:"journey_id" json:"journey_id,omitempty"`
	CardID       *int64            `db:"card_id" json:"card_id,omitempty"`
	Type         TransactionType   `db:"type" json:"type"`
	Amount       decimal.Decimal   `db:"amount" json:"amount"`
	Status       TransactionStatus `db:"status" json:"status"`
	Description  string            `db:"description" json:"description"`
	BalanceAfter decimal.Decimal   `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
}

// Entry describes the ledger row written alongside a balance change.
type Entry struct {
	Type        TransactionType
	JourneyID   *int64
	CardID      *int64
	Description string
	// At is the creation timestamp; zero means now.
	At time.Time
}

type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type DailySpendResponse struct {
	Date       string          `json:"date" example:"2024-05-01"`
	Spent      decimal.Decimal `json:"spent"`
	DailyCap   decimal.Decimal `json:"daily_cap"`
	CapReached bool            `json:"cap_reached"`
}
