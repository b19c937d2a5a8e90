package card

import "time"

type Status string
type Type string

const (
	StatusActive  Status = "ACTIVE"
	StatusBlocked Status = "BLOCKED"
	StatusExpired Status = "EXPIRED"

	TypeVisa       Type = "VISA"
	TypeMastercard Type = "MASTERCARD"
	TypeAmex       Type = "AMEX"
	TypeDebit      Type = "DEBIT"
)

type Card struct {
	ID          int64     `db:"id" json:"id"`
	CardNumber  string    `db:"card_number" json:"card_number"`
	UserID      int64     `db:"user_id" json:"user_id"`
	HolderName  string    `db:"holder_name" json:"holder_name"`
	CardType    Type      `db:"card_type" json:"card_type"`
	ExpiryMonth string    `db:"expiry_month" json:"expiry_month"`
	ExpiryYear  string    `db:"expiry_year" json:"expiry_year"`
	Status      Status    `db:"status" json:"status"`
	IsDefault   bool      `db:"is_default" json:"is_default"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (c *Card) Active() bool {
	return c.Status == StatusActive
}

type RegisterCardRequest struct {
	CardNumber  string `json:"card_number" binding:"required,min=4,max=32"`
	HolderName  string `json:"holder_name" binding:"required"`
	CardType    Type   `json:"card_type" binding:"required,oneof=VISA MASTERCARD AMEX DEBIT"`
	ExpiryMonth string `json:"expiry_month" binding:"required,len=2,numeric"`
	ExpiryYear  string `json:"expiry_year" binding:"required,len=4,numeric"`
	IsDefault   bool   `json:"is_default"`
}
