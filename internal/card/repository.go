package card

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/murasakijyuutann/transport-payment/internal/apperr"
	"github.com/murasakijyuutann/transport-payment/internal/db"
)

var (
	ErrCardNotFound = apperr.New(apperr.ErrNotFound, "card not found")
	ErrCardExists   = apperr.New(apperr.ErrInvalidState, "card already registered")
)

const cardColumns = `id, card_number, user_id, holder_name, card_type, expiry_month, expiry_year, status, is_default, created_at, updated_at`

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) FindByNumber(ctx context.Context, q db.Querier, cardNumber string) (*Card, error) {
	return r.get(ctx, q, `SELECT `+cardColumns+` FROM cards WHERE card_number = $1`, cardNumber)
}

func (r *repository) LockByNumber(ctx context.Context, q db.Querier, cardNumber string) (*Card, error) {
	return r.get(ctx, q, `SELECT `+cardColumns+` FROM cards WHERE card_number = $1 FOR UPDATE`, cardNumber)
}

func (r *repository) LockByID(ctx context.Context, q db.Querier, id int64) (*Card, error) {
	return r.get(ctx, q, `SELECT `+cardColumns+` FROM cards WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) get(ctx context.Context, q db.Querier, query string, arg interface{}) (*Card, error) {
	var c Card
	err := sqlx.GetContext(ctx, q, &c, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, q db.Querier, c *Card) error {
	if c.Status == "" {
		c.Status = StatusActive
	}

	err := q.QueryRowxContext(ctx, `
		INSERT INTO cards (card_number, user_id, holder_name, card_type, expiry_month, expiry_year, status, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, c.CardNumber, c.UserID, c.HolderName, c.CardType, c.ExpiryMonth, c.ExpiryYear, c.Status, c.IsDefault,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrCardExists
	}
	return err
}

func (r *repository) ListByUser(ctx context.Context, q db.Querier, userID int64) ([]Card, error) {
	var cards []Card
	err := sqlx.SelectContext(ctx, q, &cards, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *repository) UpdateStatus(ctx context.Context, q db.Querier, id int64, status Status) error {
	result, err := q.ExecContext(ctx, `
		UPDATE cards
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCardNotFound
	}
	return nil
}
