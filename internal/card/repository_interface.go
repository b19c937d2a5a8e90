package card

import (
	"context"

	"github.com/murasakijyuutann/transport-payment/internal/db"
)

type Repository interface {
	FindByNumber(ctx context.Context, q db.Querier, cardNumber string) (*Card, error)
	// LockByNumber and LockByID hold the card row until the transaction ends,
	// serializing journey state changes per card.
	LockByNumber(ctx context.Context, q db.Querier, cardNumber string) (*Card, error)
	LockByID(ctx context.Context, q db.Querier, id int64) (*Card, error)
	Create(ctx context.Context, q db.Querier, c *Card) error
	ListByUser(ctx context.Context, q db.Querier, userID int64) ([]Card, error)
	UpdateStatus(ctx context.Context, q db.Querier, id int64, status Status) error
}
