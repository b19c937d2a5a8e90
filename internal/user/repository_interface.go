package user

import (
	"context"

	"github.com/murasakijyuutann/transport-payment/internal/db"
)

type Repository interface {
	Create(ctx context.Context, q db.Querier, name, email, passwordHash, role string) (*User, error)
	FindByEmail(ctx context.Context, q db.Querier, email string) (*User, error)
	FindByID(ctx context.Context, q db.Querier, id int64) (*User, error)
	EmailExists(ctx context.Context, q db.Querier, email string) (bool, error)
}
