package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/murasakijyuutann/transport-payment/internal/apperr"
	"github.com/murasakijyuutann/transport-payment/internal/db"
)

var ErrUserNotFound = apperr.New(apperr.ErrNotFound, "user not found")

const userColumns = `id, name, email, password_hash, role, created_at`

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Create(ctx context.Context, q db.Querier, name, email, passwordHash, role string) (*User, error) {
	var u User
	err := sqlx.GetContext(ctx, q, &u, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		name, email, passwordHash, role,
	)
	if db.IsUniqueViolation(err) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, q db.Querier, email string) (*User, error) {
	return r.get(ctx, q, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *repository) FindByID(ctx context.Context, q db.Querier, id int64) (*User, error) {
	return r.get(ctx, q, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *repository) get(ctx context.Context, q db.Querier, query string, arg interface{}) (*User, error) {
	var u User
	err := sqlx.GetContext(ctx, q, &u, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) EmailExists(ctx context.Context, q db.Querier, email string) (bool, error) {
	return db.Exists(ctx, q, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}
