package user

import (
	"context"
	"errors"
	"strings"

	"github.com/murasakijyuutann/transport-payment/internal/apperr"
	"github.com/murasakijyuutann/transport-payment/internal/auth"
	"github.com/murasakijyuutann/transport-payment/internal/db"
	"github.com/murasakijyuutann/transport-payment/internal/ledger"
	"github.com/murasakijyuutann/transport-payment/internal/logger"
)

var (
	ErrEmailExists        = apperr.New(apperr.ErrInvalidState, "email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// WalletOpener creates the rider's wallet alongside the account.
type WalletOpener interface {
	GetOrCreateWallet(ctx context.Context, q db.Querier, userID int64) (*ledger.Wallet, error)
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
}

type service struct {
	tx      db.Transactor
	repo    Repository
	wallets WalletOpener
	tokens  *auth.Issuer
}

func NewService(tx db.Transactor, repo Repository, wallets WalletOpener, tokens *auth.Issuer) Service {
	return &service{
		tx:      tx,
		repo:    repo,
		wallets: wallets,
		tokens:  tokens,
	}
}

func identity(u *User) auth.Identity {
	return auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	var user *User
	err = s.tx.WithTx(ctx, func(q db.Querier) error {
		exists, err := s.repo.EmailExists(ctx, q, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailExists
		}

		user, err = s.repo.Create(ctx, q, strings.TrimSpace(req.Name), email, passwordHash, auth.RoleCustomer)
		if err != nil {
			return err
		}

		_, err = s.wallets.GetOrCreateWallet(ctx, q, user.ID)
		return err
	})
	if err != nil {
		return nil, "", "", err
	}

	pair, err := s.tokens.Issue(identity(user))
	if err != nil {
		return nil, "", "", err
	}

	logger.Info("user registered", "user_id", user.ID)
	return user, pair.Access, pair.Refresh, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	var user *User
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		var err error
		user, err = s.repo.FindByEmail(ctx, q, strings.ToLower(strings.TrimSpace(req.Email)))
		return err
	})
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(identity(user))
	if err != nil {
		return nil, "", "", err
	}

	return user, pair.Access, pair.Refresh, nil
}

func (s *service) GetByID(ctx context.Context, userID int64) (*User, error) {
	var user *User
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		var err error
		user, err = s.repo.FindByID(ctx, q, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	id, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", nil, err
	}

	// Role and email come from the account, not the token, so a demotion
	// takes effect at the next refresh.
	user, err := s.GetByID(ctx, id.UserID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	newAccessToken, err := s.tokens.Access(identity(user))
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, user, nil
}
