package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Accounts are either riders or operators. Operators can do everything a
// rider can, plus run the admin endpoints.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

var roleRank = map[string]int{
	RoleCustomer: 1,
	RoleAdmin:    2,
}

// Allows reports whether role grants at least the rights of required.
// Unknown roles grant nothing.
func Allows(role, required string) bool {
	have, ok := roleRank[role]
	if !ok {
		return false
	}
	need, ok := roleRank[required]
	return ok && have >= need
}

const (
	issuer   = "transit-pay-api"
	audience = "transit-pay-riders"

	useAccess  = "access"
	useRefresh = "refresh"
)

var (
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrEmptyJWTSecret   = errors.New("jwt secret cannot be empty")
)

// Identity is the signed-in account a token speaks for.
type Identity struct {
	UserID int64
	Email  string
	Role   string
}

// claims carries the user id in the standard subject.
type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Use   string `json:"use"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access  string
	Refresh string
}

// Issuer signs and verifies HS256 tokens for riders and operators.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptyJWTSecret
	}
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  15 * time.Minute,
		refreshTTL: 7 * 24 * time.Hour,
		now:        time.Now,
	}, nil
}

func (i *Issuer) Issue(id Identity) (TokenPair, error) {
	access, err := i.sign(id, useAccess, i.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.sign(id, useRefresh, i.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (i *Issuer) Access(id Identity) (string, error) {
	return i.sign(id, useAccess, i.accessTTL)
}

func (i *Issuer) VerifyAccess(token string) (Identity, error) {
	return i.verify(token, useAccess)
}

func (i *Issuer) VerifyRefresh(token string) (Identity, error) {
	return i.verify(token, useRefresh)
}

func (i *Issuer) sign(id Identity, use string, ttl time.Duration) (string, error) {
	if _, ok := roleRank[id.Role]; !ok {
		return "", fmt.Errorf("unknown role %q", id.Role)
	}

	now := i.now()
	c := &claims{
		Email: id.Email,
		Role:  id.Role,
		Use:   use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			Issuer:    issuer,
			Audience:  []string{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}

func (i *Issuer) verify(tokenString, use string) (Identity, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(tokenString, c,
		func(*jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if c.Use != use {
		return Identity{}, ErrInvalidTokenType
	}
	if _, ok := roleRank[c.Role]; !ok {
		return Identity{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: userID, Email: c.Email, Role: c.Role}, nil
}
