package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

var rider = Identity{UserID: 42, Email: "rider@example.com", Role: RoleCustomer}

func newIssuer(t *testing.T) *Issuer {
	t.Helper()
	iss, err := NewIssuer(testSecret)
	require.NoError(t, err)
	return iss
}

func TestNewIssuerEmptySecret(t *testing.T) {
	_, err := NewIssuer("")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestAllows(t *testing.T) {
	tests := []struct {
		role, required string
		want           bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleCustomer, true},
		{RoleCustomer, RoleCustomer, true},
		{RoleCustomer, RoleAdmin, false},
		{"", RoleCustomer, false},
		{"superuser", RoleCustomer, false},
		{RoleAdmin, "superuser", false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.required, func(t *testing.T) {
			assert.Equal(t, tt.want, Allows(tt.role, tt.required))
		})
	}
}

func TestIssueAndVerify(t *testing.T) {
	iss := newIssuer(t)

	pair, err := iss.Issue(rider)
	require.NoError(t, err)

	id, err := iss.VerifyAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, rider, id)

	id, err = iss.VerifyRefresh(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, rider, id)

	_, err = iss.VerifyAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
	_, err = iss.VerifyRefresh(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestIssueRejectsUnknownRole(t *testing.T) {
	iss := newIssuer(t)

	_, err := iss.Issue(Identity{UserID: 1, Email: "a@b.c", Role: "root"})
	assert.Error(t, err)
}

func TestVerifyRejects(t *testing.T) {
	iss := newIssuer(t)
	token, err := iss.Access(Identity{UserID: 7, Email: "a@b.c", Role: RoleAdmin})
	require.NoError(t, err)

	signWith := func(t *testing.T, c *claims, method jwt.SigningMethod, key interface{}) string {
		signed, err := jwt.NewWithClaims(method, c).SignedString(key)
		require.NoError(t, err)
		return signed
	}
	valid := func(mutate func(c *claims)) *claims {
		c := &claims{
			Role: RoleCustomer,
			Use:  useAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "7",
				Issuer:    issuer,
				Audience:  []string{audience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		mutate(c)
		return c
	}

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewIssuer("other-secret")
		require.NoError(t, err)
		_, err = other.VerifyAccess(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := iss.VerifyAccess("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		iss.now = func() time.Time { return time.Now().Add(time.Hour) }
		defer func() { iss.now = time.Now }()

		_, err := iss.VerifyAccess(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		signed := signWith(t, valid(func(c *claims) { c.Issuer = "someone-else" }), jwt.SigningMethodHS256, []byte(testSecret))
		_, err := iss.VerifyAccess(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other hmac algorithm", func(t *testing.T) {
		signed := signWith(t, valid(func(*claims) {}), jwt.SigningMethodHS512, []byte(testSecret))
		_, err := iss.VerifyAccess(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		signed := signWith(t, valid(func(c *claims) { c.Role = "root" }), jwt.SigningMethodHS256, []byte(testSecret))
		_, err := iss.VerifyAccess(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("non-numeric subject", func(t *testing.T) {
		signed := signWith(t, valid(func(c *claims) { c.Subject = "rider" }), jwt.SigningMethodHS256, []byte(testSecret))
		_, err := iss.VerifyAccess(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
