package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/parksense/pkg/database/queries"
)

func TestService_GenerateAndValidate(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token, err := svc.GenerateToken(7, "operator")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "operator", claims.Username)
	assert.Equal(t, DefaultIssuer, claims.Issuer)
	assert.Equal(t, time.Hour, svc.Duration())
}

func TestService_ValidateToken_Invalid(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	_, err := svc.ValidateToken("invalid-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewService("other-secret", time.Hour).GenerateToken(1, "x")
	require.NoError(t, err)
	_, err = svc.ValidateToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := NewServiceWithIssuer("test-secret", time.Hour, "someone-else").GenerateToken(1, "x")
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	svc := NewService("test-secret", -time.Hour)

	token, err := svc.GenerateToken(1, "operator")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestService_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "x"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("mypassword123")
	require.NoError(t, err)

	assert.True(t, CheckPassword("mypassword123", hash))
	assert.False(t, CheckPassword("wrongpassword", hash))
}

type fakeOperators struct {
	ops map[string]*queries.Operator
	err error
}

func (f *fakeOperators) GetByUsername(_ context.Context, username string) (*queries.Operator, error) {
	if f.err != nil {
		return nil, f.err
	}
	op, ok := f.ops[username]
	if !ok {
		return nil, queries.ErrOperatorNotFound
	}
	return op, nil
}

func TestUserStore_Authenticate(t *testing.T) {
	adminHash, err := HashPassword("admin-pass")
	require.NoError(t, err)
	opHash, err := HashPassword("op-pass")
	require.NoError(t, err)

	store := NewUserStore("admin", adminHash, &fakeOperators{ops: map[string]*queries.Operator{
		"maria": {ID: 3, Username: "maria", PasswordHash: opHash},
	}})
	ctx := context.Background()

	user, err := store.Authenticate(ctx, "admin", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	_, err = store.Authenticate(ctx, "admin", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user, err = store.Authenticate(ctx, "maria", "op-pass")
	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)

	_, err = store.Authenticate(ctx, "maria", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = store.Authenticate(ctx, "ghost", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserStore_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewUserStore("admin", "", nil).Authenticate(ctx, "admin", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	boom := errors.New("db down")
	_, err = NewUserStore("admin", "", &fakeOperators{err: boom}).Authenticate(ctx, "maria", "x")
	assert.ErrorIs(t, err, boom)
}
