package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domuser "example.com/shop-demo/internal/domain/user"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.GenerateToken(&domuser.User{
		ID:        3,
		FirstName: "Demo",
		LastName:  "User",
		Email:     "demo@gmail.com",
	}, "token-id-1")
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, int64(3), claims.UserID)
	require.Equal(t, "token-id-1", claims.TokenID)
	require.Equal(t, "Demo User", claims.Name)
	require.Equal(t, "demo@gmail.com", claims.Email)
}

func TestJWTService_RejectsForeignSecretAndExpiry(t *testing.T) {
	u := &domuser.User{ID: 1, Email: "a@b.c"}

	other, err := NewJWTService("other-secret", time.Hour).GenerateToken(u, "x")
	require.NoError(t, err)
	_, err = NewJWTService("test-secret", time.Hour).ParseToken(other)
	require.Error(t, err)

	expired, err := NewJWTService("test-secret", -time.Minute).GenerateToken(u, "x")
	require.NoError(t, err)
	_, err = NewJWTService("test-secret", time.Hour).ParseToken(expired)
	require.Error(t, err)
}

func TestJWTService_RequiresTokenID(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	token, err := svc.GenerateToken(&domuser.User{ID: 1}, "")
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	require.Error(t, err)
}

func TestBcryptService(t *testing.T) {
	svc := NewBcryptService(4)

	hash, err := svc.Hash("Password@123")
	require.NoError(t, err)
	require.NotEqual(t, "Password@123", hash)

	require.NoError(t, svc.Compare(hash, "Password@123"))
	require.ErrorIs(t, svc.Compare(hash, "password@123"), domuser.ErrInvalidPassword)

	err = svc.Compare("not-a-bcrypt-hash", "Password@123")
	require.Error(t, err)
	require.NotErrorIs(t, err, domuser.ErrInvalidPassword)
}

func TestBcryptService_OutOfRangeCostUsesDefault(t *testing.T) {
	require.Equal(t, bcrypt.DefaultCost, NewBcryptService(0).cost)
	require.Equal(t, bcrypt.DefaultCost, NewBcryptService(99).cost)
	require.Equal(t, bcrypt.MinCost, NewBcryptService(bcrypt.MinCost).cost)
}

func TestJWTService_RejectsForeignIssuer(t *testing.T) {
	claims := jwtClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewJWTService("test-secret", time.Hour).ParseToken(token)
	require.Error(t, err)
}
