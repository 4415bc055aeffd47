package auth_test

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/clubhub/club-gateway/internal/auth"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestIsExpired(t *testing.T) {
	now := time.Now()

	t.Run("fresh token", func(t *testing.T) {
		token := signedToken(t, now.Add(10*time.Minute))
		require.False(t, auth.IsExpired(token, now))
	})

	t.Run("expired token", func(t *testing.T) {
		token := signedToken(t, now.Add(-time.Minute))
		require.True(t, auth.IsExpired(token, now))
	})

	t.Run("decode failure is expired", func(t *testing.T) {
		require.True(t, auth.IsExpired("not-a-jwt", now))
	})

	t.Run("empty token is expired", func(t *testing.T) {
		require.True(t, auth.IsExpired("", now))
	})

	t.Run("missing exp claim is expired", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		require.True(t, auth.IsExpired(signed, now))
	})
}

func TestExpiryOf(t *testing.T) {
	expires := time.Now().Add(15 * time.Minute).Truncate(time.Second)

	exp, ok := auth.ExpiryOf(signedToken(t, expires))
	require.True(t, ok)
	require.WithinDuration(t, expires, exp, time.Second)

	_, ok = auth.ExpiryOf("garbage")
	require.False(t, ok)

	_, ok = auth.ExpiryOf("")
	require.False(t, ok)
}
