package auth

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// IsExpired reports whether the token's embedded exp claim has passed.
// Tokens that cannot be decoded count as expired (fail closed). The
// signature is not checked here; the backend is the verifying party.
func IsExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return !now.Before(exp.Time)
}

// ExpiryOf extracts the token's exp claim. The zero time and false signal a
// token without a decodable expiry.
func ExpiryOf(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
