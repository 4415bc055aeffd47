package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/clubhub/club-gateway/internal/domain"
)

// SessionCodec signs and verifies the gateway session JWT (the
// ExternalSession carried in the session cookie).
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionCodec builds a new codec.
func NewSessionCodec(secret string, ttl time.Duration) *SessionCodec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionCodec{secret: []byte(secret), ttl: ttl}
}

// TTL returns the session lifetime applied at encode time.
func (sc *SessionCodec) TTL() time.Duration {
	return sc.ttl
}

// sessionClaims describes the session JWT payload.
type sessionClaims struct {
	SessionID        string          `json:"sid"`
	Identity         domain.Identity `json:"identity"`
	AccessToken      string          `json:"access_token"`
	RefreshToken     string          `json:"refresh_token"`
	AccessExpiresAt  int64           `json:"access_expires_at"`
	RefreshExpiresAt int64           `json:"refresh_expires_at"`
	Remember         bool            `json:"remember"`
	jwt.RegisteredClaims
}

// Encode signs the session into a compact JWT.
func (sc *SessionCodec) Encode(sess domain.ExternalSession) (string, error) {
	issued := sess.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	expires := sess.ExpiresAt
	if expires.IsZero() {
		expires = issued.Add(sc.ttl)
	}

	claims := &sessionClaims{
		SessionID:        sess.SessionID,
		Identity:         sess.Identity,
		AccessToken:      sess.Pair.AccessToken,
		RefreshToken:     sess.Pair.RefreshToken,
		AccessExpiresAt:  sess.Pair.AccessExpiresAt.Unix(),
		RefreshExpiresAt: sess.Pair.RefreshExpiresAt.Unix(),
		Remember:         sess.Remember,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.Identity.ID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(issued),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(sc.secret)
}

// Decode validates the JWT and reconstructs the session.
func (sc *SessionCodec) Decode(raw string) (*domain.ExternalSession, error) {
	parsed, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return sc.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid session claims")
	}

	sess := &domain.ExternalSession{
		SessionID: claims.SessionID,
		Identity:  claims.Identity,
		Pair: domain.TokenPair{
			AccessToken:      claims.AccessToken,
			RefreshToken:     claims.RefreshToken,
			AccessExpiresAt:  time.Unix(claims.AccessExpiresAt, 0),
			RefreshExpiresAt: time.Unix(claims.RefreshExpiresAt, 0),
		},
		Remember: claims.Remember,
	}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}
