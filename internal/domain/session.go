package domain

import "time"

// ExternalSession is the gateway-issued session record, JWT-encoded into the
// session cookie. It carries a copy of the current TokenPair for the lifetime
// of the browser session. Mutated only by the session adapter; the request
// pipeline reads the token store instead.
type ExternalSession struct {
	SessionID string
	Identity  Identity
	Pair      TokenPair
	Remember  bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionProjection is the caller-visible view of an ExternalSession. The
// refresh token is never projected.
type SessionProjection struct {
	User        Identity  `json:"user"`
	AccessToken string    `json:"accessToken"`
	Roles       []string  `json:"roles"`
	Provider    Provider  `json:"provider"`
	Expires     time.Time `json:"expires"`
}

// Project builds the caller-visible view of the session.
func (s ExternalSession) Project() SessionProjection {
	return SessionProjection{
		User:        s.Identity,
		AccessToken: s.Pair.AccessToken,
		Roles:       s.Identity.Roles,
		Provider:    s.Identity.Provider,
		Expires:     s.Pair.AccessExpiresAt,
	}
}
