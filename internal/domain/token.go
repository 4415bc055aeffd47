package domain

import "time"

// TokenPair is the backend-issued credential pair for one logical session.
// Invariant: AccessExpiresAt precedes RefreshExpiresAt.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Valid reports whether the pair carries both tokens and a sane expiry order.
func (p TokenPair) Valid() bool {
	if p.AccessToken == "" || p.RefreshToken == "" {
		return false
	}
	if p.AccessExpiresAt.IsZero() || p.RefreshExpiresAt.IsZero() {
		return true
	}
	return p.AccessExpiresAt.Before(p.RefreshExpiresAt)
}

// CredentialRecord is the server-side copy of a session's TokenPair (storage
// tier B). Both tiers, when present, must reference the same logical session.
type CredentialRecord struct {
	SessionID string    `json:"session_id"`
	Pair      TokenPair `json:"pair"`
	Remember  bool      `json:"remember"`
	SavedAt   time.Time `json:"saved_at"`
}
