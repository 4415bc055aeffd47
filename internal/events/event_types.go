package events

import (
	"time"

	"github.com/clubhub/club-gateway/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSignedIn           EventType = "signed_in"
	EventRegistered         EventType = "registered"
	EventOAuthBridged       EventType = "oauth_bridged"
	EventTokenRefreshed     EventType = "token_refreshed"
	EventRefreshFailed      EventType = "refresh_failed"
	EventSignedOut          EventType = "signed_out"
	EventSessionInvalidated EventType = "session_invalidated"
)

// Event represents an auth lifecycle event emitted by the gateway.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id,omitempty"`
	Provider  domain.Provider `json:"provider,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   interface{}     `json:"payload,omitempty"`
}

// SignedInPayload payload.
type SignedInPayload struct {
	Method   string `json:"method"`
	Remember bool   `json:"remember"`
}

// TokenRefreshedPayload payload.
type TokenRefreshedPayload struct {
	Trigger string `json:"trigger"`
}

// RefreshFailedPayload payload.
type RefreshFailedPayload struct {
	Reason   string `json:"reason"`
	Terminal bool   `json:"terminal"`
}

// SessionInvalidatedPayload payload.
type SessionInvalidatedPayload struct {
	Cause string `json:"cause"`
}
