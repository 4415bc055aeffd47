package store

import (
	"context"
	"errors"
	"time"

	"github.com/clubhub/club-gateway/internal/config"
	"github.com/clubhub/club-gateway/internal/domain"
)

// CookieJar abstracts the browser cookie tier (tier A).
type CookieJar interface {
	Get(name string) string
	Set(name, value string, ttl time.Duration)
	Clear(name string)
}

// CredentialRepository persists tier-B credential records keyed by session id.
// Get returns (nil, nil) when no record exists.
type CredentialRepository interface {
	Put(ctx context.Context, record domain.CredentialRecord, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*domain.CredentialRecord, error)
	Delete(ctx context.Context, sessionID string) error
}

// ErrInvalidPair rejects saves of malformed token pairs.
var ErrInvalidPair = errors.New("malformed token pair")

// TokenStore keeps one logical session's TokenPair duplicated across the
// cookie tier and a server-side tier. Reads prefer cookies and fall back to
// tier B, repairing the cookie tier on the way out. Writes hit tier B first:
// if that write fails the save is aborted and the caller must treat the
// session as unauthenticated.
type TokenStore struct {
	repo             CredentialRepository
	cookies          config.CookieConfig
	sessionScopedTTL time.Duration
}

// New builds a TokenStore over the given tier-B repository.
func New(repo CredentialRepository, cookies config.CookieConfig, sessionScopedTTL time.Duration) *TokenStore {
	if sessionScopedTTL <= 0 {
		sessionScopedTTL = 12 * time.Hour
	}
	return &TokenStore{repo: repo, cookies: cookies, sessionScopedTTL: sessionScopedTTL}
}

// Save writes the pair to both tiers. Remember selects the tier-B lifetime:
// durable (refresh TTL) or session-scoped.
func (s *TokenStore) Save(ctx context.Context, jar CookieJar, record domain.CredentialRecord) error {
	if !record.Pair.Valid() {
		return ErrInvalidPair
	}

	ttl := s.cookies.RefreshTTL()
	if !record.Remember {
		ttl = s.sessionScopedTTL
	}
	record.SavedAt = time.Now()

	if err := s.repo.Put(ctx, record, ttl); err != nil {
		return err
	}

	jar.Set(s.cookies.AccessName, record.Pair.AccessToken, s.cookies.AccessTTL())
	jar.Set(s.cookies.RefreshName, record.Pair.RefreshToken, s.cookies.RefreshTTL())
	return nil
}

// Access returns the current access token, if any.
func (s *TokenStore) Access(ctx context.Context, jar CookieJar, sessionID string) (string, bool) {
	if token := jar.Get(s.cookies.AccessName); token != "" {
		return token, true
	}

	record := s.lookup(ctx, sessionID)
	if record == nil || record.Pair.AccessToken == "" {
		return "", false
	}
	// read-repair the cookie tier rather than trusting either tier blindly
	jar.Set(s.cookies.AccessName, record.Pair.AccessToken, s.cookies.AccessTTL())
	return record.Pair.AccessToken, true
}

// Refresh returns the current refresh token, if any.
func (s *TokenStore) Refresh(ctx context.Context, jar CookieJar, sessionID string) (string, bool) {
	if token := jar.Get(s.cookies.RefreshName); token != "" {
		return token, true
	}

	record := s.lookup(ctx, sessionID)
	if record == nil || record.Pair.RefreshToken == "" {
		return "", false
	}
	jar.Set(s.cookies.RefreshName, record.Pair.RefreshToken, s.cookies.RefreshTTL())
	return record.Pair.RefreshToken, true
}

// Record returns the full tier-B credential record, if any.
func (s *TokenStore) Record(ctx context.Context, sessionID string) (*domain.CredentialRecord, bool) {
	record := s.lookup(ctx, sessionID)
	return record, record != nil
}

// Clear removes both cookies and the tier-B record. Idempotent and
// best-effort: a missing or unreachable tier never blocks sign-out.
func (s *TokenStore) Clear(ctx context.Context, jar CookieJar, sessionID string) {
	jar.Clear(s.cookies.AccessName)
	jar.Clear(s.cookies.RefreshName)
	if sessionID != "" {
		_ = s.repo.Delete(ctx, sessionID)
	}
}

func (s *TokenStore) lookup(ctx context.Context, sessionID string) *domain.CredentialRecord {
	if sessionID == "" {
		return nil
	}
	record, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil
	}
	return record
}
