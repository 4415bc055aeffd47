package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clubhub/club-gateway/internal/auth"
	"github.com/clubhub/club-gateway/internal/backend"
	"github.com/clubhub/club-gateway/internal/config"
	"github.com/clubhub/club-gateway/internal/domain"
	"github.com/clubhub/club-gateway/internal/events"
	"github.com/clubhub/club-gateway/internal/store"
	apperrors "github.com/clubhub/club-gateway/pkg/util/errorutil"
)

// ProfileVerifier validates a provider-issued id_token and returns the
// profile it attests.
type ProfileVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*domain.OAuthProfile, error)
}

// SessionService is the session adapter: it keeps the gateway session cookie
// (the ExternalSession) and the token store describing the same logical
// session, and never lets one be cleared without the other.
type SessionService struct {
	exchanger     backend.Exchanger
	store         *store.TokenStore
	codec         *auth.SessionCodec
	google        ProfileVerifier
	dispatcher    events.Dispatcher
	cookies       config.CookieConfig
	sessionCookie string
	logger        *zap.Logger
}

// SessionDependencies encapsulates requirements for the session service.
type SessionDependencies struct {
	Exchanger  backend.Exchanger
	Store      *store.TokenStore
	Codec      *auth.SessionCodec
	Google     ProfileVerifier
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewSessionService builds the service.
func NewSessionService(cfg config.Config, deps SessionDependencies) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		exchanger:     deps.Exchanger,
		store:         deps.Store,
		codec:         deps.Codec,
		google:        deps.Google,
		dispatcher:    deps.Dispatcher,
		cookies:       cfg.Cookies,
		sessionCookie: cfg.Session.CookieName,
		logger:        logger,
	}
}

// SignInInput carries the login payload.
type SignInInput struct {
	EmailOrUsername string
	Password        string
	Remember        bool
}

// SignIn exchanges credentials and opens a session. Credential-level errors
// pass through untouched and never disturb stored tokens.
func (s *SessionService) SignIn(ctx context.Context, jar store.CookieJar, in SignInInput) (*domain.SessionProjection, error) {
	result, err := s.exchanger.Login(ctx, in.EmailOrUsername, in.Password)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, jar, result, in.Remember, events.EventSignedIn, "password")
}

// Register creates an account on the backend and opens a session.
func (s *SessionService) Register(ctx context.Context, jar store.CookieJar, fields backend.RegisterFields, remember bool) (*domain.SessionProjection, error) {
	result, err := s.exchanger.Register(ctx, fields)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, jar, result, remember, events.EventRegistered, "password")
}

// BridgeOAuth turns a third-party-authenticated profile into a backend
// session. Google profiles are verified against the posted id_token when a
// verifier is configured; other providers carry no OIDC id_token and the
// posted profile is forwarded as-is.
func (s *SessionService) BridgeOAuth(ctx context.Context, jar store.CookieJar, provider domain.Provider, profile domain.OAuthProfile, rawIDToken string, remember bool) (*domain.SessionProjection, error) {
	if !domain.KnownProvider(provider) || provider == domain.ProviderLocal {
		return nil, apperrors.NewValidationError("unsupported provider", map[string]any{"provider": string(provider)})
	}

	if provider == domain.ProviderGoogle && s.google != nil && rawIDToken != "" {
		verified, err := s.google.Verify(ctx, rawIDToken)
		if err != nil {
			return nil, apperrors.NewInvalidCredentials("id_token rejected")
		}
		profile = *verified
	}

	result, err := s.exchanger.ExchangeOAuth(ctx, provider, profile)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, jar, result, remember, events.EventOAuthBridged, string(provider))
}

// Probe projects the current session for the caller. The refresh token is
// never part of the projection. When the token store holds a newer pair
// (rotated by the request pipeline) the session cookie is brought up to date.
func (s *SessionService) Probe(ctx context.Context, jar store.CookieJar) (*domain.SessionProjection, error) {
	sess, err := s.current(jar)
	if err != nil {
		return nil, err
	}

	if record, ok := s.store.Record(ctx, sess.SessionID); ok && record.Pair.AccessToken != sess.Pair.AccessToken {
		sess.Pair = record.Pair
		s.Rotate(jar, sess, record.Pair)
	}

	proj := sess.Project()
	return &proj, nil
}

// Rotate re-issues the session cookie carrying the new pair. Called after
// every refresh so the session tracks the current tokens.
func (s *SessionService) Rotate(jar store.CookieJar, sess *domain.ExternalSession, pair domain.TokenPair) {
	sess.Pair = pair
	token, err := s.codec.Encode(*sess)
	if err != nil {
		s.logger.Error("session re-encode failed", zap.Error(err))
		return
	}
	jar.Set(s.sessionCookie, token, s.codec.TTL())
}

// SignOut clears the token store and the session cookie together and emits
// the sign-out event.
func (s *SessionService) SignOut(ctx context.Context, jar store.CookieJar) {
	sessionID, userID := "", ""
	if sess, err := s.current(jar); err == nil {
		sessionID, userID = sess.SessionID, sess.Identity.ID
	}
	s.clear(ctx, jar, sessionID)
	s.publish(ctx, events.EventSignedOut, sessionID, userID, "", nil)
}

// Invalidate tears the session down after a terminal auth failure. Store and
// session cookie are cleared in the same call; a state with one cleared and
// the other stale is unreachable.
func (s *SessionService) Invalidate(ctx context.Context, jar store.CookieJar, sessionID, cause string) {
	s.clear(ctx, jar, sessionID)
	s.publish(ctx, events.EventSessionInvalidated, sessionID, "", "", events.SessionInvalidatedPayload{Cause: cause})
}

// Publish exposes event emission to collaborating services.
func (s *SessionService) Publish(ctx context.Context, eventType events.EventType, sessionID, userID string, provider domain.Provider, payload interface{}) {
	s.publish(ctx, eventType, sessionID, userID, provider, payload)
}

func (s *SessionService) open(ctx context.Context, jar store.CookieJar, result *backend.AuthResult, remember bool, eventType events.EventType, method string) (*domain.SessionProjection, error) {
	sessionID := uuid.NewString()
	now := time.Now()
	pair := fillExpiry(result.Pair, s.cookies, now)

	record := domain.CredentialRecord{SessionID: sessionID, Pair: pair, Remember: remember}
	if err := s.store.Save(ctx, jar, record); err != nil {
		// partial-success is not acceptable: abort and stay unauthenticated
		s.store.Clear(ctx, jar, sessionID)
		return nil, apperrors.NewInternalError(err)
	}

	sess := domain.ExternalSession{
		SessionID: sessionID,
		Identity:  result.Identity,
		Pair:      pair,
		Remember:  remember,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.codec.TTL()),
	}
	token, err := s.codec.Encode(sess)
	if err != nil {
		s.store.Clear(ctx, jar, sessionID)
		return nil, apperrors.NewInternalError(err)
	}
	jar.Set(s.sessionCookie, token, s.codec.TTL())

	s.publish(ctx, eventType, sessionID, result.Identity.ID, result.Identity.Provider,
		events.SignedInPayload{Method: method, Remember: remember})

	proj := sess.Project()
	return &proj, nil
}

func (s *SessionService) current(jar store.CookieJar) (*domain.ExternalSession, error) {
	raw := jar.Get(s.sessionCookie)
	if raw == "" {
		return nil, apperrors.NewUnauthorized("no session")
	}
	sess, err := s.codec.Decode(raw)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid session")
	}
	return sess, nil
}

func (s *SessionService) clear(ctx context.Context, jar store.CookieJar, sessionID string) {
	s.store.Clear(ctx, jar, sessionID)
	jar.Clear(s.sessionCookie)
}

func (s *SessionService) publish(ctx context.Context, eventType events.EventType, sessionID, userID string, provider domain.Provider, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		UserID:    userID,
		Provider:  provider,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// fillExpiry back-fills pair expirations from the tokens' own exp claims,
// falling back to the configured cookie lifetimes.
func fillExpiry(pair domain.TokenPair, cookies config.CookieConfig, now time.Time) domain.TokenPair {
	if pair.AccessExpiresAt.IsZero() {
		if exp, ok := auth.ExpiryOf(pair.AccessToken); ok {
			pair.AccessExpiresAt = exp
		} else {
			pair.AccessExpiresAt = now.Add(cookies.AccessTTL())
		}
	}
	if pair.RefreshExpiresAt.IsZero() {
		if exp, ok := auth.ExpiryOf(pair.RefreshToken); ok {
			pair.RefreshExpiresAt = exp
		} else {
			pair.RefreshExpiresAt = now.Add(cookies.RefreshTTL())
		}
	}
	return pair
}
