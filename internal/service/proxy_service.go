package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/clubhub/club-gateway/internal/auth"
	"github.com/clubhub/club-gateway/internal/backend"
	"github.com/clubhub/club-gateway/internal/config"
	"github.com/clubhub/club-gateway/internal/domain"
	"github.com/clubhub/club-gateway/internal/events"
	"github.com/clubhub/club-gateway/internal/observability"
	"github.com/clubhub/club-gateway/internal/store"
	apperrors "github.com/clubhub/club-gateway/pkg/util/errorutil"
)

// ProxyRequest describes one outbound call through the pipeline.
type ProxyRequest struct {
	Method        string
	Endpoint      string
	Body          []byte
	Authorization string
}

// ProxyService is the authenticated request pipeline: attach the current
// access token, send through the relay, observe 401s, run one coordinated
// refresh per burst, replay the original request at most once, and tear the
// session down on terminal refresh failures.
type ProxyService struct {
	store    *store.TokenStore
	relay    backend.Relay
	exchange backend.Exchanger
	sessions *SessionService
	metrics  *observability.Metrics
	cookies  config.CookieConfig
	logger   *zap.Logger
	group    singleflight.Group
}

// ProxyDependencies encapsulates requirements for the proxy service.
type ProxyDependencies struct {
	Store     *store.TokenStore
	Relay     backend.Relay
	Exchanger backend.Exchanger
	Sessions  *SessionService
	Metrics   *observability.Metrics
	Logger    *zap.Logger
}

// NewProxyService builds the service.
func NewProxyService(cfg config.Config, deps ProxyDependencies) *ProxyService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProxyService{
		store:    deps.Store,
		relay:    deps.Relay,
		exchange: deps.Exchanger,
		sessions: deps.Sessions,
		metrics:  deps.Metrics,
		cookies:  cfg.Cookies,
		logger:   logger,
	}
}

// Forward runs one request through the pipeline. A nil session means the
// caller is unauthenticated; such requests go through bare (some endpoints
// are public).
func (p *ProxyService) Forward(ctx context.Context, jar store.CookieJar, sess *domain.ExternalSession, req ProxyRequest) (*backend.Envelope, error) {
	sessionID := ""
	if sess != nil {
		sessionID = sess.SessionID
	}

	token := req.Authorization
	if token == "" {
		token, _ = p.store.Access(ctx, jar, sessionID)
	}

	// a token that is expired by its own exp claim goes straight through the
	// refresh path instead of bouncing off the backend first; tokens without
	// a decodable expiry are sent as-is and rely on the 401 observer
	if exp, ok := auth.ExpiryOf(token); ok && sess != nil && !time.Now().Before(exp) {
		pair, err := p.Refresh(ctx, jar, sess, token, "expired")
		switch {
		case err == nil:
			token = pair.AccessToken
		case apperrors.HasCode(err, apperrors.CodeSessionExpired):
			return nil, err
		case apperrors.HasCode(err, apperrors.CodeNetworkFailure):
			// transient: send anyway and let the backend decide
		default:
			return nil, err
		}
	}

	env := p.relay.Do(ctx, req.Method, req.Endpoint, req.Body, token)
	if env.Status != http.StatusUnauthorized || sess == nil {
		return env, nil
	}

	pair, err := p.Refresh(ctx, jar, sess, token, "unauthorized")
	if err != nil {
		return nil, err
	}

	// replay the original request exactly once
	return p.relay.Do(ctx, req.Method, req.Endpoint, req.Body, pair.AccessToken), nil
}

// refreshOutcome carries a flight result: the pair now current for the
// session and whether the flight actually called the backend.
type refreshOutcome struct {
	pair      domain.TokenPair
	exchanged bool
}

// Refresh runs one coordinated refresh for the session. Concurrent callers
// within the same window share a single backend call and its result. The
// cookie tier is a per-request snapshot, so tier B decides whether the
// caller's pair is actually stale: a caller whose cookies predate a rotation
// another request already performed adopts the stored pair instead of
// replaying the rotated-out refresh token. A backend rejection is terminal:
// the whole session is invalidated before the error is returned. Transport
// failures leave the store untouched.
func (p *ProxyService) Refresh(ctx context.Context, jar store.CookieJar, sess *domain.ExternalSession, staleAccess, trigger string) (domain.TokenPair, error) {
	if sess == nil || sess.SessionID == "" {
		return domain.TokenPair{}, apperrors.NewUnauthorized("no session")
	}
	sessionID := sess.SessionID

	refreshToken := ""
	if record, ok := p.store.Record(ctx, sessionID); ok {
		if rotated(record.Pair, staleAccess) {
			return p.adopt(ctx, jar, sess, record.Pair)
		}
		refreshToken = record.Pair.RefreshToken
	} else if token, ok := p.store.Refresh(ctx, jar, sessionID); ok {
		// tier B evicted; the cookie tier still carries a usable token
		refreshToken = token
	}
	if refreshToken == "" {
		p.sessions.Invalidate(ctx, jar, sessionID, "no_refresh_token")
		return domain.TokenPair{}, apperrors.NewSessionExpired()
	}

	v, err, shared := p.group.Do(sessionID, func() (interface{}, error) {
		// the refresh outlives any individual waiter: shared state is
		// updated even when the originating request was abandoned
		detached := context.WithoutCancel(ctx)

		// re-check under the flight: a rotation may have landed between the
		// caller's tier-B read and winning the flight
		if record, ok := p.store.Record(detached, sessionID); ok && rotated(record.Pair, staleAccess) {
			return refreshOutcome{pair: record.Pair}, nil
		}

		pair, err := p.exchange.Refresh(detached, refreshToken)
		p.metrics.RecordRefresh(err == nil)
		if err != nil {
			return refreshOutcome{}, err
		}

		pair = fillExpiry(pair, p.cookies, time.Now())
		record := domain.CredentialRecord{SessionID: sessionID, Pair: pair, Remember: sess.Remember}
		if err := p.store.Save(detached, jar, record); err != nil {
			return refreshOutcome{}, apperrors.NewInternalError(err)
		}
		return refreshOutcome{pair: pair, exchanged: true}, nil
	})
	if shared {
		p.metrics.RecordRefreshShared()
	}

	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeRefreshInvalid) {
			p.logger.Info("refresh rejected, invalidating session",
				zap.String("session_id", sessionID), zap.String("trigger", trigger))
			p.sessions.Publish(ctx, events.EventRefreshFailed, sessionID, sess.Identity.ID, sess.Identity.Provider,
				events.RefreshFailedPayload{Reason: apperrors.CodeRefreshInvalid, Terminal: true})
			p.sessions.Invalidate(ctx, jar, sessionID, "refresh_invalid")
			return domain.TokenPair{}, apperrors.NewSessionExpired()
		}
		// transient failure: not an auth failure, nothing is cleared
		p.sessions.Publish(ctx, events.EventRefreshFailed, sessionID, sess.Identity.ID, sess.Identity.Provider,
			events.RefreshFailedPayload{Reason: apperrors.ToDomainError(err).Code, Terminal: false})
		return domain.TokenPair{}, err
	}

	outcome := v.(refreshOutcome)

	// every waiter re-saves to its own response so the whole burst leaves
	// with the same refreshed cookies
	record := domain.CredentialRecord{SessionID: sessionID, Pair: outcome.pair, Remember: sess.Remember}
	if err := p.store.Save(ctx, jar, record); err != nil {
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}
	p.sessions.Rotate(jar, sess, outcome.pair)
	if outcome.exchanged {
		p.sessions.Publish(ctx, events.EventTokenRefreshed, sessionID, sess.Identity.ID, sess.Identity.Provider,
			events.TokenRefreshedPayload{Trigger: trigger})
	}

	return outcome.pair, nil
}

// rotated reports whether tier B already holds a pair newer than the access
// token this caller last sent.
func rotated(pair domain.TokenPair, staleAccess string) bool {
	return pair.AccessToken != "" && pair.AccessToken != staleAccess
}

// adopt takes over a pair another request already rotated into tier B,
// without touching the backend.
func (p *ProxyService) adopt(ctx context.Context, jar store.CookieJar, sess *domain.ExternalSession, pair domain.TokenPair) (domain.TokenPair, error) {
	record := domain.CredentialRecord{SessionID: sess.SessionID, Pair: pair, Remember: sess.Remember}
	if err := p.store.Save(ctx, jar, record); err != nil {
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}
	p.sessions.Rotate(jar, sess, pair)
	p.metrics.RecordRefreshShared()
	return pair, nil
}
