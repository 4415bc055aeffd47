package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/clubhub/club-gateway/internal/config"
	"github.com/clubhub/club-gateway/internal/domain"
	apperrors "github.com/clubhub/club-gateway/pkg/util/errorutil"
)

// Exchanger performs credential exchange calls against the backend identity
// service. One network round trip per operation, no internal retries: retry
// policy belongs to the caller and only for transport-level failures.
type Exchanger interface {
	Login(ctx context.Context, emailOrUsername, password string) (*AuthResult, error)
	Register(ctx context.Context, fields RegisterFields) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
	ExchangeOAuth(ctx context.Context, provider domain.Provider, profile domain.OAuthProfile) (*AuthResult, error)
}

// AuthResult is the normalized outcome of a successful exchange.
type AuthResult struct {
	Pair     domain.TokenPair
	Identity domain.Identity
}

// RegisterFields carries the registration payload.
type RegisterFields struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	ReferralCode    string `json:"referralCode,omitempty"`
}

// Client talks to the backend identity endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient constructs the exchange client with a bounded timeout.
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout()},
		logger:  logger,
	}
}

type authResponseWire struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         userWire `json:"user"`
}

type userWire struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Username  string   `json:"username"`
	Avatar    string   `json:"avatar"`
	Roles     []string `json:"roles"`
	Provider  string   `json:"provider"`
}

type errorWire struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Login exchanges credentials for a token pair and identity.
func (c *Client) Login(ctx context.Context, emailOrUsername, password string) (*AuthResult, error) {
	payload := map[string]string{
		"emailOrUsername": emailOrUsername,
		"password":        password,
	}

	status, body, err := c.post(ctx, "/api/auth/login", payload)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusOK:
		return decodeAuthResult(body)
	case status == http.StatusUnauthorized:
		return nil, apperrors.NewInvalidCredentials("")
	case status == http.StatusBadRequest:
		msg, details := decodeErrorWire(body)
		return nil, apperrors.NewValidationError(msg, details)
	case status >= 500:
		return nil, apperrors.NewUpstreamError(status)
	}
	return nil, apperrors.NewUpstreamError(status)
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, fields RegisterFields) (*AuthResult, error) {
	status, body, err := c.post(ctx, "/api/auth/register", fields)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		return decodeAuthResult(body)
	case status == http.StatusConflict:
		msg, details := decodeErrorWire(body)
		if msg == "" {
			msg = "email or username already taken"
		}
		return nil, apperrors.NewConflict(msg, details)
	case status == http.StatusBadRequest:
		msg, details := decodeErrorWire(body)
		return nil, apperrors.NewValidationError(msg, details)
	case status >= 500:
		return nil, apperrors.NewUpstreamError(status)
	}
	return nil, apperrors.NewUpstreamError(status)
}

// Refresh exchanges a refresh token for a new pair. A backend rejection is
// terminal for the session; the caller must sign the user out, not retry.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	payload := map[string]string{"refresh_token": refreshToken}

	status, body, err := c.post(ctx, "/api/auth/refresh", payload)
	if err != nil {
		return domain.TokenPair{}, err
	}

	switch {
	case status == http.StatusOK:
		result, err := decodeAuthResult(body)
		if err != nil {
			return domain.TokenPair{}, err
		}
		return result.Pair, nil
	case status >= 400 && status < 500:
		return domain.TokenPair{}, apperrors.NewRefreshInvalid(fmt.Errorf("backend status %d", status))
	}
	return domain.TokenPair{}, apperrors.NewUpstreamError(status)
}

// ExchangeOAuth bridges a third-party profile into a backend token pair.
// Equivalent to login for downstream purposes.
func (c *Client) ExchangeOAuth(ctx context.Context, provider domain.Provider, profile domain.OAuthProfile) (*AuthResult, error) {
	payload := map[string]any{
		"provider": string(provider),
		"profile":  profile,
	}

	status, body, err := c.post(ctx, "/api/auth/oauth/callback", payload)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusOK:
		return decodeAuthResult(body)
	case status == http.StatusUnauthorized:
		return nil, apperrors.NewInvalidCredentials("provider profile rejected")
	case status == http.StatusBadRequest:
		msg, details := decodeErrorWire(body)
		return nil, apperrors.NewValidationError(msg, details)
	case status >= 500:
		return nil, apperrors.NewUpstreamError(status)
	}
	return nil, apperrors.NewUpstreamError(status)
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, apperrors.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, apperrors.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("identity call failed", zap.String("path", path), zap.Error(err))
		return 0, nil, apperrors.NewNetworkFailure(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, apperrors.NewNetworkFailure(err)
	}
	return resp.StatusCode, body, nil
}

func decodeAuthResult(body []byte) (*AuthResult, error) {
	var wire authResponseWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, apperrors.NewUpstreamError(http.StatusOK)
	}
	if wire.AccessToken == "" || wire.RefreshToken == "" {
		return nil, apperrors.NewUpstreamError(http.StatusOK)
	}

	provider := domain.Provider(wire.User.Provider)
	if !domain.KnownProvider(provider) {
		provider = domain.ProviderLocal
	}

	return &AuthResult{
		Pair: domain.TokenPair{
			AccessToken:  wire.AccessToken,
			RefreshToken: wire.RefreshToken,
		},
		Identity: domain.Identity{
			ID:        wire.User.ID,
			Email:     wire.User.Email,
			Username:  wire.User.Username,
			FirstName: wire.User.FirstName,
			LastName:  wire.User.LastName,
			Avatar:    wire.User.Avatar,
			Roles:     wire.User.Roles,
			Provider:  provider,
		},
	}, nil
}

func decodeErrorWire(body []byte) (string, map[string]any) {
	var wire errorWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return "request rejected", nil
	}
	msg := wire.Message
	if msg == "" {
		msg = "request rejected"
	}
	var details map[string]any
	if len(wire.Errors) > 0 {
		details = make(map[string]any, len(wire.Errors))
		for field, errs := range wire.Errors {
			details[field] = errs
		}
	}
	return msg, details
}
