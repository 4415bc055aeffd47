package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clubhub/club-gateway/internal/backend"
	"github.com/clubhub/club-gateway/internal/config"
	"github.com/clubhub/club-gateway/internal/domain"
	apperrors "github.com/clubhub/club-gateway/pkg/util/errorutil"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*backend.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := backend.NewClient(config.BackendConfig{
		BaseURL:        server.URL,
		TimeoutSeconds: 2,
	}, zap.NewNop())
	return client, server
}

func authResponseBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"access_token":  "access-1",
		"refresh_token": "refresh-1",
		"user": map[string]any{
			"id":        "user-1",
			"email":     "a@b.com",
			"username":  "ab",
			"firstName": "Alice",
			"lastName":  "Baker",
			"roles":     []string{"member"},
			"provider":  "local",
		},
	})
	require.NoError(t, err)
	return body
}

func TestLoginSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "a@b.com", payload["emailOrUsername"])
		require.Equal(t, "Secret123", payload["password"])

		w.Write(authResponseBody(t)) //nolint:errcheck
	}))

	result, err := client.Login(context.Background(), "a@b.com", "Secret123")
	require.NoError(t, err)
	require.Equal(t, "access-1", result.Pair.AccessToken)
	require.Equal(t, "refresh-1", result.Pair.RefreshToken)
	require.Equal(t, "user-1", result.Identity.ID)
	require.Equal(t, domain.ProviderLocal, result.Identity.Provider)
	require.Equal(t, []string{"member"}, result.Identity.Roles)
}

func TestLoginRejectedMapsToInvalidCredentials(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.Login(context.Background(), "a@b.com", "wrong")
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))
}

func TestLoginBadRequestMapsToValidationError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"password too short","errors":{"password":["too short"]}}`)) //nolint:errcheck
	}))

	_, err := client.Login(context.Background(), "a@b.com", "x")
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "password too short", domainErr.Message)
	require.Contains(t, domainErr.Details, "password")
}

func TestRegisterConflict(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/register", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"email already registered"}`)) //nolint:errcheck
	}))

	_, err := client.Register(context.Background(), backend.RegisterFields{
		Username: "ab", Email: "a@b.com", Password: "Secret123", ConfirmPassword: "Secret123",
	})
	require.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestRefreshSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/refresh", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "refresh-1", payload["refresh_token"])

		w.Write(authResponseBody(t)) //nolint:errcheck
	}))

	pair, err := client.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	require.Equal(t, "access-1", pair.AccessToken)
}

func TestRefreshRejectionIsTerminal(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden} {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := client.Refresh(context.Background(), "revoked")
		require.True(t, apperrors.HasCode(err, apperrors.CodeRefreshInvalid), "status %d", status)
	}
}

func TestRefreshUpstreamErrorIsNotTerminal(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Refresh(context.Background(), "refresh-1")
	require.True(t, apperrors.HasCode(err, apperrors.CodeUpstreamError))
	require.False(t, apperrors.HasCode(err, apperrors.CodeRefreshInvalid))
}

func TestExchangeOAuthSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/oauth/callback", r.URL.Path)

		var payload struct {
			Provider string              `json:"provider"`
			Profile  domain.OAuthProfile `json:"profile"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "google", payload.Provider)
		require.Equal(t, "g-123", payload.Profile.ID)

		w.Write(authResponseBody(t)) //nolint:errcheck
	}))

	result, err := client.ExchangeOAuth(context.Background(), domain.ProviderGoogle, domain.OAuthProfile{
		ID: "g-123", Email: "a@b.com", Name: "Alice Baker",
	})
	require.NoError(t, err)
	require.Equal(t, "access-1", result.Pair.AccessToken)
}

func TestNetworkFailureMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := backend.NewClient(config.BackendConfig{BaseURL: url, TimeoutSeconds: 1}, zap.NewNop())

	_, err := client.Login(context.Background(), "a@b.com", "Secret123")
	require.True(t, apperrors.HasCode(err, apperrors.CodeNetworkFailure))
}

func TestTimeoutMapsToNetworkFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(3 * time.Second)
	}))

	_, err := client.Refresh(context.Background(), "refresh-1")
	require.True(t, apperrors.HasCode(err, apperrors.CodeNetworkFailure))
}
