package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/clubhub/club-gateway/internal/config"
	apperrors "github.com/clubhub/club-gateway/pkg/util/errorutil"
)

// Envelope is the uniform response shape handed back to the browser for
// every proxied call.
type Envelope struct {
	Success bool            `json:"success"`
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *EnvelopeError  `json:"error,omitempty"`
}

// EnvelopeError is the normalized error payload inside an Envelope.
type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Relay forwards caller requests to the backend host. The base URL is
// server-side configuration and never reaches the browser.
type Relay interface {
	Do(ctx context.Context, method, endpoint string, body []byte, bearer string) *Envelope
}

type httpRelay struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewRelay constructs the relay with a bounded timeout.
func NewRelay(cfg config.BackendConfig, logger *zap.Logger) Relay {
	return &httpRelay{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout()},
		logger:  logger,
	}
}

// Do forwards one request. A backend 401 passes through with its status
// intact so the request pipeline can act on it; transport failures map to a
// generic 500 envelope instead of propagating.
func (r *httpRelay) Do(ctx context.Context, method, endpoint string, body []byte, bearer string) *Envelope {
	url := r.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errorEnvelope(http.StatusInternalServerError, apperrors.CodeInternalError, "invalid proxy request")
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		r.logger.Warn("backend unreachable", zap.String("endpoint", endpoint), zap.Error(err))
		return errorEnvelope(http.StatusInternalServerError, apperrors.CodeNetworkFailure, "backend unreachable")
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return errorEnvelope(http.StatusInternalServerError, apperrors.CodeNetworkFailure, "backend response truncated")
	}

	return normalize(resp.StatusCode, payload)
}

func normalize(status int, payload []byte) *Envelope {
	if status >= 200 && status < 300 {
		return &Envelope{Success: true, Status: status, Data: json.RawMessage(payload)}
	}

	if status >= 500 {
		// backend internals stay server side
		return errorEnvelope(status, apperrors.CodeUpstreamError, "backend request failed")
	}

	msg, _ := decodeErrorWire(payload)
	code := apperrors.CodeUpstreamError
	if status == http.StatusUnauthorized {
		code = apperrors.CodeUnauthorized
	}
	return errorEnvelope(status, code, msg)
}

func errorEnvelope(status int, code, message string) *Envelope {
	return &Envelope{
		Success: false,
		Status:  status,
		Error:   &EnvelopeError{Code: code, Message: message},
	}
}
