package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clubhub/club-gateway/internal/domain"
	apperrors "github.com/clubhub/club-gateway/pkg/util/errorutil"
)

const sessionKey = "gateway_session"

// SessionMiddleware resolves the session cookie into a request-scoped
// ExternalSession.
type SessionMiddleware struct {
	codec      *SessionCodec
	cookieName string
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(codec *SessionCodec, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{codec: codec, cookieName: cookieName}
}

// Handle enforces a valid session for protected routes.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	raw := c.Cookies(m.cookieName)
	if raw == "" {
		return apperrors.NewUnauthorized("missing session")
	}

	sess, err := m.codec.Decode(raw)
	if err != nil {
		return apperrors.NewUnauthorized("invalid session")
	}

	c.Locals(sessionKey, sess)
	return c.Next()
}

// Optional resolves the session when present but lets unauthenticated
// requests through; some proxied endpoints are public.
func (m *SessionMiddleware) Optional(c *fiber.Ctx) error {
	raw := c.Cookies(m.cookieName)
	if raw != "" {
		if sess, err := m.codec.Decode(raw); err == nil {
			c.Locals(sessionKey, sess)
		}
	}
	return c.Next()
}

// SessionFromContext retrieves the resolved session.
func SessionFromContext(c *fiber.Ctx) (*domain.ExternalSession, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	sess, ok := val.(*domain.ExternalSession)
	return sess, ok
}
