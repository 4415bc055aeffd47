package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/clubhub/club-gateway/internal/auth"
	"github.com/clubhub/club-gateway/internal/config"
	"github.com/clubhub/club-gateway/internal/service"
	"github.com/clubhub/club-gateway/internal/store"
	apperrors "github.com/clubhub/club-gateway/pkg/util/errorutil"
)

// ProxyHandler relays API calls to the backend through the authenticated
// request pipeline.
type ProxyHandler struct {
	proxy   *service.ProxyService
	cookies config.CookieConfig
}

// NewProxyHandler constructs handler.
func NewProxyHandler(proxy *service.ProxyService, cookies config.CookieConfig) *ProxyHandler {
	return &ProxyHandler{proxy: proxy, cookies: cookies}
}

// Handle forwards ALL /api/proxy/<endpoint> requests. The bearer credential
// comes from the caller's Authorization header or is recovered from the
// cookie tier by the pipeline.
func (h *ProxyHandler) Handle(c *fiber.Ctx) error {
	endpoint := c.Params("*")
	if endpoint == "" {
		return apperrors.NewValidationError("missing backend endpoint", nil)
	}
	if query := string(c.Request().URI().QueryString()); query != "" {
		endpoint += "?" + query
	}

	sess, _ := auth.SessionFromContext(c)
	jar := store.NewFiberJar(c, h.cookies)

	env, err := h.proxy.Forward(c.UserContext(), jar, sess, service.ProxyRequest{
		Method:        c.Method(),
		Endpoint:      endpoint,
		Body:          c.Body(),
		Authorization: bearerFromHeader(c.Get(fiber.HeaderAuthorization)),
	})
	if err != nil {
		return err
	}

	return c.Status(env.Status).JSON(env)
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
