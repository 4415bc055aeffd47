package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/clubhub/club-gateway/internal/api/dto"
	"github.com/clubhub/club-gateway/internal/auth"
	"github.com/clubhub/club-gateway/internal/backend"
	"github.com/clubhub/club-gateway/internal/config"
	"github.com/clubhub/club-gateway/internal/domain"
	"github.com/clubhub/club-gateway/internal/service"
	"github.com/clubhub/club-gateway/internal/store"
	apperrors "github.com/clubhub/club-gateway/pkg/util/errorutil"
)

// AuthHandler exposes the session lifecycle endpoints.
type AuthHandler struct {
	sessions *service.SessionService
	proxy    *service.ProxyService
	audit    *service.AuditService
	cookies  config.CookieConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(sessions *service.SessionService, proxy *service.ProxyService, audit *service.AuditService, cookies config.CookieConfig) *AuthHandler {
	return &AuthHandler{sessions: sessions, proxy: proxy, audit: audit, cookies: cookies}
}

func (h *AuthHandler) jar(c *fiber.Ctx) store.CookieJar {
	return store.NewFiberJar(c, h.cookies)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.EmailOrUsername == "" || req.Password == "" {
		return apperrors.NewValidationError("emailOrUsername and password required", nil)
	}

	proj, err := h.sessions.SignIn(c.UserContext(), h.jar(c), service.SignInInput{
		EmailOrUsername: req.EmailOrUsername,
		Password:        req.Password,
		Remember:        req.Remember,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": dto.FromProjection(*proj)})
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username, email, password required", nil)
	}
	if req.Password != req.ConfirmPassword {
		return apperrors.NewValidationError("passwords do not match", nil)
	}

	proj, err := h.sessions.Register(c.UserContext(), h.jar(c), backend.RegisterFields{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		ReferralCode:    req.ReferralCode,
	}, req.Remember)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true, "data": dto.FromProjection(*proj)})
}

// OAuthCallback handles POST /api/auth/oauth/callback.
func (h *AuthHandler) OAuthCallback(c *fiber.Ctx) error {
	var req dto.OAuthCallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Provider == "" || req.Profile.ID == "" {
		return apperrors.NewValidationError("provider and profile required", nil)
	}

	proj, err := h.sessions.BridgeOAuth(c.UserContext(), h.jar(c),
		domain.Provider(req.Provider), req.Profile, req.IDToken, req.Remember)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": dto.FromProjection(*proj)})
}

// Session handles POST /api/auth/session (the session probe).
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	proj, err := h.sessions.Probe(c.UserContext(), h.jar(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.FromProjection(*proj)})
}

// Refresh handles POST /api/auth/refresh: a caller-driven refresh through
// the same single-flight path the pipeline uses.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no session")
	}

	pair, err := h.proxy.Refresh(c.UserContext(), h.jar(c), sess, sess.Pair.AccessToken, "manual")
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"accessToken": pair.AccessToken,
		"expires":     pair.AccessExpiresAt,
	}})
}

// Activity handles GET /api/auth/activity: the recent auth events recorded
// for the caller's session.
func (h *AuthHandler) Activity(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no session")
	}

	entries, err := h.audit.RecentForSession(c.UserContext(), sess.SessionID, c.QueryInt("limit", 50))
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	items := make([]fiber.Map, 0, len(entries))
	for _, e := range entries {
		items = append(items, fiber.Map{
			"type":       e.EventType,
			"occurredAt": e.OccurredAt,
		})
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

// Logout handles POST /api/auth/logout. Idempotent: an absent session still
// clears every credential location.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.sessions.SignOut(c.UserContext(), h.jar(c))
	return c.JSON(fiber.Map{"success": true})
}
