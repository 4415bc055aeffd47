package store

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/clubhub/club-gateway/internal/config"
)

// fiberJar implements CookieJar over a fiber request/response pair.
type fiberJar struct {
	c   *fiber.Ctx
	cfg config.CookieConfig
}

// NewFiberJar wraps a fiber context as a CookieJar.
func NewFiberJar(c *fiber.Ctx, cfg config.CookieConfig) CookieJar {
	return &fiberJar{c: c, cfg: cfg}
}

func (j *fiberJar) Get(name string) string {
	return j.c.Cookies(name)
}

func (j *fiberJar) Set(name, value string, ttl time.Duration) {
	j.c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   j.cfg.Domain,
		Expires:  time.Now().Add(ttl),
		Secure:   j.cfg.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (j *fiberJar) Clear(name string) {
	j.c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   j.cfg.Domain,
		Expires:  time.Now().Add(-time.Hour),
		Secure:   j.cfg.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
