package auth

import (
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie holding the JSON-encoded SessionRecord.
// The web app reads it directly, so it is deliberately not HttpOnly.
const SessionCookieName = "khobor_session"

var errNoSessionCookie = errors.New("no session cookie")

func (s *Service) writeSessionCookie(c *fiber.Ctx, rec SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    url.PathEscape(string(data)),
		Path:     "/",
		Domain:   s.PortalConfig.CookieDomain,
		MaxAge:   int(sessionTTL.Seconds()),
		Expires:  rec.ExpiresAt,
		Secure:   s.PortalConfig.CookieSecure,
		HTTPOnly: false,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

func (s *Service) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.PortalConfig.CookieDomain,
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour),
		Secure:   s.PortalConfig.CookieSecure,
		HTTPOnly: false,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func readSessionCookie(c *fiber.Ctx) (SessionRecord, error) {
	var rec SessionRecord
	raw := c.Cookies(SessionCookieName)
	if raw == "" {
		return rec, errNoSessionCookie
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(decoded), &rec); err != nil {
		return rec, err
	}
	return rec, nil
}
