package gateway

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminAuthConfig holds the credentials accepted on the editorial admin
// routes: a shared key, HTTP Basic credentials, or both.
type AdminAuthConfig struct {
	Key      string
	User     string
	Password string
	Debug    bool
}

// RequireAdmin protects the editorial endpoints. It accepts either the
// X-Admin-Key header or HTTP Basic credentials; debug deployments skip
// the check. With no credential configured the endpoints answer 503
// rather than sit open.
func RequireAdmin(cfg AdminAuthConfig) fiber.Handler {
	configured := cfg.Key != "" || (cfg.User != "" && cfg.Password != "")
	return func(c *fiber.Ctx) error {
		if cfg.Debug {
			return c.Next()
		}
		if !configured {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"message": "admin auth not configured", "code": "admin_auth_not_configured"})
		}

		if adminKeyMatches(c.Get("X-Admin-Key"), cfg.Key) {
			return c.Next()
		}
		if user, pass, ok := basicCredentials(c.Get(fiber.HeaderAuthorization)); ok {
			if cfg.User != "" && secureEqual(user, cfg.User) && secureEqual(pass, cfg.Password) {
				return c.Next()
			}
		}
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized", "code": "unauthorized"})
	}
}

func adminKeyMatches(got, want string) bool {
	got = strings.TrimSpace(got)
	if got == "" || want == "" {
		return false
	}
	return secureEqual(got, want)
}

func basicCredentials(header string) (user, pass string, ok bool) {
	scheme, rest, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "basic") {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(rest))
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
