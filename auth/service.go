// Package auth owns the session reconciliation flow: a provider-authenticated
// reader is guaranteed a matching CMS account and token, unified into one
// session record persisted as a client-readable cookie.
package auth

import (
	"encoding/json"
	"net/http"

	firebase "firebase.google.com/go/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/khobor/portal/cms"
	"github.com/khobor/portal/gateway"
)

// Auther issues and verifies the local staff tokens.
type Auther interface {
	VerifyJWT(token string) (*gateway.TokenClaims, error)
	GenerateJWT(userID uint, email string) (string, error)
}

// Service bundles the dependencies of the auth endpoints.
type Service struct {
	Redis        *redis.Client
	Db           *gorm.DB
	PortalConfig cms.PortalConfig
	Logger       *logrus.Logger
	FirebaseApp  *firebase.App
	Auth         Auther
	CMS          *cms.Client

	// Verifier defaults to the Firebase app; tests swap it out.
	Verifier TokenVerifier
	// HTTP is used for the provider's password sign-in REST call.
	HTTP *http.Client
}

func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if len(c.Body()) == 0 {
		return fiber.ErrBadRequest
	}
	if err := json.Unmarshal(c.Body(), dst); err != nil {
		return err
	}
	return cms.ValidateStruct(dst)
}

func getUserID(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		switch t := v.(type) {
		case uint:
			return t
		case int:
			return uint(t)
		case int64:
			return uint(t)
		case float64:
			return uint(t)
		}
	}
	return 0
}
