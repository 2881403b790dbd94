// Package gateway implements auth middleware shared across portal services.
package gateway

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt"

	"github.com/khobor/portal/cms"
)

// JWTAuth provides an encapsulation for staff jwt auth.
type JWTAuth struct {
	PortalConfig cms.PortalConfig
	Key          []byte
}

// TokenClaims portal standard claim for staff sessions.
type TokenClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

// Init loads the signing key from config, generating one when unset
// (staff sessions then won't survive a restart).
func (j *JWTAuth) Init() {
	if j.PortalConfig.JWTKey != "" {
		j.Key = []byte(j.PortalConfig.JWTKey)
		return
	}
	key, _ := GenerateSecretKey(32)
	j.Key = key
}

// GenerateJWT issues a signed token for a staff account.
func (j *JWTAuth) GenerateJWT(userID uint, email string) (string, error) {
	if len(j.Key) == 0 {
		return "", errors.New("empty jwt key")
	}
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
			Issuer:    "portal",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Key)
}

// VerifyJWT validates a token and returns its claims.
func (j *JWTAuth) VerifyJWT(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Key, nil
	})
	if token == nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, err
}

// AuthMiddleware guards staff endpoints. On success the claims land in
// Locals under user_id and email.
func (j *JWTAuth) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get("Authorization")
		if h == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "empty header was sent", "code": "unauthorized"})
		}
		claims, err := j.VerifyJWT(h)
		if e, ok := err.(*jwt.ValidationError); ok {
			if e.Errors&jwt.ValidationErrorExpired != 0 {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Token has expired", "code": "jwt_expired"})
			}
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Malformed token", "code": "jwt_malformed"})
		} else if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized", "code": "unauthorized"})
		}
		c.Locals("user_id", claims.UserID)
		c.Locals("email", claims.Email)
		return c.Next()
	}
}

// GenerateSecretKey generates secret key for jwt signing.
func GenerateSecretKey(n int) ([]byte, error) {
	key := make([]byte, n)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
