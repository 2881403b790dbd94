package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/khobor/portal/apperr"
)

const revokedSessionsKey = "revoked_sessions"

type loginRequest struct {
	Provider string `json:"provider" binding:"required"`
	IDToken  string `json:"id_token"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login runs the full sign-in chain: credential → provider identity → CMS
// reconciliation → session cookie. Failure at any step leaves no partial
// session behind.
func (s *Service) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": err.Error(), "code": "bad_request"})
	}

	var cred Credential
	switch strings.ToLower(req.Provider) {
	case ProviderGoogle:
		cred = GoogleCredential{IDToken: req.IDToken}
	case ProviderFacebook:
		cred = FacebookCredential{IDToken: req.IDToken}
	case ProviderPassword:
		cred = PasswordCredential{Email: req.Email, Password: req.Password}
	default:
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "unknown provider", "code": "unknown_provider"})
	}

	ctx := c.UserContext()
	identity, err := s.Normalize(ctx, cred)
	if err != nil {
		// provider errors surface with the provider's own message
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": err.Error(), "code": "provider_error"})
	}

	rec, err := s.Reconcile(ctx, identity)
	if err != nil {
		return c.Status(apperr.Status(err)).JSON(apperr.Payload(err))
	}

	if err := s.writeSessionCookie(c, rec); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": err.Error(), "code": "internal_error"})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"session": rec})
}

// Logout revokes the presented session and clears its cookie. A missing or
// garbled cookie still clears cleanly.
func (s *Service) Logout(c *fiber.Ctx) error {
	rec, err := readSessionCookie(c)
	if err == nil && rec.SessionID != "" {
		now := time.Now()
		if err := s.Db.Model(&Session{}).Where("session_id = ?", rec.SessionID).Update("revoked_at", now).Error; err != nil {
			s.Logger.Printf("revoking session %s: %v", rec.SessionID, err)
		}
		if s.Redis != nil {
			s.Redis.SAdd(c.UserContext(), revokedSessionsKey, rec.SessionID)
		}
	}
	s.clearSessionCookie(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{"result": "ok"})
}

// Me returns the session record behind the presented cookie, provided the
// ledger still considers it live.
func (s *Service) Me(c *fiber.Ctx) error {
	rec, err := readSessionCookie(c)
	if err != nil {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "no active session", "code": "unauthorized"})
	}
	if !s.sessionAlive(c, rec) {
		s.clearSessionCookie(c)
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "session expired", "code": "session_expired"})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"session": rec})
}

func (s *Service) sessionAlive(c *fiber.Ctx, rec SessionRecord) bool {
	if rec.SessionID == "" {
		return false
	}
	if s.Redis != nil {
		if revoked, err := s.Redis.SIsMember(c.UserContext(), revokedSessionsKey, rec.SessionID).Result(); err == nil && revoked {
			return false
		}
	}
	var session Session
	if err := s.Db.First(&session, "session_id = ?", rec.SessionID).Error; err != nil {
		return false
	}
	if session.RevokedAt != nil {
		return false
	}
	return session.ExpiresAt.After(time.Now())
}

type staffLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// StaffLogin signs an editorial account in against the local staff table
// and issues a short-lived bearer token for the dashboard APIs.
func (s *Service) StaffLogin(c *fiber.Ctx) error {
	var req staffLoginRequest
	if err := bindJSON(c, &req); err != nil {
		s.Logger.Printf("The request is wrong. %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": err.Error(), "code": "bad_request"})
	}
	staff, err := GetStaffByEmail(req.Email, s.Db)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": err.Error(), "code": "not_found"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(req.Password)); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "wrong password entered", "code": "wrong_password"})
	}
	token, err := s.Auth.GenerateJWT(staff.ID, staff.Email)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": err.Error(), "code": "jwt_failed"})
	}
	staff.Password = ""
	c.Set("Authorization", token)
	return c.Status(http.StatusOK).JSON(fiber.Map{"authorization": token, "user": staff})
}

// CreateStaff provisions an editorial account. Admin-guarded at the route
// level.
func (s *Service) CreateStaff(c *fiber.Ctx) error {
	var staff Staff
	if err := bindJSON(c, &staff); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": err.Error(), "code": "bad_request"})
	}
	staff.Email = strings.ToLower(staff.Email)
	if staff.Username == "" {
		staff.Username = staff.Email
	}
	var existing Staff
	if res := s.Db.Where("email = ? or username = ?", staff.Email, staff.Username).First(&existing); res.Error == nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "staff account already exists", "code": "duplicate_staff"})
	}
	if err := staff.HashPassword(); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": err.Error(), "code": "internal_error"})
	}
	if err := s.Db.Create(&staff).Error; err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": err.Error(), "code": "database_error"})
	}
	staff.Password = ""
	return c.Status(http.StatusCreated).JSON(fiber.Map{"result": "ok", "user": staff})
}

// StaffMe returns the staff profile for the bearer token in use.
func (s *Service) StaffMe(c *fiber.Ctx) error {
	userID := getUserID(c)
	if userID == 0 {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "missing user id", "code": "unauthorized"})
	}
	var staff Staff
	if err := s.Db.First(&staff, userID).Error; err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": err.Error(), "code": "database_error"})
	}
	staff.Password = ""
	return c.Status(http.StatusOK).JSON(fiber.Map{"user": staff})
}
