package auth

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Session is the server-side ledger row behind an issued session cookie.
// It exists so a cookie can be revoked and introspected before its 30-day
// expiry runs out.
type Session struct {
	gorm.Model
	SessionID   string     `json:"session_id" gorm:"index:idx_session_id,unique"`
	UID         string     `json:"uid" gorm:"index"`
	Email       string     `json:"email" gorm:"index"`
	DisplayName string     `json:"name,omitempty"`
	PhotoURL    string     `json:"picture,omitempty"`
	Provider    string     `json:"provider"`
	AccountID   string     `json:"document_id"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

// ProviderLink records which provider identity a CMS account was
// reconciled through.
type ProviderLink struct {
	gorm.Model
	AccountID      string `json:"account_id" gorm:"index"`
	Provider       string `json:"provider" gorm:"size:32;not null;index:idx_provider_subject,unique"`
	ProviderUserID string `json:"provider_user_id" gorm:"size:191;not null;index:idx_provider_subject,unique"`
	Email          string `json:"email,omitempty" gorm:"size:191;index"`
}

// Staff is an editorial account. Staff sign in with email and password
// against this table, not through the identity provider.
type Staff struct {
	gorm.Model
	Username string `json:"username" gorm:"index:idx_staff_username,unique"`
	Fullname string `json:"fullname"`
	Email    string `json:"email" binding:"required,email" gorm:"index:idx_staff_email,unique"`
	Password string `json:"password,omitempty" binding:"required,min=8"`
	IsAdmin  bool   `json:"is_admin" gorm:"default:false"`
}

func (s *Staff) HashPassword() error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(s.Password), 8)
	if err != nil {
		return err
	}
	s.Password = string(hashedPassword)
	return nil
}

// GetStaffByEmail retrieves a staff account by its (lowercased) email.
func GetStaffByEmail(email string, db *gorm.DB) (Staff, error) {
	var staff Staff
	if result := db.First(&staff, "email = ?", strings.ToLower(email)); errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return staff, errors.New("staff not found")
	} else if result.Error != nil {
		return staff, result.Error
	}
	return staff, nil
}
