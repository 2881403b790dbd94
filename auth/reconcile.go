package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/khobor/portal/apperr"
	"github.com/khobor/portal/cms"
)

// sessionTTL is how long a reconciled session stays valid.
const sessionTTL = 30 * 24 * time.Hour

// SessionRecord is the durable artifact of a successful sign-in: the
// provider identity and the CMS-issued token, unified. It is JSON-encoded
// into the session cookie and mirrored in the sessions table.
type SessionRecord struct {
	SessionID   string    `json:"session_id"`
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"name,omitempty"`
	PhotoURL    string    `json:"picture,omitempty"`
	Provider    string    `json:"provider"`
	JWT         string    `json:"jwt"`
	AccountID   string    `json:"document_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Reconcile guarantees a provider-authenticated user also holds a CMS
// account and token, and materializes one unified session.
//
// The flow is linear: lookup by email, then exactly one CMS mutation —
// login when the account exists, register when it does not. An existing
// account whose stored credential does not match the provider uid is a
// known inconsistency state; it fails without retry and without touching
// the stored password (an earlier variant reset the password and retried
// once; this flow does not).
func (s *Service) Reconcile(ctx context.Context, identity ProviderIdentity) (SessionRecord, error) {
	var rec SessionRecord
	if identity.Email == "" {
		return rec, apperr.ErrMissingEmail
	}
	email := strings.ToLower(identity.Email)

	account, err := s.CMS.FindAccountByEmail(ctx, email)
	if err != nil {
		return rec, apperr.Wrap(err, apperr.ErrLookupFailed, err.Error())
	}

	var payload cms.AuthPayload
	if account != nil {
		payload, err = s.CMS.Login(ctx, email, identity.UID)
		if err != nil {
			s.Logger.WithField("email", email).Printf("cms login failed for existing account: %v", err)
			return rec, apperr.Wrap(err, apperr.ErrReconciliation, err.Error())
		}
	} else {
		username := deriveUsername(email)
		payload, err = s.CMS.Register(ctx, username, email, identity.UID)
		if err != nil {
			s.Logger.WithField("email", email).Printf("cms registration failed: %v", err)
			return rec, apperr.Wrap(err, apperr.ErrRegistration, err.Error())
		}
	}

	rec = SessionRecord{
		SessionID:   uuid.NewString(),
		UID:         identity.UID,
		Email:       email,
		DisplayName: identity.DisplayName,
		PhotoURL:    identity.PhotoURL,
		Provider:    identity.Provider,
		JWT:         payload.JWT,
		AccountID:   payload.Account.DocumentID,
		ExpiresAt:   time.Now().Add(sessionTTL),
	}

	// A newly registered CMS account is not rolled back when this write
	// fails; the orphan is reconciled again on the next attempt.
	if err := s.persistSession(rec); err != nil {
		return SessionRecord{}, apperr.Wrap(err, apperr.ErrDatabase, "")
	}
	return rec, nil
}

func (s *Service) persistSession(rec SessionRecord) error {
	return s.Db.Transaction(func(tx *gorm.DB) error {
		session := Session{
			SessionID:   rec.SessionID,
			UID:         rec.UID,
			Email:       rec.Email,
			DisplayName: rec.DisplayName,
			PhotoURL:    rec.PhotoURL,
			Provider:    rec.Provider,
			AccountID:   rec.AccountID,
			ExpiresAt:   rec.ExpiresAt,
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		link := ProviderLink{
			AccountID:      rec.AccountID,
			Provider:       rec.Provider,
			ProviderUserID: rec.UID,
			Email:          rec.Email,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	})
}

// deriveUsername builds a CMS username from the email local-part plus a
// uniqueness suffix.
func deriveUsername(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	return fmt.Sprintf("%s_%d", local, time.Now().Unix())
}
