package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
)

const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
	ProviderPassword = "password"

	passwordSignInURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"
)

// Credential is the tagged union of the sign-in methods the portal accepts.
type Credential interface {
	provider() string
}

// GoogleCredential carries the Firebase ID token minted by a Google popup
// sign-in.
type GoogleCredential struct {
	IDToken string
}

// FacebookCredential carries the Firebase ID token minted by a Facebook
// popup sign-in. Some Facebook configurations return no email; the
// reconciler rejects those before touching the CMS.
type FacebookCredential struct {
	IDToken string
}

// PasswordCredential is an email/password sign-in, exchanged with the
// identity provider's REST endpoint for a uid.
type PasswordCredential struct {
	Email    string
	Password string
}

func (GoogleCredential) provider() string   { return ProviderGoogle }
func (FacebookCredential) provider() string { return ProviderFacebook }
func (PasswordCredential) provider() string { return ProviderPassword }

// ProviderIdentity is the canonical shape every credential normalizes to.
// UID doubles as the CMS password equivalent.
type ProviderIdentity struct {
	Provider    string
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// TokenVerifier validates a provider ID token and extracts the identity.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (ProviderIdentity, error)
}

// FirebaseVerifier verifies ID tokens against the Firebase project.
type FirebaseVerifier struct {
	App *firebase.App
}

func (f FirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (ProviderIdentity, error) {
	var identity ProviderIdentity
	if f.App == nil {
		return identity, errors.New("firebase app not configured")
	}
	fb, err := f.App.Auth(ctx)
	if err != nil {
		return identity, err
	}
	token, err := fb.VerifyIDToken(ctx, idToken)
	if err != nil {
		return identity, err
	}
	identity.UID = token.UID
	if v, ok := token.Claims["email"].(string); ok {
		identity.Email = v
	}
	if v, ok := token.Claims["name"].(string); ok {
		identity.DisplayName = v
	}
	if v, ok := token.Claims["picture"].(string); ok {
		identity.PhotoURL = v
	}
	return identity, nil
}

// Normalize turns a credential variant into the canonical identity the
// reconciler consumes. This is the identity-provider boundary: any error
// here surfaces with the provider's own message.
func (s *Service) Normalize(ctx context.Context, cred Credential) (ProviderIdentity, error) {
	switch c := cred.(type) {
	case GoogleCredential:
		identity, err := s.verifier().VerifyIDToken(ctx, c.IDToken)
		identity.Provider = ProviderGoogle
		return identity, err
	case FacebookCredential:
		identity, err := s.verifier().VerifyIDToken(ctx, c.IDToken)
		identity.Provider = ProviderFacebook
		return identity, err
	case PasswordCredential:
		return s.signInWithPassword(ctx, c.Email, c.Password)
	default:
		return ProviderIdentity{}, fmt.Errorf("unknown credential type %T", cred)
	}
}

func (s *Service) verifier() TokenVerifier {
	if s.Verifier != nil {
		return s.Verifier
	}
	return FirebaseVerifier{App: s.FirebaseApp}
}

type passwordSignInResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type providerErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// signInWithPassword exchanges email/password with the identity provider's
// REST endpoint. The returned localId plays the role of the uid.
func (s *Service) signInWithPassword(ctx context.Context, email, password string) (ProviderIdentity, error) {
	var identity ProviderIdentity
	if s.PortalConfig.FirebaseAPIKey == "" {
		return identity, errors.New("identity provider api key not configured")
	}

	payload, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return identity, err
	}

	url := passwordSignInURL + "?key=" + s.PortalConfig.FirebaseAPIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return identity, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return identity, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var provErr providerErrorResponse
		if err := json.Unmarshal(body, &provErr); err == nil && provErr.Error.Message != "" {
			return identity, errors.New(provErr.Error.Message)
		}
		return identity, fmt.Errorf("provider sign in failed: %s", string(body))
	}

	var parsed passwordSignInResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return identity, err
	}
	identity = ProviderIdentity{
		Provider:    ProviderPassword,
		UID:         parsed.LocalID,
		Email:       parsed.Email,
		DisplayName: parsed.DisplayName,
	}
	return identity, nil
}

func (s *Service) httpClient() *http.Client {
	if s.HTTP != nil {
		return s.HTTP
	}
	return &http.Client{Timeout: 10 * time.Second}
}
