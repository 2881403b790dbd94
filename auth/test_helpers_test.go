package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/khobor/portal/cms"
	"github.com/khobor/portal/gateway"
)

type stubAccount struct {
	DocumentID string
	Username   string
	Password   string
}

// cmsStub fakes the Strapi GraphQL endpoint: one POST handler that routes
// on the operation in the query text.
type cmsStub struct {
	Accounts map[string]*stubAccount

	LookupCalls   int
	LoginCalls    int
	RegisterCalls int

	FailLookup   bool
	FailRegister bool
}

func newCMSStub() *cmsStub {
	return &cmsStub{Accounts: map[string]*stubAccount{}}
}

func (s *cmsStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.Contains(req.Query, "usersPermissionsUsers"):
			s.LookupCalls++
			if s.FailLookup {
				w.WriteHeader(http.StatusInternalServerError)
				writeGraphQLError(w, "Internal Server Error")
				return
			}
			email, _ := req.Variables["email"].(string)
			accounts := []map[string]any{}
			if acc, ok := s.Accounts[email]; ok {
				accounts = append(accounts, map[string]any{
					"documentId": acc.DocumentID,
					"username":   acc.Username,
					"email":      email,
				})
			}
			writeGraphQLData(w, map[string]any{"usersPermissionsUsers": accounts})

		case strings.Contains(req.Query, "login("):
			s.LoginCalls++
			identifier, _ := req.Variables["identifier"].(string)
			password, _ := req.Variables["password"].(string)
			acc, ok := s.Accounts[identifier]
			if !ok || acc.Password != password {
				writeGraphQLError(w, "Invalid identifier or password")
				return
			}
			writeGraphQLData(w, map[string]any{"login": map[string]any{
				"jwt": "cms-jwt-login-" + acc.DocumentID,
				"user": map[string]any{
					"documentId": acc.DocumentID,
					"username":   acc.Username,
					"email":      identifier,
				},
			}})

		case strings.Contains(req.Query, "register("):
			s.RegisterCalls++
			email, _ := req.Variables["email"].(string)
			username, _ := req.Variables["username"].(string)
			password, _ := req.Variables["password"].(string)
			if s.FailRegister {
				writeGraphQLError(w, "Email or Username are already taken")
				return
			}
			acc := &stubAccount{
				DocumentID: "doc-" + username,
				Username:   username,
				Password:   password,
			}
			s.Accounts[email] = acc
			writeGraphQLData(w, map[string]any{"register": map[string]any{
				"jwt": "cms-jwt-register-" + acc.DocumentID,
				"user": map[string]any{
					"documentId": acc.DocumentID,
					"username":   username,
					"email":      email,
				},
			}})

		default:
			writeGraphQLError(w, "unknown operation")
		}
	}
}

func writeGraphQLData(w http.ResponseWriter, data map[string]any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeGraphQLError(w http.ResponseWriter, message string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"errors": []map[string]any{{"message": message}},
	})
}

var errTokenRejected = errors.New("ID token has been revoked")

// stubVerifier swaps the Firebase verifier for a canned identity.
type stubVerifier struct {
	Identity ProviderIdentity
	Err      error
}

func (v stubVerifier) VerifyIDToken(ctx context.Context, idToken string) (ProviderIdentity, error) {
	return v.Identity, v.Err
}

type testEnv struct {
	Router  *fiber.App
	Service *Service
	Auth    *gateway.JWTAuth
	DB      *gorm.DB
	CMS     *cmsStub
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&Session{}, &ProviderLink{}, &Staff{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	stub := newCMSStub()
	cmsServer := httptest.NewServer(stub.handler())
	t.Cleanup(cmsServer.Close)

	cfg := cms.PortalConfig{
		JWTKey: "test-secret",
		CMSURL: cmsServer.URL,
	}
	cfg.Defaults()

	logger := logrus.New()
	jwtAuth := &gateway.JWTAuth{PortalConfig: cfg}
	jwtAuth.Init()

	service := &Service{
		Db:           db,
		PortalConfig: cfg,
		Logger:       logger,
		Auth:         jwtAuth,
		CMS:          cms.NewClient(cfg, logger),
	}

	r := fiber.New()
	authGroup := r.Group("/auth")
	authGroup.Post("/login", service.Login)
	authGroup.Post("/logout", service.Logout)
	authGroup.Get("/me", service.Me)
	r.Post("/admin/login", service.StaffLogin)
	r.Post("/admin/staff", service.CreateStaff)
	r.Get("/admin/me", jwtAuth.AuthMiddleware(), service.StaffMe)

	return &testEnv{Router: r, Service: service, Auth: jwtAuth, DB: db, CMS: stub}
}

func seedStaff(t *testing.T, db *gorm.DB, email, password string) Staff {
	t.Helper()
	staff := Staff{
		Email:    email,
		Username: email,
		Password: password,
	}
	if err := staff.HashPassword(); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatalf("create staff: %v", err)
	}
	return staff
}
