package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetMainEngine(t *testing.T) {
	app := GetMainEngine()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/test status = %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/metrics status = %d", resp.StatusCode)
	}
}

func TestAdminGuardedRoutes(t *testing.T) {
	app := GetMainEngine()

	// No admin key or basic credentials are configured in tests, so the
	// guard reports unavailability instead of letting the request through.
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/admin/cache/invalidate", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("/admin/cache/invalidate status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/admin/me", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("/admin/me status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestDurationFromMs(t *testing.T) {
	if got := durationFromMs(0, 5*time.Second); got != 5*time.Second {
		t.Errorf("zero should fall back to default, got %v", got)
	}
	if got := durationFromMs(250, 5*time.Second); got != 250*time.Millisecond {
		t.Errorf("got %v", got)
	}
}
