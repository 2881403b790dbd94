package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapKeepsSentinelIdentity(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(cause, ErrLookupFailed, "account lookup failed")

	if !errors.Is(err, ErrLookupFailed) {
		t.Error("wrapped error should match its sentinel")
	}
	if errors.Is(err, ErrReconciliation) {
		t.Error("wrapped error must not match other sentinels")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if err.Error() != "account lookup failed" {
		t.Errorf("message override lost: %q", err.Error())
	}
}

func TestWrapDoesNotMutateSentinel(t *testing.T) {
	Wrap(errors.New("boom"), ErrRegistration, "Email or Username are already taken")
	if ErrRegistration.Message != "" || ErrRegistration.Err != nil {
		t.Errorf("sentinel mutated: %+v", ErrRegistration)
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, ErrLookupFailed, "ignored"); err != nil {
		t.Errorf("wrapping nil should stay nil, got %v", err)
	}
}

func TestStatusAndCode(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{ErrMissingEmail, http.StatusBadRequest, "missing_email"},
		{ErrLookupFailed, http.StatusBadGateway, "lookup_failed"},
		{Wrap(errors.New("x"), ErrReconciliation, ""), http.StatusUnauthorized, "reconciliation_failed"},
		{fmt.Errorf("outer: %w", ErrRegistration), http.StatusBadRequest, "registration_failed"},
		{errors.New("plain"), http.StatusInternalServerError, "internal_error"},
		{nil, http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		if got := Status(tt.err); got != tt.wantStatus {
			t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.wantStatus)
		}
		if got := Code(tt.err); got != tt.wantCode {
			t.Errorf("Code(%v) = %q, want %q", tt.err, got, tt.wantCode)
		}
	}
}

func TestPayload(t *testing.T) {
	err := Wrap(errors.New("boom"), ErrRegistration, "Email or Username are already taken")
	payload := Payload(err)
	if payload["code"] != "registration_failed" {
		t.Errorf("code: %v", payload["code"])
	}
	if payload["message"] != "Email or Username are already taken" {
		t.Errorf("message: %v", payload["message"])
	}
	if _, ok := payload["fields"]; ok {
		t.Error("empty fields should be omitted")
	}

	plain := Payload(errors.New("boom"))
	if plain["code"] != "internal_error" || plain["message"] != "boom" {
		t.Errorf("plain error payload: %v", plain)
	}
}

func TestMessageFallsBackToCause(t *testing.T) {
	err := Wrap(errors.New("Invalid identifier or password"), ErrReconciliation, "")
	if got := Message(err); got != "Invalid identifier or password" {
		t.Errorf("Message = %q", got)
	}
}
