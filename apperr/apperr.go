package apperr

import (
	"errors"
	"net/http"
)

// Error represents a typed, status-aware application error.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message,omitempty"`
	Status  int            `json:"-"`
	Fields  map[string]any `json:"fields,omitempty"`
	Err     error          `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return "error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on the code, so wrapped copies of a sentinel still compare
// equal to it under errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && t != nil && e.Code == t.Code
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func Wrap(err error, base *Error, message string) *Error {
	if err == nil {
		return nil
	}
	if base == nil {
		base = ErrInternal
	}
	copy := *base
	if message != "" {
		copy.Message = message
	}
	copy.Err = err
	return &copy
}

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

func Status(err error) int {
	if e, ok := As(err); ok && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

func Code(err error) string {
	if e, ok := As(err); ok && e.Code != "" {
		return e.Code
	}
	return "internal_error"
}

func Message(err error) string {
	if e, ok := As(err); ok {
		if e.Message != "" {
			return e.Message
		}
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Code
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func Payload(err error) map[string]any {
	if err == nil {
		return map[string]any{}
	}
	if e, ok := As(err); ok {
		payload := map[string]any{
			"code":    Code(e),
			"message": Message(e),
		}
		if len(e.Fields) > 0 {
			payload["fields"] = e.Fields
		}
		return payload
	}
	return map[string]any{
		"code":    "internal_error",
		"message": err.Error(),
	}
}

var (
	ErrBadRequest   = New("bad_request", http.StatusBadRequest, "")
	ErrEmptyBody    = New("empty_body", http.StatusBadRequest, "request body is empty")
	ErrUnauthorized = New("unauthorized", http.StatusUnauthorized, "")
	ErrNotFound     = New("not_found", http.StatusNotFound, "")
	ErrInternal     = New("internal_error", http.StatusInternalServerError, "")
	ErrDatabase     = New("database_error", http.StatusInternalServerError, "")
)

// Reconciliation taxonomy. These are the terminal failure states of a
// sign-in attempt; handlers turn them into a single user-visible payload.
var (
	// ErrMissingEmail: the identity provider supplied no email address.
	// The user-facing message stays vague on purpose.
	ErrMissingEmail = New("missing_email", http.StatusBadRequest, "sign in failed")
	// ErrLookupFailed: the CMS account lookup could not complete.
	ErrLookupFailed = New("lookup_failed", http.StatusBadGateway, "")
	// ErrReconciliation: a CMS account exists for this email but its stored
	// credential does not match the provider uid. No retry, no reset.
	ErrReconciliation = New("reconciliation_failed", http.StatusUnauthorized, "")
	// ErrRegistration: the CMS rejected the new-account registration.
	ErrRegistration = New("registration_failed", http.StatusBadRequest, "")
)
