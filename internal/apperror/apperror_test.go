// Run with: go test ./internal/apperror/ -v
package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// TABLE-DRIVEN TESTS:
// One slice of cases, one loop, one sub-test per case. Adding a case is
// adding one struct literal.

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("tasting", "cv37rs3pp9olc6atsptg"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("step", "add at least vintage, name and color"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("tasting", "abc123"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("log in first"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "wrapped with fmt.Errorf still matches",
			err:       fmt.Errorf("replacing tasting: %w", NotFound("tasting", "abc123")),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("tasting", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Forbidden does NOT match ErrUnauthorized",
			err:       Forbidden("session does not match the current profile"),
			target:    ErrUnauthorized,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("tasting", "abc123"),
			wantMessage: "tasting not found with id abc123",
		},
		{
			name:        "NotFound without id names the resource only",
			err:         NotFound("profile", ""),
			wantMessage: "profile not found",
		},
		{
			name:        "LoggedOut asks for a login",
			err:         LoggedOut(),
			wantMessage: "log in first",
		},
		{
			name:        "StalePersona explains the mismatch",
			err:         StalePersona(),
			wantMessage: "session does not match the current profile",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("name", "wine name is required"),
			wantMessage: "wine name is required",
		},
		{
			name:        "Conflict message includes resource and id",
			err:         Conflict("tasting", "abc123"),
			wantMessage: "tasting conflict with id abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("tasting", "abc123")

	if unwrapped := err.Unwrap(); unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("email", "invalid email format")

	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("updating profile: %w", StalePersona())

	appErr, ok := As(wrapped)
	if !ok {
		t.Fatal("As() found no AppError in a wrapped chain")
	}
	if !errors.Is(appErr, ErrForbidden) {
		t.Errorf("As() = %v, want an ErrForbidden AppError", appErr)
	}

	if _, ok := As(errors.New("disk full")); ok {
		t.Error("As() matched a plain error")
	}
	if _, ok := As(nil); ok {
		t.Error("As() matched nil")
	}
}
