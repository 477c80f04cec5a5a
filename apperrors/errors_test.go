package apperrors

import (
	"errors"
	"net/http"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without wrapped cause",
			err:      Forbidden("not a member of this group"),
			expected: "[403] not a member of this group",
		},
		{
			name:     "with wrapped cause",
			err:      Storage(errors.New("connection refused")),
			expected: "[500] storage failure: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestWrapKeepsStatusAndMessage(t *testing.T) {
	cause := errors.New("duplicate key value")
	err := Conflict("already a member").Wrap(cause)

	if err.Status != http.StatusConflict {
		t.Errorf("expected status 409, got %d", err.Status)
	}
	if err.Message != "already a member" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"unauthenticated", Unauthenticated("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("not a member"), http.StatusForbidden},
		{"validation", Validation("note too long"), http.StatusBadRequest},
		{"not found", NotFound("group not found"), http.StatusNotFound},
		{"conflict", Conflict("already a member"), http.StatusConflict},
		{"storage", Storage(errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestMessageOfHidesCauses(t *testing.T) {
	err := Storage(errors.New("password=hunter2 rejected"))
	if got := MessageOf(err); got != "storage failure" {
		t.Errorf("expected opaque message, got %q", got)
	}
	if got := MessageOf(errors.New("raw")); got != "internal server error" {
		t.Errorf("expected fallback message, got %q", got)
	}
}

func TestIsMatchesTaxonomyEntry(t *testing.T) {
	wrapped := Forbidden("not a member of this group").Wrap(errors.New("row absent"))
	if !Is(wrapped, Forbidden("not a member of this group")) {
		t.Error("expected wrapped error to match its taxonomy entry")
	}
	if Is(wrapped, Validation("not a member of this group")) {
		t.Error("different status must not match")
	}
}
