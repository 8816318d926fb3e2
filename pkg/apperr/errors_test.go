package apperr

import (
	"database/sql"
	"fmt"
	"testing"
)

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidation("searchRadiusMi", "must be at most %d", 100)
	if err.Error() != "invalid searchRadiusMi: must be at most 100" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	bare := &ValidationError{Message: "validation failed"}
	if bare.Error() != "validation failed" {
		t.Errorf("unexpected message: %q", bare.Error())
	}
}

func TestIsHelpersThroughWrapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		notFound   bool
		conflict   bool
	}{
		{"validation", fmt.Errorf("merge: %w", NewValidation("themeMode", "bad")), true, false, false},
		{"not found", fmt.Errorf("merge: %w", &NotFoundError{Resource: "preferences", Key: "u1"}), false, true, false},
		{"conflict", fmt.Errorf("create: %w", &ConflictError{Resource: "preferences", Key: "u1"}), false, false, true},
		{"plain", sql.ErrNoRows, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.validation {
				t.Errorf("IsValidation: expected %v, got %v", tt.validation, got)
			}
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound: expected %v, got %v", tt.notFound, got)
			}
			if got := IsConflict(tt.err); got != tt.conflict {
				t.Errorf("IsConflict: expected %v, got %v", tt.conflict, got)
			}
		})
	}
}

func TestConflictErrorUnwraps(t *testing.T) {
	cause := fmt.Errorf("duplicate key")
	err := &ConflictError{Resource: "preferences", Key: "u1", Err: cause}
	if err.Unwrap() != cause {
		t.Fatal("expected Unwrap to return the cause")
	}
	if FieldOf(err) != "" {
		t.Errorf("expected empty field for non-validation error")
	}
	if FieldOf(NewValidation("startDate", "required")) != "startDate" {
		t.Errorf("expected startDate field")
	}
}
