package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"search group not found", NewSearchGroupNotFoundError("library"), ErrSearchGroupNotFound},
		{"filter not found", NewFilterNotFoundError(7), ErrFilterNotFound},
		{"duplicate filter", NewDuplicateFilterError(7), ErrDuplicateFilter},
		{"missing handler", NewMissingHandlerError("get elements", "entry"), ErrMissingHandler},
		{"conflicting options", NewConflictingOptionsError("kind"), ErrConflictingOptions},
		{"malformed filter value", NewMalformedFilterValueError(7, "expected array"), ErrMalformedFilterValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false", tt.err)
			}
			// Matching survives wrapping.
			wrapped := fmt.Errorf("search failed: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("wrapped error does not match sentinel: %v", wrapped)
			}
		})
	}
}

func TestDuplicateFilterGeneralTerm(t *testing.T) {
	err := NewDuplicateFilterError(-1)
	if err.Error() == NewDuplicateFilterError(7).Error() {
		t.Error("general term duplicate should read differently from a filter duplicate")
	}
}

func TestMessagesCarryContext(t *testing.T) {
	if msg := NewMissingHandlerError("get elements", "entry").Error(); msg == "" {
		t.Fatal("empty message")
	}
	err := NewFilterNotFoundError(42)
	var typed *FilterNotFoundError
	if !errors.As(err, &typed) || typed.FilterID != 42 {
		t.Errorf("errors.As failed or lost the filter id: %+v", typed)
	}
}
