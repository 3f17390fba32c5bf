package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "validation error",
			err:      Validation("content", "must not be empty"),
			expected: "Error: invalid content: must not be empty",
		},
		{
			name:     "not found error",
			err:      NotFound("journal entry", "abc"),
			expected: `Error: journal entry "abc" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("mood %q unknown", "furious")
	want := `Error: mood "furious" unknown`
	if got != want {
		t.Errorf("Formatf() = %q, want %q", got, want)
	}
}

func TestKinds(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name        string
		err         error
		validation  bool
		notFound    bool
		unavailable bool
	}{
		{"validation", Validation("mood_id", "unknown mood %q", "x"), true, false, false},
		{"not found", NotFound("mood entry", "1"), false, true, false},
		{"unavailable", Unavailable("list", cause), false, false, true},
		{"wrapped validation", fmt.Errorf("create: %w", Validation("content", "empty")), true, false, false},
		{"plain", cause, false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.validation {
				t.Errorf("IsValidation = %v, want %v", got, tt.validation)
			}
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound = %v, want %v", got, tt.notFound)
			}
			if got := IsStoreUnavailable(tt.err); got != tt.unavailable {
				t.Errorf("IsStoreUnavailable = %v, want %v", got, tt.unavailable)
			}
		})
	}
}

func TestUnavailableUnwraps(t *testing.T) {
	cause := errors.New("timeout")
	err := Unavailable("get", cause)
	if !errors.Is(err, cause) {
		t.Error("expected StoreUnavailableError to unwrap to its cause")
	}

	var sue *StoreUnavailableError
	if !errors.As(err, &sue) || sue.Op != "get" {
		t.Errorf("errors.As failed or wrong op: %#v", sue)
	}

	if Unavailable("noop", nil) != nil {
		t.Error("Unavailable(nil) should be nil")
	}
}
