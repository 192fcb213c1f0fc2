package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without internal error",
			err:      ErrNotFound,
			expected: "not_found: Resource not found",
		},
		{
			name:     "with internal error",
			err:      ErrDatabase.WithInternal(errors.New("relation \"vertex\" does not exist")),
			expected: "database_error: Database operation failed (relation \"vertex\" does not exist)",
		},
		{
			name:     "custom message",
			err:      ErrIO.WithMessage("connection refused"),
			expected: "io_error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying cause")
	err := ErrDatabase.WithInternal(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the internal cause")
	}
	if ErrNotFound.Unwrap() != nil {
		t.Error("Unwrap() on a bare error should return nil")
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("lookup: %w", ErrNotFound.WithMessage("vertex 42 not found"))

	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false, want true")
	}
	if errors.Is(err, ErrConflict) {
		t.Error("errors.Is(err, ErrConflict) = true, want false")
	}
}

func TestCopiesDoNotMutateSentinels(t *testing.T) {
	_ = ErrValidation.WithMessage("changed").WithDetails(map[string]any{"fields": map[string]any{}})

	if ErrValidation.Message != "Validation failed" {
		t.Errorf("sentinel message mutated: %q", ErrValidation.Message)
	}
	if ErrValidation.Details != nil {
		t.Error("sentinel details mutated")
	}
}

func TestWithInternalKeepsDetails(t *testing.T) {
	details := map[string]any{"matched": []string{"from_vertex_id must differ from to_vertex_id"}}
	err := ErrValidation.WithDetails(details).WithInternal(errors.New("x"))

	if len(err.Details) != 1 {
		t.Errorf("Details = %v, want details preserved", err.Details)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", ErrValidation, "validation_error"},
		{"wrapped conflict", fmt.Errorf("insert: %w", ErrConflict), "conflict"},
		{"io", ErrIO.WithInternal(errors.New("eof")), "io_error"},
		{"foreign error", errors.New("boom"), "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToHTTPError(t *testing.T) {
	status, body := ToHTTPError(ErrValidation.WithDetails(map[string]any{
		"fields": map[string][]string{"name": {"must match ^[A-Za-z0-9]{3,255}$"}},
	}))
	if status != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", status, http.StatusUnprocessableEntity)
	}
	errObj := body["error"].(map[string]any)
	if errObj["code"] != "validation_error" {
		t.Errorf("code = %v, want validation_error", errObj["code"])
	}
	if _, ok := errObj["details"]; !ok {
		t.Error("details missing from body")
	}

	status, body = ToHTTPError(errors.New("plain"))
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}
	if body["error"].(map[string]any)["code"] != "internal_error" {
		t.Error("foreign errors should map to internal_error")
	}
}

func TestToEchoError(t *testing.T) {
	he := ErrConflict.ToEchoError()
	if he.Code != http.StatusConflict {
		t.Errorf("Code = %d, want %d", he.Code, http.StatusConflict)
	}
	msg, ok := he.Message.(map[string]any)
	if !ok {
		t.Fatalf("Message type = %T, want map", he.Message)
	}
	if msg["error"].(map[string]any)["code"] != "conflict" {
		t.Error("echo error should carry the conflict code")
	}
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name    string
		err     *Error
		status  int
		code    string
		message string
	}{
		{"bad request", NewBadRequest("invalid id"), http.StatusBadRequest, "bad_request", "invalid id"},
		{"not found", NewNotFound("edge", "12"), http.StatusNotFound, "not_found", "edge 12 not found"},
		{"internal", NewInternal("internal server error", cause), http.StatusInternalServerError, "internal_error", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("HTTPStatus = %d, want %d", tt.err.HTTPStatus, tt.status)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.message)
			}
		})
	}

	if !errors.Is(NewInternal("x", cause), cause) {
		t.Error("NewInternal should wrap its cause")
	}
}
