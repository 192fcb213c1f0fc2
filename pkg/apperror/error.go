package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error is an application error carrying an HTTP status and a stable code.
// The set of codes defined below is closed: callers classify failures by Code.
type Error struct {
	HTTPStatus int
	Code       string
	Message    string
	Internal   error
	Details    map[string]any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the internal error
func (e *Error) Unwrap() error {
	return e.Internal
}

// Is reports whether target is an *Error with the same code, so that
// errors.Is(err, apperror.ErrNotFound) matches any not_found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ToEchoError converts the app error to an echo.HTTPError.
func (e *Error) ToEchoError() *echo.HTTPError {
	return echo.NewHTTPError(e.HTTPStatus, map[string]any{
		"error": e.body(),
	})
}

func (e *Error) body() map[string]any {
	errBody := map[string]any{
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		errBody["details"] = e.Details
	}
	return errBody
}

func (e *Error) clone() *Error {
	c := *e
	return &c
}

// WithInternal returns a copy of the error with an internal error attached
func (e *Error) WithInternal(err error) *Error {
	c := e.clone()
	c.Internal = err
	return c
}

// WithMessage returns a copy of the error with a custom message
func (e *Error) WithMessage(message string) *Error {
	c := e.clone()
	c.Message = message
	return c
}

// WithDetails returns a copy of the error with details attached
func (e *Error) WithDetails(details map[string]any) *Error {
	c := e.clone()
	c.Details = details
	return c
}

// New creates a new application error
func New(status int, code, message string) *Error {
	return &Error{
		HTTPStatus: status,
		Code:       code,
		Message:    message,
	}
}

// Error taxonomy.
var (
	ErrValidation = New(http.StatusUnprocessableEntity, "validation_error", "Validation failed")
	ErrNotFound   = New(http.StatusNotFound, "not_found", "Resource not found")
	ErrConflict   = New(http.StatusConflict, "conflict", "Resource already exists")
	ErrDatabase   = New(http.StatusInternalServerError, "database_error", "Database operation failed")
	ErrIO         = New(http.StatusServiceUnavailable, "io_error", "Backing store unavailable")

	// ErrBadRequest is used by the HTTP layer for undecodable requests.
	ErrBadRequest = New(http.StatusBadRequest, "bad_request", "Invalid request")
	ErrInternal   = New(http.StatusInternalServerError, "internal_error", "An internal error occurred")
)

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the taxonomy code of err, or "internal_error" for foreign errors.
func CodeOf(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrInternal.Code
}

// ToHTTPError converts an error to a status code and response body.
func ToHTTPError(err error) (int, map[string]any) {
	if appErr, ok := As(err); ok {
		return appErr.HTTPStatus, map[string]any{
			"error": appErr.body(),
		}
	}

	return http.StatusInternalServerError, map[string]any{
		"error": ErrInternal.body(),
	}
}

// NewBadRequest creates a bad request error with a custom message
func NewBadRequest(message string) *Error {
	return ErrBadRequest.WithMessage(message)
}

// NewNotFound creates a not found error for a resource type and ID
func NewNotFound(resourceType, id string) *Error {
	return ErrNotFound.WithMessage(fmt.Sprintf("%s %s not found", resourceType, id))
}

// NewInternal creates an internal error with a message and optional wrapped error
func NewInternal(message string, err error) *Error {
	return ErrInternal.WithMessage(message).WithInternal(err)
}
