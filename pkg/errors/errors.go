package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared across the engine.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal error")

	// Automation engine taxonomy.
	ErrNoLinkedAccount     = errors.New("no linked account")
	ErrInvalidToken        = errors.New("invalid token")
	ErrAuthExhausted       = errors.New("authentication exhausted")
	ErrUnknownAction       = errors.New("unknown action")
	ErrUnknownReaction     = errors.New("unknown reaction")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrReactionFailed      = errors.New("reaction execution failed")
)

// AppError is a structured application error with an HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// UnknownAction creates a 422 error for a bind request naming an action that
// does not exist in the catalog.
func UnknownAction(name string) *AppError {
	return &AppError{
		Code:    "UNKNOWN_ACTION",
		Message: fmt.Sprintf("action %q is not in the catalog", name),
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrUnknownAction,
	}
}

// UnknownReaction creates a 422 error for a bind request naming a reaction
// that does not exist in the catalog.
func UnknownReaction(name string) *AppError {
	return &AppError{
		Code:    "UNKNOWN_REACTION",
		Message: fmt.Sprintf("reaction %q is not in the catalog", name),
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrUnknownReaction,
	}
}

// NoLinkedAccount wraps ErrNoLinkedAccount with the provider context. It is a
// poll-time error and never surfaces through the HTTP API.
func NoLinkedAccount(provider string) error {
	return fmt.Errorf("provider %s: %w", provider, ErrNoLinkedAccount)
}

// ProviderUnavailable wraps a transient upstream failure.
func ProviderUnavailable(provider string, err error) error {
	return fmt.Errorf("provider %s: %w: %w", provider, ErrProviderUnavailable, err)
}

// ReactionFailed wraps a reaction-side failure with its upstream cause.
func ReactionFailed(reaction string, err error) error {
	return fmt.Errorf("reaction %s: %w: %w", reaction, ErrReactionFailed, err)
}

// Wrap adds context to an error.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus maps an error to its HTTP status code.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnknownAction), errors.Is(err, ErrUnknownReaction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
