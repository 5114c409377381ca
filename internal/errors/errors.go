// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoActiveSubscribers = errors.New("no active subscribers found")
	ErrCampaignInFlight    = errors.New("campaign is already being sent")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidToken        = errors.New("invalid or expired token")
)

// AppError is an operational error with the HTTP status it should produce.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(message string, status int) error {
	return &AppError{Status: status, Message: message}
}

// FieldError is one failed constraint, keyed by the JSON field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation error"
	}
	return fmt.Sprintf("validation error: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
}

// NotFoundError replaces the old campaign-only not-found type for every entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// StatusOf maps an error to the response status.
func StatusOf(err error) int {
	var (
		appErr *AppError
		valErr *ValidationError
		nf     *NotFoundError
	)
	switch {
	case errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.As(err, &appErr):
		return appErr.Status
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.Is(err, ErrCampaignInFlight):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// MessageOf is the client-facing message for err. Unexpected errors are
// redacted when redact is set.
func MessageOf(err error, redact bool) string {
	var (
		appErr *AppError
		valErr *ValidationError
		nf     *NotFoundError
	)
	switch {
	case errors.As(err, &valErr):
		return "Validation failed"
	case errors.As(err, &appErr):
		return appErr.Message
	case errors.As(err, &nf):
		return nf.Error()
	case errors.Is(err, ErrCampaignInFlight):
		return "Campaign is already being sent"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrInvalidToken):
		return "Invalid or expired token"
	case redact:
		return "Internal server error"
	default:
		return err.Error()
	}
}
