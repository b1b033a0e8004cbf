package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation               = errors.New("validation failed")
	ErrReviewNotFound           = errors.New("review not found")
	ErrCurrentlyPlayingNotFound = errors.New("currently playing entry not found")
	ErrGameNotFound             = errors.New("game not found")
	ErrUserNotFound             = errors.New("user not found")
	ErrForbidden                = errors.New("forbidden")
	ErrCatalogUnavailable       = errors.New("game catalog unavailable")
	ErrUploadNotConfigured      = errors.New("file upload is not configured")
)

// validationError wraps ErrValidation with a message meant for the client.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }

func invalid(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}
