// services/errors.go
package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Business-rule failures surfaced to the transport layer as typed results.
// None of these are retried internally: a Conflict on claim means "claim a
// different job", not "retry this one".
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("claim not found")
	ErrForbidden         = errors.New("claim belongs to another user")
	ErrJobUnavailable    = errors.New("job unavailable")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
)

func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrJobUnavailable):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
