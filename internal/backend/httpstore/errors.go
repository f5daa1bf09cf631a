package httpstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"kboard/internal/service"
)

// StatusError is a non-2xx response from the Board Store.
type StatusError struct {
	Op      string
	Code    int
	Message string

	kind  error
	cause error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s: %s (HTTP %d)", e.Op, e.kind, e.Message, e.Code)
}

// Unwrap exposes both the service sentinel and the googleapi error.
func (e *StatusError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

func isClientError(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code >= 400 && gerr.Code < 500
	}
	return false
}

func statusKind(code int) error {
	switch code {
	case http.StatusNotFound:
		return service.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return service.ErrUnauthorized
	case http.StatusConflict, http.StatusBadRequest, http.StatusUnprocessableEntity:
		return service.ErrConflict
	default:
		return service.ErrBackend
	}
}

// wrapError converts transport and API errors to the service sentinels.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w: %w", op, service.ErrUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, service.ErrTimeout)
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%s: %w: %w", op, service.ErrUnauthorized, err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = http.StatusText(gerr.Code)
		}
		return &StatusError{
			Op:      op,
			Code:    gerr.Code,
			Message: msg,
			kind:    statusKind(gerr.Code),
			cause:   gerr,
		}
	}

	return fmt.Errorf("%s: %w: %w", op, service.ErrBackend, err)
}
