// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"kboard/internal/board"
	"kboard/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task or column, validation).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a Board Store, network or reconciliation error.
	BackendError = 3
)

// FromError maps an error returned by the board manager or a store to an exit code.
func FromError(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrUnauthorized):
		return AuthError
	case board.IsValidation(err):
		return UserError
	default:
		return BackendError
	}
}
