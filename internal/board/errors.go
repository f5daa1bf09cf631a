package board

import "errors"

// Errors returned by the board package. Remote failures are returned wrapped
// as they come from the service.Store; these cover local validation.
var (
	ErrTitleRequired   = errors.New("title required")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidDueDate  = errors.New("invalid due date")
	ErrUnknownTask     = errors.New("unknown task")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrInvalidMove     = errors.New("invalid move")
	ErrColumnNotEmpty  = errors.New("column not empty")
	ErrMalformedBoard  = errors.New("malformed board")
	ErrNotLoaded       = errors.New("board not loaded")
)

// IsValidation reports whether err was produced by local validation,
// i.e. no remote call was made.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrTitleRequired, ErrInvalidPriority, ErrInvalidDueDate,
		ErrUnknownTask, ErrUnknownColumn, ErrInvalidMove, ErrColumnNotEmpty,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
