package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"kboard/internal/board"
	"kboard/internal/service"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"title", board.ErrTitleRequired, UserError},
		{"wrapped unknown task", fmt.Errorf("edit: %w", board.ErrUnknownTask), UserError},
		{"column not empty", board.ErrColumnNotEmpty, UserError},
		{"unauthorized", fmt.Errorf("fetch_board: %w", service.ErrUnauthorized), AuthError},
		{"not found remote", service.ErrNotFound, BackendError},
		{"timeout", service.ErrTimeout, BackendError},
		{"malformed", board.ErrMalformedBoard, BackendError},
		{"other", errors.New("boom"), BackendError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromError(tt.err); got != tt.want {
				t.Errorf("FromError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
