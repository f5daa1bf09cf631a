// Package service defines the backend-agnostic interface for board operations.
package service

import (
	"context"
	"errors"
)

// Store defines the remote Board Store. It is the source of truth for the board.
// All HTTP calls go through this interface; the board package never imports a transport.
type Store interface {
	// FetchBoard returns the whole board.
	// Returns an error wrapping ErrNotFound if the board has not been initialized yet.
	FetchBoard(ctx context.Context) (Snapshot, error)

	// InitializeBoard creates an empty board.
	InitializeBoard(ctx context.Context) error

	// CreateTask creates a task owned by columnID and returns the stored task.
	CreateTask(ctx context.Context, columnID string, fields TaskFields) (Task, error)

	// UpdateTask replaces the fields of a task and returns the stored task.
	UpdateTask(ctx context.Context, taskID string, fields TaskFields) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, taskID string) error

	// CreateColumn creates an empty column.
	CreateColumn(ctx context.Context, title string) (Column, error)

	// UpdateColumn renames a column.
	UpdateColumn(ctx context.Context, columnID, title string) (Column, error)

	// DeleteColumn deletes a column.
	DeleteColumn(ctx context.Context, columnID string) error

	// MoveTask applies a drag-and-drop reorder on the store.
	MoveTask(ctx context.Context, move Move) error
}

// Refresher is implemented by stores that can serve FetchBoard from a cache.
// FetchBoardFresh always goes to the source of truth.
type Refresher interface {
	FetchBoardFresh(ctx context.Context) (Snapshot, error)
}

// FetchFresh fetches the board bypassing any cache layer s may have.
func FetchFresh(ctx context.Context, s Store) (Snapshot, error) {
	if r, ok := s.(Refresher); ok {
		return r.FetchBoardFresh(ctx)
	}
	return s.FetchBoard(ctx)
}

// Errors returned by Store implementations. Implementations wrap these so
// callers can use errors.Is while keeping the transport error in the chain.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("token expired or revoked")
	ErrConflict     = errors.New("conflict")
	ErrTimeout      = errors.New("request timed out")
	ErrUnavailable  = errors.New("board store unavailable")
	ErrBackend      = errors.New("backend error")
)
