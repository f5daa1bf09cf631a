// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"kboard/internal/board"
	"kboard/internal/service"
)

// FakeStore is an in-memory implementation of service.Store for testing.
// It applies the same board transitions the client does.
type FakeStore struct {
	mu          sync.Mutex
	initialized bool
	board       board.Board
	nextID      int
	calls       map[string]int

	// Error injection for testing
	FetchBoardErr   error
	InitializeErr   error
	CreateTaskErr   error
	UpdateTaskErr   error
	DeleteTaskErr   error
	CreateColumnErr error
	UpdateColumnErr error
	DeleteColumnErr error
	MoveTaskErr     error

	// MoveHook, when set, runs before every move is applied. A non-nil
	// error rejects the move. It is called without the store lock held.
	MoveHook func(service.Move) error
}

// NewFakeStore creates an initialized FakeStore with an empty board.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		initialized: true,
		board:       board.New(),
		calls:       make(map[string]int),
	}
}

// NewUninitializedFakeStore creates a FakeStore whose board does not exist
// until InitializeBoard is called.
func NewUninitializedFakeStore() *FakeStore {
	f := NewFakeStore()
	f.initialized = false
	return f
}

// AddColumn adds a column to the fake board.
func (f *FakeStore) AddColumn(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.board, _ = board.AppendColumn(f.board, service.Column{ID: id, Title: title})
}

// AddTask adds a task at the end of a column.
func (f *FakeStore) AddTask(columnID, taskID, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, err := board.InsertTask(f.board, columnID, service.Task{
		ID:       taskID,
		Title:    title,
		Priority: service.PriorityMedium,
	})
	if err != nil {
		panic(err)
	}
	f.board = next
}

// Snapshot returns the store's current board in wire form.
func (f *FakeStore) Snapshot() service.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return board.Denormalize(f.board)
}

// Board returns the store's current board.
func (f *FakeStore) Board() board.Board {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.board.Clone()
}

// Calls returns how many times op was called.
func (f *FakeStore) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (f *FakeStore) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// SetMoveTaskErr changes the injected move error while moves may be in flight.
func (f *FakeStore) SetMoveTaskErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MoveTaskErr = err
}

func (f *FakeStore) enter(op string, injected error) error {
	f.calls[op]++
	if injected != nil {
		return injected
	}
	if !f.initialized && op != "InitializeBoard" {
		return fmt.Errorf("board: %w", service.ErrNotFound)
	}
	return nil
}

func (f *FakeStore) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// FetchBoard implements service.Store.
func (f *FakeStore) FetchBoard(ctx context.Context) (service.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("FetchBoard", f.FetchBoardErr); err != nil {
		return service.Snapshot{}, err
	}
	return board.Denormalize(f.board), nil
}

// InitializeBoard implements service.Store.
func (f *FakeStore) InitializeBoard(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("InitializeBoard", f.InitializeErr); err != nil {
		return err
	}
	if !f.initialized {
		f.initialized = true
		f.board = board.New()
	}
	return nil
}

// CreateTask implements service.Store.
func (f *FakeStore) CreateTask(ctx context.Context, columnID string, fields service.TaskFields) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateTask", f.CreateTaskErr); err != nil {
		return service.Task{}, err
	}
	if _, ok := f.board.Columns[columnID]; !ok {
		return service.Task{}, fmt.Errorf("column %s: %w", columnID, service.ErrNotFound)
	}
	task := taskFromFields(f.newID("task"), fields)
	next, err := board.InsertTask(f.board, columnID, task)
	if err != nil {
		return service.Task{}, err
	}
	f.board = next
	return task, nil
}

// UpdateTask implements service.Store.
func (f *FakeStore) UpdateTask(ctx context.Context, taskID string, fields service.TaskFields) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateTask", f.UpdateTaskErr); err != nil {
		return service.Task{}, err
	}
	task := taskFromFields(taskID, fields)
	next, err := board.ReplaceTask(f.board, task)
	if err != nil {
		return service.Task{}, fmt.Errorf("task %s: %w", taskID, service.ErrNotFound)
	}
	f.board = next
	return task, nil
}

// DeleteTask implements service.Store.
func (f *FakeStore) DeleteTask(ctx context.Context, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteTask", f.DeleteTaskErr); err != nil {
		return err
	}
	if _, ok := f.board.Tasks[taskID]; !ok {
		return fmt.Errorf("task %s: %w", taskID, service.ErrNotFound)
	}
	f.board = board.RemoveTask(f.board, taskID)
	return nil
}

// CreateColumn implements service.Store.
func (f *FakeStore) CreateColumn(ctx context.Context, title string) (service.Column, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateColumn", f.CreateColumnErr); err != nil {
		return service.Column{}, err
	}
	col := service.Column{ID: f.newID("col"), Title: title, TaskIDs: []string{}}
	next, err := board.AppendColumn(f.board, col)
	if err != nil {
		return service.Column{}, err
	}
	f.board = next
	return col, nil
}

// UpdateColumn implements service.Store.
func (f *FakeStore) UpdateColumn(ctx context.Context, columnID, title string) (service.Column, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateColumn", f.UpdateColumnErr); err != nil {
		return service.Column{}, err
	}
	next, err := board.RenameColumn(f.board, columnID, title)
	if err != nil {
		return service.Column{}, fmt.Errorf("column %s: %w", columnID, service.ErrNotFound)
	}
	f.board = next
	return next.Columns[columnID].Clone(), nil
}

// DeleteColumn implements service.Store.
func (f *FakeStore) DeleteColumn(ctx context.Context, columnID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteColumn", f.DeleteColumnErr); err != nil {
		return err
	}
	if _, ok := f.board.Columns[columnID]; !ok {
		return fmt.Errorf("column %s: %w", columnID, service.ErrNotFound)
	}
	f.board = board.RemoveColumn(f.board, columnID)
	return nil
}

// MoveTask implements service.Store.
func (f *FakeStore) MoveTask(ctx context.Context, move service.Move) error {
	f.mu.Lock()
	hook := f.MoveHook
	if err := f.enter("MoveTask", f.MoveTaskErr); err != nil {
		f.mu.Unlock()
		return err
	}
	f.mu.Unlock()

	if hook != nil {
		if err := hook(move); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	next, err := board.ApplyMove(f.board, move)
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrConflict, err)
	}
	f.board = next
	return nil
}

func taskFromFields(id string, fields service.TaskFields) service.Task {
	return service.Task{
		ID:          id,
		Title:       fields.Title,
		Description: fields.Description,
		Assignee:    fields.Assignee,
		DueDate:     fields.DueDate,
		Priority:    fields.Priority,
		Tags:        append([]string(nil), fields.Tags...),
	}
}
