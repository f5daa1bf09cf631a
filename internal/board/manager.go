package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"kboard/internal/logging"
	"kboard/internal/service"
)

// Manager owns the canonical in-memory board and keeps it converged with a
// service.Store.
//
// Local transitions are applied in call order under a single lock. Moves are
// optimistic: the board changes before the store is told, and the store call
// runs in the background. A failed move discards all local state and reloads
// the whole board; reloads are serialized and coalesced. All other mutations
// wait for the store and only then touch the board.
type Manager struct {
	store    service.Store
	log      logrus.FieldLogger
	observer func(Op)

	mu     sync.Mutex
	board  Board
	loaded bool
	subs   map[int]func(Board)
	nextID int

	reloadMu      sync.Mutex
	reloadSeq     atomic.Uint64
	reloadCovered uint64 // guarded by reloadMu

	inflight sync.WaitGroup
	pending  atomic.Int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for reconciliation and op transitions.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Manager) { m.log = l }
}

// WithOpObserver registers a callback invoked on every op state transition.
// It may be called from background goroutines.
func WithOpObserver(fn func(Op)) Option {
	return func(m *Manager) { m.observer = fn }
}

// NewManager creates a manager over store. The board is empty until Load.
func NewManager(store service.Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		log:   logging.Discard(),
		board: New(),
		subs:  make(map[int]func(Board)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Board returns a deep copy of the current board.
func (m *Manager) Board() Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board.Clone()
}

// Loaded reports whether a Load has succeeded at least once.
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Pending returns the number of moves whose reconciliation has not finished.
func (m *Manager) Pending() int {
	return int(m.pending.Load())
}

// Settled reports whether no move is awaiting reconciliation.
func (m *Manager) Settled() bool {
	return m.Pending() == 0
}

// Wait blocks until every in-flight reconciliation, including any reload it
// triggered, has finished.
func (m *Manager) Wait() {
	m.inflight.Wait()
}

// Subscribe registers fn to receive a copy of the board after every local
// change. fn must not call back into the manager synchronously.
// The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Board)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Load fetches the whole board and replaces local state with it. A board that
// does not exist yet is initialized once and fetched again.
// On failure the current board is kept.
func (m *Manager) Load(ctx context.Context) error {
	return m.load(ctx, false)
}

func (m *Manager) load(ctx context.Context, fresh bool) error {
	fetch := m.store.FetchBoard
	if fresh {
		fetch = func(ctx context.Context) (service.Snapshot, error) {
			return service.FetchFresh(ctx, m.store)
		}
	}

	snap, err := fetch(ctx)
	if errors.Is(err, service.ErrNotFound) {
		m.log.Info("board not initialized, initializing")
		if ierr := m.store.InitializeBoard(ctx); ierr != nil {
			return fmt.Errorf("initialize board: %w", ierr)
		}
		snap, err = service.FetchFresh(ctx, m.store)
	}
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}

	b, err := Normalize(snap)
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}

	m.mu.Lock()
	m.board = b
	m.loaded = true
	m.mu.Unlock()
	m.notify()
	return nil
}

// Initialize asks the store to create an empty board, then loads it.
// Stores treat initializing an existing board as a no-op.
func (m *Manager) Initialize(ctx context.Context) error {
	if err := m.store.InitializeBoard(ctx); err != nil {
		return fmt.Errorf("initialize board: %w", err)
	}
	return m.load(ctx, true)
}

// reload resynchronizes with the store after a failed reconciliation. A
// request is skipped when a reload that started after it already succeeded.
func (m *Manager) reload(ctx context.Context) error {
	seq := m.reloadSeq.Add(1)

	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()
	if seq <= m.reloadCovered {
		return nil
	}
	start := m.reloadSeq.Load()
	if err := m.load(ctx, true); err != nil {
		return err
	}
	m.reloadCovered = start
	return nil
}

// MoveTask applies a drag-and-drop move locally and reconciles it with the
// store in the background. A move that puts a task back where it was is
// dropped without touching the board or the store.
func (m *Manager) MoveTask(ctx context.Context, ev MoveEvent) error {
	if IsNoop(ev) {
		m.log.WithField("task_id", ev.TaskID).Debug("board.move.noop")
		return nil
	}

	m.mu.Lock()
	if !m.loaded {
		m.mu.Unlock()
		return ErrNotLoaded
	}
	next, err := ApplyMove(m.board, ev)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.board = next
	m.mu.Unlock()

	op := m.begin("move")
	op.to(OpOptimisticApplied)
	m.notify()

	m.pending.Add(1)
	m.inflight.Add(1)
	go m.reconcile(context.WithoutCancel(ctx), op, ev)
	return nil
}

func (m *Manager) reconcile(ctx context.Context, op *opTracker, ev MoveEvent) {
	defer m.inflight.Done()
	defer m.pending.Add(-1)

	err := m.store.MoveTask(ctx, ev)
	if err == nil {
		op.to(OpConfirmed)
		return
	}

	op.log.WithError(err).WithFields(logrus.Fields{
		"task_id":     ev.TaskID,
		"from_column": ev.SourceColumnID,
		"to_column":   ev.DestinationColumnID,
	}).Warn("move rejected by store, reloading board")
	op.to(OpReloadTriggered)

	if rerr := m.reload(ctx); rerr != nil {
		op.log.WithError(rerr).Error("reload after rejected move failed")
	}
}

// Consume applies every event produced by src until it is exhausted.
// Events that do not match the local board are logged and skipped.
func (m *Manager) Consume(ctx context.Context, src EventSource) error {
	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := m.MoveTask(ctx, ev); err != nil {
			if errors.Is(err, ErrInvalidMove) {
				m.log.WithError(err).Warn("skipping move event")
				continue
			}
			return err
		}
	}
}

// CreateTask creates a task at the end of a column. The board is updated only
// after the store returns the created task.
func (m *Manager) CreateTask(ctx context.Context, columnID string, fields service.TaskFields) (service.Task, error) {
	fields, err := NormalizeFields(fields)
	if err != nil {
		return service.Task{}, err
	}
	fields.ID = ""
	if err := m.check(func(b Board) error {
		if _, ok := b.Columns[columnID]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
		}
		return nil
	}); err != nil {
		return service.Task{}, err
	}

	op := m.begin("create-task")
	op.to(OpPendingRemote)
	task, err := m.store.CreateTask(ctx, columnID, fields)
	if err != nil {
		op.to(OpFailed)
		return service.Task{}, fmt.Errorf("create task: %w", err)
	}
	m.commit(ctx, op, func(b Board) (Board, error) { return InsertTask(b, columnID, task) })
	return task, nil
}

// UpdateTask replaces the editable fields of a task.
func (m *Manager) UpdateTask(ctx context.Context, taskID string, fields service.TaskFields) (service.Task, error) {
	fields, err := NormalizeFields(fields)
	if err != nil {
		return service.Task{}, err
	}
	fields.ID = taskID
	if err := m.check(func(b Board) error {
		if _, ok := b.Tasks[taskID]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTask, taskID)
		}
		return nil
	}); err != nil {
		return service.Task{}, err
	}

	op := m.begin("update-task")
	op.to(OpPendingRemote)
	task, err := m.store.UpdateTask(ctx, taskID, fields)
	if err != nil {
		op.to(OpFailed)
		return service.Task{}, fmt.Errorf("update task: %w", err)
	}
	m.commit(ctx, op, func(b Board) (Board, error) { return ReplaceTask(b, task) })
	return task, nil
}

// DeleteTask deletes a task owned by columnID. An empty columnID means the
// task's current owner.
func (m *Manager) DeleteTask(ctx context.Context, taskID, columnID string) error {
	if err := m.check(func(b Board) error {
		if _, ok := b.Tasks[taskID]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTask, taskID)
		}
		if columnID == "" {
			return nil
		}
		col, ok := b.Columns[columnID]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
		}
		if indexOf(col.TaskIDs, taskID) < 0 {
			return fmt.Errorf("%w: %q is not in column %q", ErrUnknownTask, taskID, columnID)
		}
		return nil
	}); err != nil {
		return err
	}

	op := m.begin("delete-task")
	op.to(OpPendingRemote)
	if err := m.store.DeleteTask(ctx, taskID); err != nil {
		op.to(OpFailed)
		return fmt.Errorf("delete task: %w", err)
	}
	m.commit(ctx, op, func(b Board) (Board, error) { return RemoveTask(b, taskID), nil })
	return nil
}

// CreateColumn appends a new empty column.
func (m *Manager) CreateColumn(ctx context.Context, title string) (service.Column, error) {
	title, err := NormalizeTitle(title)
	if err != nil {
		return service.Column{}, err
	}
	if err := m.check(func(Board) error { return nil }); err != nil {
		return service.Column{}, err
	}

	op := m.begin("create-column")
	op.to(OpPendingRemote)
	col, err := m.store.CreateColumn(ctx, title)
	if err != nil {
		op.to(OpFailed)
		return service.Column{}, fmt.Errorf("create column: %w", err)
	}
	m.commit(ctx, op, func(b Board) (Board, error) { return AppendColumn(b, col) })
	return col, nil
}

// UpdateColumn renames a column. The local task order is kept.
func (m *Manager) UpdateColumn(ctx context.Context, columnID, title string) (service.Column, error) {
	title, err := NormalizeTitle(title)
	if err != nil {
		return service.Column{}, err
	}
	if err := m.check(func(b Board) error {
		if _, ok := b.Columns[columnID]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
		}
		return nil
	}); err != nil {
		return service.Column{}, err
	}

	op := m.begin("update-column")
	op.to(OpPendingRemote)
	col, err := m.store.UpdateColumn(ctx, columnID, title)
	if err != nil {
		op.to(OpFailed)
		return service.Column{}, fmt.Errorf("update column: %w", err)
	}
	m.commit(ctx, op, func(b Board) (Board, error) { return RenameColumn(b, columnID, col.Title) })
	return col, nil
}

// DeleteColumnOptions controls what happens to tasks still in a deleted column.
type DeleteColumnOptions struct {
	// Cascade deletes the column's tasks first. Without it a non-empty column
	// is rejected with ErrColumnNotEmpty.
	Cascade bool
}

// DeleteColumn deletes a column. With Cascade each owned task is deleted on
// the store one by one; the first failure stops the operation with the tasks
// deleted so far removed from the board.
func (m *Manager) DeleteColumn(ctx context.Context, columnID string, opts DeleteColumnOptions) error {
	var owned []string
	if err := m.check(func(b Board) error {
		col, ok := b.Columns[columnID]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
		}
		if len(col.TaskIDs) > 0 && !opts.Cascade {
			return fmt.Errorf("%w: %q holds %d tasks", ErrColumnNotEmpty, col.Title, len(col.TaskIDs))
		}
		owned = append(owned, col.TaskIDs...)
		return nil
	}); err != nil {
		return err
	}

	for _, taskID := range owned {
		if err := m.DeleteTask(ctx, taskID, ""); err != nil && !errors.Is(err, ErrUnknownTask) {
			return fmt.Errorf("delete column: %w", err)
		}
	}

	op := m.begin("delete-column")
	op.to(OpPendingRemote)
	if err := m.store.DeleteColumn(ctx, columnID); err != nil {
		op.to(OpFailed)
		return fmt.Errorf("delete column: %w", err)
	}
	m.commit(ctx, op, func(b Board) (Board, error) { return RemoveColumn(b, columnID), nil })
	return nil
}

// check runs fn against the current board, requiring a loaded board.
func (m *Manager) check(fn func(Board) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return ErrNotLoaded
	}
	return fn(m.board)
}

// commit applies a transition confirmed by the store. If the board changed
// underneath so that the transition no longer fits, the board is reloaded.
func (m *Manager) commit(ctx context.Context, op *opTracker, fn func(Board) (Board, error)) {
	m.mu.Lock()
	next, err := fn(m.board)
	if err == nil {
		m.board = next
	}
	m.mu.Unlock()

	if err != nil {
		op.log.WithError(err).Warn("confirmed change no longer fits local board, reloading")
		op.to(OpApplied)
		if rerr := m.reload(ctx); rerr != nil {
			op.log.WithError(rerr).Error("reload after confirmed change failed")
		}
		return
	}
	op.to(OpApplied)
	m.notify()
}

func (m *Manager) notify() {
	m.mu.Lock()
	if len(m.subs) == 0 {
		m.mu.Unlock()
		return
	}
	snap := m.board.Clone()
	subs := make([]func(Board), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
