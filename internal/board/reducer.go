package board

import (
	"fmt"

	"kboard/internal/service"
)

// MoveEvent is a drag-and-drop gesture: the task at SourceIndex of the source
// column is dropped at DestinationIndex of the destination column.
type MoveEvent = service.Move

// IsNoop reports whether the move drops a task where it was picked up.
func IsNoop(m MoveEvent) bool {
	return m.SourceColumnID == m.DestinationColumnID && m.SourceIndex == m.DestinationIndex
}

// The transitions below never mutate their input board. Maps and slices that
// change are copied; unchanged ones are shared with the input.

func (b Board) withColumns() Board {
	cols := make(map[string]service.Column, len(b.Columns))
	for id, c := range b.Columns {
		cols[id] = c
	}
	return Board{
		Tasks:       b.Tasks,
		Columns:     cols,
		ColumnOrder: append([]string{}, b.ColumnOrder...),
	}
}

func (b Board) withTasks() Board {
	tasks := make(map[string]service.Task, len(b.Tasks))
	for id, t := range b.Tasks {
		tasks[id] = t
	}
	b.Tasks = tasks
	return b
}

// ApplyMove reorders a task. Indices follow drag-and-drop semantics: the task
// is removed first and DestinationIndex is taken against the shortened list.
func ApplyMove(b Board, m MoveEvent) (Board, error) {
	src, ok := b.Columns[m.SourceColumnID]
	if !ok {
		return Board{}, fmt.Errorf("%w: unknown source column %q", ErrInvalidMove, m.SourceColumnID)
	}
	dst, ok := b.Columns[m.DestinationColumnID]
	if !ok {
		return Board{}, fmt.Errorf("%w: unknown destination column %q", ErrInvalidMove, m.DestinationColumnID)
	}
	if m.SourceIndex < 0 || m.SourceIndex >= len(src.TaskIDs) || src.TaskIDs[m.SourceIndex] != m.TaskID {
		return Board{}, fmt.Errorf("%w: task %q is not at index %d of column %q", ErrInvalidMove, m.TaskID, m.SourceIndex, m.SourceColumnID)
	}
	if IsNoop(m) {
		return b, nil
	}

	srcIDs := removeAt(src.TaskIDs, m.SourceIndex)
	if m.SourceColumnID == m.DestinationColumnID {
		if m.DestinationIndex < 0 || m.DestinationIndex > len(srcIDs) {
			return Board{}, fmt.Errorf("%w: destination index %d out of range [0, %d]", ErrInvalidMove, m.DestinationIndex, len(srcIDs))
		}
		next := b.withColumns()
		src.TaskIDs = insertAt(srcIDs, m.DestinationIndex, m.TaskID)
		next.Columns[src.ID] = src
		return next, nil
	}

	if m.DestinationIndex < 0 || m.DestinationIndex > len(dst.TaskIDs) {
		return Board{}, fmt.Errorf("%w: destination index %d out of range [0, %d]", ErrInvalidMove, m.DestinationIndex, len(dst.TaskIDs))
	}
	next := b.withColumns()
	src.TaskIDs = srcIDs
	dst.TaskIDs = insertAt(dst.TaskIDs, m.DestinationIndex, m.TaskID)
	next.Columns[src.ID] = src
	next.Columns[dst.ID] = dst
	return next, nil
}

// InsertTask adds a newly created task at the end of a column. If the task is
// already owned by a column (a reload got there first) only its data is replaced.
func InsertTask(b Board, columnID string, t service.Task) (Board, error) {
	col, ok := b.Columns[columnID]
	if !ok {
		return Board{}, fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	if t.ID == "" {
		return Board{}, fmt.Errorf("%w: store returned a task without id", ErrMalformedBoard)
	}

	_, _, owned := b.Owner(t.ID)
	next := b.withTasks()
	next.Tasks[t.ID] = t.Clone()
	if owned {
		return next, nil
	}
	next = next.withColumns()
	col.TaskIDs = insertAt(col.TaskIDs, len(col.TaskIDs), t.ID)
	next.Columns[columnID] = col
	return next, nil
}

// ReplaceTask merges the store's canonical copy of an existing task.
func ReplaceTask(b Board, t service.Task) (Board, error) {
	if _, ok := b.Tasks[t.ID]; !ok {
		return Board{}, fmt.Errorf("%w: %q", ErrUnknownTask, t.ID)
	}
	next := b.withTasks()
	next.Tasks[t.ID] = t.Clone()
	return next, nil
}

// RemoveTask drops a task from the task map and from every column holding it.
func RemoveTask(b Board, taskID string) Board {
	next := b.withTasks().withColumns()
	delete(next.Tasks, taskID)
	for id, col := range next.Columns {
		if i := indexOf(col.TaskIDs, taskID); i >= 0 {
			col.TaskIDs = removeAt(col.TaskIDs, i)
			next.Columns[id] = col
		}
	}
	return next
}

// AppendColumn adds a column at the right end of the board. If the column is
// already present only its title is updated.
func AppendColumn(b Board, c service.Column) (Board, error) {
	if c.ID == "" {
		return Board{}, fmt.Errorf("%w: store returned a column without id", ErrMalformedBoard)
	}
	if _, ok := b.Columns[c.ID]; ok {
		return RenameColumn(b, c.ID, c.Title)
	}
	next := b.withColumns()
	next.Columns[c.ID] = service.Column{ID: c.ID, Title: c.Title, TaskIDs: []string{}}
	next.ColumnOrder = append(next.ColumnOrder, c.ID)
	return next, nil
}

// RenameColumn replaces a column title and keeps its task order.
func RenameColumn(b Board, columnID, title string) (Board, error) {
	col, ok := b.Columns[columnID]
	if !ok {
		return Board{}, fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	next := b.withColumns()
	col.Title = title
	next.Columns[columnID] = col
	return next, nil
}

// RemoveColumn drops a column from Columns and ColumnOrder. Tasks still owned
// by the column are dropped with it so that no id is left dangling.
func RemoveColumn(b Board, columnID string) Board {
	col, ok := b.Columns[columnID]
	if !ok {
		return b
	}
	next := b.withColumns()
	delete(next.Columns, columnID)
	if i := indexOf(next.ColumnOrder, columnID); i >= 0 {
		next.ColumnOrder = removeAt(next.ColumnOrder, i)
	}
	if len(col.TaskIDs) > 0 {
		next = next.withTasks()
		for _, id := range col.TaskIDs {
			delete(next.Tasks, id)
		}
	}
	return next
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func removeAt(ids []string, i int) []string {
	out := make([]string, 0, len(ids)-1)
	out = append(out, ids[:i]...)
	return append(out, ids[i+1:]...)
}

func insertAt(ids []string, i int, id string) []string {
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:i]...)
	out = append(out, id)
	return append(out, ids[i:]...)
}
