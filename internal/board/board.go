// Package board holds the in-memory Kanban board and the state manager that
// keeps it converged with the remote Board Store.
//
// State transitions are pure functions (old board + operation -> new board).
// The Manager applies them under a lock and issues the remote calls around them:
// moves are applied optimistically and reconciled in the background, every
// other mutation is confirmed by the store before it is applied.
package board

import (
	"fmt"

	"kboard/internal/service"
)

// Board is the normalized board: tasks and columns keyed by id plus the
// left-to-right column order.
type Board struct {
	Tasks       map[string]service.Task
	Columns     map[string]service.Column
	ColumnOrder []string
}

// New returns an empty board.
func New() Board {
	return Board{
		Tasks:       make(map[string]service.Task),
		Columns:     make(map[string]service.Column),
		ColumnOrder: []string{},
	}
}

// Clone returns a deep copy of b.
func (b Board) Clone() Board {
	out := Board{
		Tasks:       make(map[string]service.Task, len(b.Tasks)),
		Columns:     make(map[string]service.Column, len(b.Columns)),
		ColumnOrder: append([]string{}, b.ColumnOrder...),
	}
	for id, t := range b.Tasks {
		out.Tasks[id] = t.Clone()
	}
	for id, c := range b.Columns {
		out.Columns[id] = c.Clone()
	}
	return out
}

// OrderedColumns returns the columns in display order.
func (b Board) OrderedColumns() []service.Column {
	cols := make([]service.Column, 0, len(b.ColumnOrder))
	for _, id := range b.ColumnOrder {
		if c, ok := b.Columns[id]; ok {
			cols = append(cols, c)
		}
	}
	return cols
}

// ColumnTasks returns the tasks of a column in display order.
func (b Board) ColumnTasks(columnID string) []service.Task {
	col, ok := b.Columns[columnID]
	if !ok {
		return nil
	}
	tasks := make([]service.Task, 0, len(col.TaskIDs))
	for _, id := range col.TaskIDs {
		if t, ok := b.Tasks[id]; ok {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// Owner returns the column holding taskID and the task's index in it.
func (b Board) Owner(taskID string) (columnID string, index int, ok bool) {
	for _, cid := range b.ColumnOrder {
		for i, id := range b.Columns[cid].TaskIDs {
			if id == taskID {
				return cid, i, true
			}
		}
	}
	return "", -1, false
}

// Validate checks the board invariants:
// map keys match ids, ColumnOrder is a permutation of the Columns keys,
// every task id resolves and is owned by at most one column.
func (b Board) Validate() error {
	for id, t := range b.Tasks {
		if id == "" || t.ID != id {
			return fmt.Errorf("%w: task key %q holds task %q", ErrMalformedBoard, id, t.ID)
		}
	}
	for id, c := range b.Columns {
		if id == "" || c.ID != id {
			return fmt.Errorf("%w: column key %q holds column %q", ErrMalformedBoard, id, c.ID)
		}
	}

	if len(b.ColumnOrder) != len(b.Columns) {
		return fmt.Errorf("%w: column order has %d entries for %d columns", ErrMalformedBoard, len(b.ColumnOrder), len(b.Columns))
	}
	seenCols := make(map[string]bool, len(b.ColumnOrder))
	for _, id := range b.ColumnOrder {
		if _, ok := b.Columns[id]; !ok {
			return fmt.Errorf("%w: column order references unknown column %q", ErrMalformedBoard, id)
		}
		if seenCols[id] {
			return fmt.Errorf("%w: column %q appears twice in column order", ErrMalformedBoard, id)
		}
		seenCols[id] = true
	}

	owner := make(map[string]string)
	for _, cid := range b.ColumnOrder {
		for _, tid := range b.Columns[cid].TaskIDs {
			if _, ok := b.Tasks[tid]; !ok {
				return fmt.Errorf("%w: column %q references unknown task %q", ErrMalformedBoard, cid, tid)
			}
			if prev, dup := owner[tid]; dup {
				return fmt.Errorf("%w: task %q is in columns %q and %q", ErrMalformedBoard, tid, prev, cid)
			}
			owner[tid] = cid
		}
	}
	return nil
}
