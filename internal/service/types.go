// Package service defines the backend-agnostic interface for board operations.
package service

import "sort"

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a single card on the board.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"` // YYYY-MM-DD
	Priority    Priority `json:"priority"`
	Tags        []string `json:"tags,omitempty"`
}

// Equal compares two tasks field by field. Tags are compared as a multiset.
func (t Task) Equal(o Task) bool {
	if t.ID != o.ID || t.Title != o.Title || t.Description != o.Description ||
		t.Assignee != o.Assignee || t.DueDate != o.DueDate || t.Priority != o.Priority {
		return false
	}
	if len(t.Tags) != len(o.Tags) {
		return false
	}
	a := append([]string(nil), t.Tags...)
	b := append([]string(nil), o.Tags...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of t that shares no slices with it.
func (t Task) Clone() Task {
	t.Tags = append([]string(nil), t.Tags...)
	return t
}

// TaskFields carries the user-editable task fields for create and update.
// ID is ignored on create and filled in by the store on update.
type TaskFields struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Fields extracts the editable fields of t.
func (t Task) Fields() TaskFields {
	return TaskFields{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Assignee:    t.Assignee,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Tags:        append([]string(nil), t.Tags...),
	}
}

// Column is an ordered lane of task ids.
type Column struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	TaskIDs []string `json:"taskIds"`
}

// Clone returns a copy of c that shares no slices with it.
func (c Column) Clone() Column {
	c.TaskIDs = append([]string{}, c.TaskIDs...)
	return c
}

// Snapshot is the wire representation of a whole board as returned by GET board.
type Snapshot struct {
	Tasks       []Task   `json:"tasks"`
	Columns     []Column `json:"columns"`
	ColumnOrder []string `json:"columnOrder"`
}

// Move is the body of a move-task request.
type Move struct {
	TaskID              string `json:"taskId"`
	SourceColumnID      string `json:"sourceColumnId"`
	SourceIndex         int    `json:"sourceIndex"`
	DestinationColumnID string `json:"destinationColumnId"`
	DestinationIndex    int    `json:"destinationIndex"`
}
