package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"kboard/internal/board"
	"kboard/internal/output"
	"kboard/internal/service"
)

// TaskRef is a positional task reference such as b3: column letter b, third task.
type TaskRef struct {
	Letter rune // 'a'-'z'
	Num    int  // 1-based position in the column
}

var (
	// ErrRefRequired indicates no task or column reference was provided.
	ErrRefRequired = errors.New("reference required")

	// ErrAmbiguousRef indicates a title matched more than one task or column.
	ErrAmbiguousRef = errors.New("ambiguous reference")
)

// ParseTaskRef parses the <letter><digits> form. ok is false for anything else.
func ParseTaskRef(ref string) (TaskRef, bool) {
	if len(ref) < 2 || !isLetter(rune(ref[0])) || !isAllDigits(ref[1:]) {
		return TaskRef{}, false
	}
	num, err := strconv.Atoi(ref[1:])
	if err != nil || num < 1 {
		return TaskRef{}, false
	}
	return TaskRef{Letter: rune(ref[0]), Num: num}, true
}

// ResolveColumn finds a column by id, letter (a), 1-based position (2) or
// case-insensitive title.
func ResolveColumn(b board.Board, ref string) (service.Column, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return service.Column{}, fmt.Errorf("column %w", ErrRefRequired)
	}
	if col, ok := b.Columns[ref]; ok {
		return col, nil
	}

	cols := b.OrderedColumns()
	if len(ref) == 1 && isLetter(rune(ref[0])) {
		i := int(ref[0] - 'a')
		if i < len(cols) {
			return cols[i], nil
		}
		return service.Column{}, fmt.Errorf("%w: %s", board.ErrUnknownColumn, ref)
	}
	if isAllDigits(ref) {
		n, err := strconv.Atoi(ref)
		if err == nil && n >= 1 && n <= len(cols) {
			return cols[n-1], nil
		}
		return service.Column{}, fmt.Errorf("%w: %s", board.ErrUnknownColumn, ref)
	}

	var found []service.Column
	for _, col := range cols {
		if strings.EqualFold(strings.TrimSpace(col.Title), ref) {
			found = append(found, col)
		}
	}
	switch len(found) {
	case 0:
		return service.Column{}, fmt.Errorf("%w: %s", board.ErrUnknownColumn, ref)
	case 1:
		return found[0], nil
	default:
		return service.Column{}, fmt.Errorf("%w: %d columns named %q", ErrAmbiguousRef, len(found), ref)
	}
}

// ResolveTask finds a task by id, positional reference (b3) or
// case-insensitive title. It also returns the owning column and the task's
// 0-based index in it.
func ResolveTask(b board.Board, ref string) (service.Task, string, int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return service.Task{}, "", -1, fmt.Errorf("task %w", ErrRefRequired)
	}

	if task, ok := b.Tasks[ref]; ok {
		colID, idx, _ := b.Owner(ref)
		return task, colID, idx, nil
	}

	if tr, ok := ParseTaskRef(ref); ok {
		cols := b.OrderedColumns()
		i := int(tr.Letter - 'a')
		if i >= len(cols) {
			return service.Task{}, "", -1, fmt.Errorf("%w: no column %c", board.ErrUnknownColumn, tr.Letter)
		}
		col := cols[i]
		if tr.Num > len(col.TaskIDs) {
			return service.Task{}, "", -1, fmt.Errorf("%w: %s (column %c has %d tasks)", board.ErrUnknownTask, ref, tr.Letter, len(col.TaskIDs))
		}
		id := col.TaskIDs[tr.Num-1]
		return b.Tasks[id], col.ID, tr.Num - 1, nil
	}

	type match struct {
		task  service.Task
		colID string
		idx   int
	}
	var found []match
	for _, col := range b.OrderedColumns() {
		for i, id := range col.TaskIDs {
			if t := b.Tasks[id]; strings.EqualFold(strings.TrimSpace(t.Title), ref) {
				found = append(found, match{t, col.ID, i})
			}
		}
	}
	switch len(found) {
	case 0:
		return service.Task{}, "", -1, fmt.Errorf("%w: %s", board.ErrUnknownTask, ref)
	case 1:
		return found[0].task, found[0].colID, found[0].idx, nil
	default:
		return service.Task{}, "", -1, fmt.Errorf("%w: %d tasks titled %q", ErrAmbiguousRef, len(found), ref)
	}
}

// ColumnLetter returns the letter a column is shown with. Columns past z
// have none.
func ColumnLetter(b board.Board, columnID string) (rune, bool) {
	for i, id := range b.ColumnOrder {
		if id == columnID {
			return output.ColumnLetter(i)
		}
	}
	return 0, false
}

// TaskRefString returns the positional reference of a task (b3), or its id
// when its column has no letter.
func TaskRefString(b board.Board, taskID string) string {
	colID, idx, ok := b.Owner(taskID)
	if !ok {
		return taskID
	}
	letter, ok := ColumnLetter(b, colID)
	if !ok {
		return taskID
	}
	return fmt.Sprintf("%c%d", letter, idx+1)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isLetter returns true if r is a lowercase letter a-z.
func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}
