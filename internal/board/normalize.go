package board

import (
	"fmt"
	"sort"

	"kboard/internal/service"
)

// Normalize turns the store's wire snapshot into a Board.
// When the snapshot carries no column order, the order of the columns list is used.
func Normalize(s service.Snapshot) (Board, error) {
	b := New()

	for _, t := range s.Tasks {
		if _, dup := b.Tasks[t.ID]; dup {
			return Board{}, fmt.Errorf("%w: duplicate task %q", ErrMalformedBoard, t.ID)
		}
		b.Tasks[t.ID] = t.Clone()
	}

	for _, c := range s.Columns {
		if _, dup := b.Columns[c.ID]; dup {
			return Board{}, fmt.Errorf("%w: duplicate column %q", ErrMalformedBoard, c.ID)
		}
		b.Columns[c.ID] = c.Clone()
	}

	if len(s.ColumnOrder) > 0 {
		b.ColumnOrder = append(b.ColumnOrder, s.ColumnOrder...)
	} else {
		for _, c := range s.Columns {
			b.ColumnOrder = append(b.ColumnOrder, c.ID)
		}
	}

	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}

// Denormalize renders b in the wire shape. Columns follow ColumnOrder; tasks
// follow column order, with tasks owned by no column last, sorted by id.
func Denormalize(b Board) service.Snapshot {
	s := service.Snapshot{
		Tasks:       make([]service.Task, 0, len(b.Tasks)),
		Columns:     make([]service.Column, 0, len(b.ColumnOrder)),
		ColumnOrder: append([]string{}, b.ColumnOrder...),
	}

	placed := make(map[string]bool, len(b.Tasks))
	for _, col := range b.OrderedColumns() {
		s.Columns = append(s.Columns, col.Clone())
		for _, id := range col.TaskIDs {
			if t, ok := b.Tasks[id]; ok && !placed[id] {
				s.Tasks = append(s.Tasks, t.Clone())
				placed[id] = true
			}
		}
	}

	var orphans []string
	for id := range b.Tasks {
		if !placed[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		s.Tasks = append(s.Tasks, b.Tasks[id].Clone())
	}
	return s
}
