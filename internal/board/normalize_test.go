package board_test

import (
	"errors"
	"reflect"
	"testing"

	"kboard/internal/board"
	"kboard/internal/service"
)

func TestNormalize(t *testing.T) {
	snap := service.Snapshot{
		Tasks: []service.Task{
			{ID: "t1", Title: "one"},
			{ID: "t2", Title: "two"},
		},
		Columns: []service.Column{
			{ID: "a", Title: "A", TaskIDs: []string{"t2"}},
			{ID: "b", Title: "B", TaskIDs: []string{"t1"}},
		},
		ColumnOrder: []string{"b", "a"},
	}
	b, err := board.Normalize(snap)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !reflect.DeepEqual(b.ColumnOrder, []string{"b", "a"}) {
		t.Errorf("ColumnOrder = %v", b.ColumnOrder)
	}
	if got := b.ColumnTasks("a"); len(got) != 1 || got[0].Title != "two" {
		t.Errorf("ColumnTasks(a) = %+v", got)
	}

	back := board.Denormalize(b)
	if !reflect.DeepEqual(back.ColumnOrder, snap.ColumnOrder) {
		t.Errorf("Denormalize order = %v", back.ColumnOrder)
	}
	if back.Columns[0].ID != "b" || back.Tasks[0].ID != "t1" {
		t.Errorf("Denormalize should follow column order: %+v", back)
	}
}

func TestNormalizeMissingColumnOrder(t *testing.T) {
	b, err := board.Normalize(service.Snapshot{
		Columns: []service.Column{{ID: "x", Title: "X"}, {ID: "y", Title: "Y"}},
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !reflect.DeepEqual(b.ColumnOrder, []string{"x", "y"}) {
		t.Errorf("ColumnOrder = %v", b.ColumnOrder)
	}
}

func TestNormalizeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		snap service.Snapshot
	}{
		{"duplicate task", service.Snapshot{Tasks: []service.Task{{ID: "t"}, {ID: "t"}}}},
		{"duplicate column", service.Snapshot{Columns: []service.Column{{ID: "c"}, {ID: "c"}}}},
		{"dangling task id", service.Snapshot{
			Columns:     []service.Column{{ID: "c", TaskIDs: []string{"ghost"}}},
			ColumnOrder: []string{"c"},
		}},
		{"task in two columns", service.Snapshot{
			Tasks:       []service.Task{{ID: "t"}},
			Columns:     []service.Column{{ID: "a", TaskIDs: []string{"t"}}, {ID: "b", TaskIDs: []string{"t"}}},
			ColumnOrder: []string{"a", "b"},
		}},
		{"order is not a permutation", service.Snapshot{
			Columns:     []service.Column{{ID: "a"}, {ID: "b"}},
			ColumnOrder: []string{"a", "a"},
		}},
		{"order names unknown column", service.Snapshot{
			Columns:     []service.Column{{ID: "a"}},
			ColumnOrder: []string{"z"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := board.Normalize(tt.snap); !errors.Is(err, board.ErrMalformedBoard) {
				t.Errorf("expected ErrMalformedBoard, got %v", err)
			}
		})
	}
}

func TestNormalizeFields(t *testing.T) {
	f, err := board.NormalizeFields(service.TaskFields{
		Title:    "  Ship  ",
		Priority: "HIGH",
		DueDate:  " 2026-03-01 ",
		Tags:     []string{"a", " ", " b "},
	})
	if err != nil {
		t.Fatalf("NormalizeFields: %v", err)
	}
	if f.Title != "Ship" || f.Priority != service.PriorityHigh || f.DueDate != "2026-03-01" {
		t.Errorf("unexpected fields %+v", f)
	}
	if !reflect.DeepEqual(f.Tags, []string{"a", "b"}) {
		t.Errorf("Tags = %v", f.Tags)
	}

	f, err = board.NormalizeFields(service.TaskFields{Title: "x"})
	if err != nil || f.Priority != service.PriorityMedium {
		t.Errorf("default priority = %q, err %v", f.Priority, err)
	}

	for _, tt := range []struct {
		in   service.TaskFields
		want error
	}{
		{service.TaskFields{Title: "   "}, board.ErrTitleRequired},
		{service.TaskFields{Title: "x", Priority: "urgent"}, board.ErrInvalidPriority},
		{service.TaskFields{Title: "x", DueDate: "03/01/2026"}, board.ErrInvalidDueDate},
	} {
		if _, err := board.NormalizeFields(tt.in); !errors.Is(err, tt.want) {
			t.Errorf("NormalizeFields(%+v) = %v, want %v", tt.in, err, tt.want)
		}
	}
}
