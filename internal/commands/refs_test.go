package commands_test

import (
	"errors"
	"testing"

	"kboard/internal/board"
	"kboard/internal/commands"
	"kboard/internal/service"
)

func refBoard(t *testing.T) board.Board {
	t.Helper()
	b, err := board.Normalize(service.Snapshot{
		Tasks: []service.Task{
			{ID: "t1", Title: "Write tests"},
			{ID: "t2", Title: "Deploy"},
			{ID: "t3", Title: "deploy"},
			{ID: "t4", Title: "Review"},
		},
		Columns: []service.Column{
			{ID: "c-todo", Title: "To Do", TaskIDs: []string{"t1", "t2"}},
			{ID: "c-doing", Title: "Doing", TaskIDs: []string{"t4"}},
			{ID: "c-done", Title: "Done", TaskIDs: []string{"t3"}},
			{ID: "c-dup", Title: "done", TaskIDs: []string{}},
		},
		ColumnOrder: []string{"c-todo", "c-doing", "c-done", "c-dup"},
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return b
}

func TestParseTaskRef(t *testing.T) {
	tests := []struct {
		input string
		want  commands.TaskRef
		ok    bool
	}{
		{"a1", commands.TaskRef{Letter: 'a', Num: 1}, true},
		{"b12", commands.TaskRef{Letter: 'b', Num: 12}, true},
		{"z3", commands.TaskRef{Letter: 'z', Num: 3}, true},
		{"a0", commands.TaskRef{}, false},
		{"A1", commands.TaskRef{}, false},
		{"a", commands.TaskRef{}, false},
		{"1", commands.TaskRef{}, false},
		{"ab1", commands.TaskRef{}, false},
		{"a1b", commands.TaskRef{}, false},
		{"a-1", commands.TaskRef{}, false},
		{"", commands.TaskRef{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := commands.ParseTaskRef(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseTaskRef(%q) = %+v, %v; want %+v, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResolveColumn(t *testing.T) {
	b := refBoard(t)
	tests := []struct {
		ref    string
		wantID string
		err    error
	}{
		{"c-doing", "c-doing", nil},
		{"a", "c-todo", nil},
		{"c", "c-done", nil},
		{"2", "c-doing", nil},
		{"to do", "c-todo", nil},
		{" Doing ", "c-doing", nil},
		{"e", "", board.ErrUnknownColumn},
		{"5", "", board.ErrUnknownColumn},
		{"0", "", board.ErrUnknownColumn},
		{"Archive", "", board.ErrUnknownColumn},
		{"DONE", "", commands.ErrAmbiguousRef},
		{"  ", "", commands.ErrRefRequired},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			col, err := commands.ResolveColumn(b, tt.ref)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Errorf("ResolveColumn(%q) error = %v, want %v", tt.ref, err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveColumn(%q): %v", tt.ref, err)
			}
			if col.ID != tt.wantID {
				t.Errorf("ResolveColumn(%q) = %s, want %s", tt.ref, col.ID, tt.wantID)
			}
		})
	}
}

func TestResolveTask(t *testing.T) {
	b := refBoard(t)
	tests := []struct {
		ref     string
		wantID  string
		wantCol string
		wantIdx int
		err     error
	}{
		{"t4", "t4", "c-doing", 0, nil},
		{"a2", "t2", "c-todo", 1, nil},
		{"c1", "t3", "c-done", 0, nil},
		{"write TESTS", "t1", "c-todo", 0, nil},
		{"a3", "", "", -1, board.ErrUnknownTask},
		{"d1", "", "", -1, board.ErrUnknownTask},
		{"f1", "", "", -1, board.ErrUnknownColumn},
		{"Deploy", "", "", -1, commands.ErrAmbiguousRef},
		{"nothing", "", "", -1, board.ErrUnknownTask},
		{"", "", "", -1, commands.ErrRefRequired},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			task, colID, idx, err := commands.ResolveTask(b, tt.ref)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Errorf("ResolveTask(%q) error = %v, want %v", tt.ref, err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveTask(%q): %v", tt.ref, err)
			}
			if task.ID != tt.wantID || colID != tt.wantCol || idx != tt.wantIdx {
				t.Errorf("ResolveTask(%q) = %s, %s, %d; want %s, %s, %d",
					tt.ref, task.ID, colID, idx, tt.wantID, tt.wantCol, tt.wantIdx)
			}
		})
	}
}

func TestTaskRefString(t *testing.T) {
	b := refBoard(t)
	for id, want := range map[string]string{"t1": "a1", "t2": "a2", "t4": "b1", "t3": "c1", "ghost": "ghost"} {
		if got := commands.TaskRefString(b, id); got != want {
			t.Errorf("TaskRefString(%s) = %q, want %q", id, got, want)
		}
	}
	if letter, ok := commands.ColumnLetter(b, "c-dup"); !ok || letter != 'd' {
		t.Errorf("ColumnLetter(c-dup) = %c, %v", letter, ok)
	}
	if _, ok := commands.ColumnLetter(b, "missing"); ok {
		t.Error("ColumnLetter(missing) should fail")
	}
}
