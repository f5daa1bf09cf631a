// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"kboard/internal/board"
	"kboard/internal/service"
)

const (
	// ColumnSeparator is the separator line around column headers.
	ColumnSeparator = "------------"

	// MaxLetters is the number of columns that get a letter reference.
	MaxLetters = 26
)

// ColumnLetter returns the reference letter of the column at 0-based index i.
// Columns past the 26th have none.
func ColumnLetter(i int) (rune, bool) {
	if i < 0 || i >= MaxLetters {
		return 0, false
	}
	return rune('a' + i), true
}

// FormatBoard prints every column in board order with its tasks.
func FormatBoard(w io.Writer, b board.Board) {
	for i, col := range b.OrderedColumns() {
		letter, _ := ColumnLetter(i)
		FormatColumnHeader(w, letter, col)
		tasks := b.ColumnTasks(col.ID)
		if len(tasks) == 0 {
			fmt.Fprintln(w, "      (empty)")
			continue
		}
		for j, task := range tasks {
			FormatTaskWithLetter(w, letter, j+1, task)
		}
	}
}

// FormatColumnHeader formats a column section header.
// A zero letter prints "-" in its place.
func FormatColumnHeader(w io.Writer, letter rune, col service.Column) {
	ref := "-"
	if letter != 0 {
		ref = string(letter)
	}
	fmt.Fprintln(w, ColumnSeparator)
	fmt.Fprintf(w, "%s  %s (%d)\n", ref, normalizeTitle(col.Title), len(col.TaskIDs))
	fmt.Fprintln(w, ColumnSeparator)
}

// FormatTaskWithLetter formats a task line inside a column section.
// Format: "{REF:>6}  {TITLE}{DETAILS}\n", REF being letter+number like b3.
func FormatTaskWithLetter(w io.Writer, letter rune, num int, task service.Task) {
	ref := fmt.Sprintf("%d", num)
	if letter != 0 {
		ref = fmt.Sprintf("%c%d", letter, num)
	}
	fmt.Fprintf(w, "%6s  %s%s\n", ref, normalizeTitle(task.Title), details(task))
}

// FormatColumns prints one line per column: letter, title and task count.
func FormatColumns(w io.Writer, b board.Board) {
	for i, col := range b.OrderedColumns() {
		ref := "-"
		if letter, ok := ColumnLetter(i); ok {
			ref = string(letter)
		}
		fmt.Fprintf(w, "%s  %s (%d)  [%s]\n", ref, normalizeTitle(col.Title), len(col.TaskIDs), col.ID)
	}
}

// FormatTaskDetail prints every field of a task.
func FormatTaskDetail(w io.Writer, column service.Column, task service.Task) {
	fmt.Fprintf(w, "id:        %s\n", task.ID)
	fmt.Fprintf(w, "title:     %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "column:    %s\n", normalizeTitle(column.Title))
	fmt.Fprintf(w, "priority:  %s\n", task.Priority)
	if task.Assignee != "" {
		fmt.Fprintf(w, "assignee:  %s\n", task.Assignee)
	}
	if task.DueDate != "" {
		fmt.Fprintf(w, "due:       %s\n", task.DueDate)
	}
	if len(task.Tags) > 0 {
		fmt.Fprintf(w, "tags:      %s\n", strings.Join(task.Tags, ", "))
	}
	if desc := strings.TrimSpace(task.Description); desc != "" {
		fmt.Fprintln(w, "description:")
		for _, line := range strings.Split(desc, "\n") {
			fmt.Fprintf(w, "  %s\n", strings.TrimRight(line, "\r"))
		}
	}
}

// details renders the non-default fields shown after a task title.
func details(task service.Task) string {
	var parts []string
	if task.Priority != "" && task.Priority != service.PriorityMedium {
		parts = append(parts, "["+string(task.Priority)+"]")
	}
	if task.Assignee != "" {
		parts = append(parts, "@"+task.Assignee)
	}
	if task.DueDate != "" {
		parts = append(parts, "due "+task.DueDate)
	}
	for _, tag := range task.Tags {
		parts = append(parts, "#"+tag)
	}
	if len(parts) == 0 {
		return ""
	}
	return "  " + strings.Join(parts, " ")
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
