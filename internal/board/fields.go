package board

import (
	"fmt"
	"strings"
	"time"

	"kboard/internal/service"
)

// DateLayout is the wire format of Task.DueDate.
const DateLayout = "2006-01-02"

// NormalizeTitle trims a task or column title and rejects empty ones.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	return title, nil
}

// NormalizeFields validates task fields before they are sent to the store.
// The title is trimmed, priority defaults to medium, empty tags are dropped.
func NormalizeFields(f service.TaskFields) (service.TaskFields, error) {
	title, err := NormalizeTitle(f.Title)
	if err != nil {
		return service.TaskFields{}, err
	}
	f.Title = title

	if f.Priority == "" {
		f.Priority = service.PriorityMedium
	}
	f.Priority = service.Priority(strings.ToLower(string(f.Priority)))
	if !f.Priority.Valid() {
		return service.TaskFields{}, fmt.Errorf("%w: %q (want low, medium or high)", ErrInvalidPriority, f.Priority)
	}

	f.DueDate = strings.TrimSpace(f.DueDate)
	if f.DueDate != "" {
		if _, err := time.Parse(DateLayout, f.DueDate); err != nil {
			return service.TaskFields{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDueDate, f.DueDate)
		}
	}

	var tags []string
	for _, tag := range f.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	f.Tags = tags
	return f, nil
}
