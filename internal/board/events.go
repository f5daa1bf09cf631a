package board

import (
	"context"
	"io"
)

// EventSource produces drag-and-drop moves. Next returns io.EOF when the
// source is exhausted.
type EventSource interface {
	Next(ctx context.Context) (MoveEvent, error)
}

// SliceSource replays a fixed list of events.
type SliceSource struct {
	events []MoveEvent
}

// NewSliceSource returns a source yielding events in order.
func NewSliceSource(events ...MoveEvent) *SliceSource {
	return &SliceSource{events: events}
}

// Next implements EventSource.
func (s *SliceSource) Next(ctx context.Context) (MoveEvent, error) {
	if err := ctx.Err(); err != nil {
		return MoveEvent{}, err
	}
	if len(s.events) == 0 {
		return MoveEvent{}, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}
