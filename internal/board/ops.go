package board

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OpState is the state of a single manager operation.
//
// Moves go idle -> optimistic-applied -> confirmed | reload-triggered.
// Every other mutation goes idle -> pending-remote -> applied | failed.
type OpState string

const (
	OpIdle              OpState = "idle"
	OpOptimisticApplied OpState = "optimistic-applied"
	OpConfirmed         OpState = "confirmed"
	OpReloadTriggered   OpState = "reload-triggered"
	OpPendingRemote     OpState = "pending-remote"
	OpApplied           OpState = "applied"
	OpFailed            OpState = "failed"
)

// Terminal reports whether no further transition follows s.
func (s OpState) Terminal() bool {
	switch s {
	case OpConfirmed, OpReloadTriggered, OpApplied, OpFailed:
		return true
	}
	return false
}

// Op identifies one operation and its current state.
type Op struct {
	ID    string
	Kind  string
	State OpState
}

type opTracker struct {
	op       Op
	log      logrus.FieldLogger
	observer func(Op)
}

func (m *Manager) begin(kind string) *opTracker {
	t := &opTracker{
		op:       Op{ID: uuid.NewString(), Kind: kind, State: OpIdle},
		observer: m.observer,
	}
	t.log = m.log.WithFields(logrus.Fields{"op_id": t.op.ID, "op": kind})
	return t
}

func (t *opTracker) to(state OpState) {
	t.log.WithFields(logrus.Fields{"from": t.op.State, "to": state}).Debug("board.op.transition")
	t.op.State = state
	if t.observer != nil {
		t.observer(t.op)
	}
}
