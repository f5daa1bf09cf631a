package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"kboard/internal/board"
	"kboard/internal/config"
	"kboard/internal/exitcode"
)

func init() {
	Register(&MoveCmd{})
}

// errMoveRejected reports a move the store refused after it was shown locally.
var errMoveRejected = errors.New("move rejected by board store, board reloaded")

// MoveCmd implements the move command: a drag-and-drop of one task.
type MoveCmd struct {
	noWait bool
}

// SetNoWait makes Run return without waiting for the store (for testing).
func (c *MoveCmd) SetNoWait(v bool) {
	c.noWait = v
}

func (c *MoveCmd) Name() string      { return "move" }
func (c *MoveCmd) Aliases() []string { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string  { return "Move a task to a column and position" }
func (c *MoveCmd) Usage() string     { return "kboard move [--no-wait] <task> <column> [<position>]" }
func (c *MoveCmd) NeedsBoard() bool  { return true }

func (c *MoveCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.noWait, "no-wait", false, "")
}

func (c *MoveCmd) Run(ctx context.Context, cfg *config.Config, mgr *board.Manager, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintf(errOut, "error: usage: %s\n", c.Usage())
		return exitcode.UserError
	}
	if len(args) > 3 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[3])
		return exitcode.UserError
	}

	if err := ensureLoaded(ctx, mgr); err != nil {
		return fail(errOut, err)
	}
	b := mgr.Board()

	task, srcID, srcIdx, err := ResolveTask(b, args[0])
	if err != nil {
		return fail(errOut, err)
	}
	if srcID == "" {
		return fail(errOut, fmt.Errorf("%w: task %s is in no column", board.ErrInvalidMove, args[0]))
	}
	dst, err := ResolveColumn(b, args[1])
	if err != nil {
		return fail(errOut, err)
	}

	// Positions count against the destination with the task already lifted.
	last := len(dst.TaskIDs)
	if dst.ID == srcID {
		last--
	}
	dstIdx := last
	if len(args) == 3 {
		pos, err := strconv.Atoi(args[2])
		if err != nil || pos < 1 || pos > last+1 {
			return fail(errOut, fmt.Errorf("%w: position %s out of range 1-%d", board.ErrInvalidMove, args[2], last+1))
		}
		dstIdx = pos - 1
	}

	ev := board.MoveEvent{
		TaskID:              task.ID,
		SourceColumnID:      srcID,
		SourceIndex:         srcIdx,
		DestinationColumnID: dst.ID,
		DestinationIndex:    dstIdx,
	}
	if err := mgr.MoveTask(ctx, ev); err != nil {
		return fail(errOut, err)
	}

	if !c.noWait && !board.IsNoop(ev) {
		mgr.Wait()
		colID, idx, ok := mgr.Board().Owner(task.ID)
		if !ok || colID != dst.ID || idx != dstIdx {
			return fail(errOut, errMoveRejected)
		}
	}
	return success(cfg, out)
}
