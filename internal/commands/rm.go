package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"kboard/internal/board"
	"kboard/internal/config"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "kboard rm <task>" }
func (c *RmCmd) NeedsBoard() bool  { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, mgr *board.Manager, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return fail(errOut, fmt.Errorf("task %w", ErrRefRequired))
	}
	if err := ensureLoaded(ctx, mgr); err != nil {
		return fail(errOut, err)
	}

	task, colID, _, err := ResolveTask(mgr.Board(), strings.Join(args, " "))
	if err != nil {
		return fail(errOut, err)
	}
	if err := mgr.DeleteTask(ctx, task.ID, colID); err != nil {
		return fail(errOut, err)
	}
	return success(cfg, out)
}
