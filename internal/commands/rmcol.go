package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"kboard/internal/board"
	"kboard/internal/config"
	"kboard/internal/exitcode"
)

func init() {
	Register(&RmColCmd{})
}

// RmColCmd implements the rmcol command.
type RmColCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmColCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmColCmd) Name() string      { return "rmcol" }
func (c *RmColCmd) Aliases() []string { return []string{"deletecol"} }
func (c *RmColCmd) Synopsis() string  { return "Delete a column" }
func (c *RmColCmd) Usage() string     { return "kboard rmcol [--force] <column>" }
func (c *RmColCmd) NeedsBoard() bool  { return true }

func (c *RmColCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmColCmd) Run(ctx context.Context, cfg *config.Config, mgr *board.Manager, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return fail(errOut, fmt.Errorf("column %w", ErrRefRequired))
	}
	if err := ensureLoaded(ctx, mgr); err != nil {
		return fail(errOut, err)
	}

	col, err := ResolveColumn(mgr.Board(), strings.Join(args, " "))
	if err != nil {
		return fail(errOut, err)
	}
	if len(col.TaskIDs) > 0 && !c.force {
		fmt.Fprintf(errOut, "error: column not empty: %s (%d tasks, use --force)\n", col.Title, len(col.TaskIDs))
		return exitcode.UserError
	}

	if err := mgr.DeleteColumn(ctx, col.ID, board.DeleteColumnOptions{Cascade: c.force}); err != nil {
		return fail(errOut, err)
	}
	return success(cfg, out)
}
