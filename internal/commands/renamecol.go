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
	Register(&RenameColCmd{})
}

// RenameColCmd implements the renamecol command.
type RenameColCmd struct{}

func (c *RenameColCmd) Name() string      { return "renamecol" }
func (c *RenameColCmd) Aliases() []string { return []string{"editcol"} }
func (c *RenameColCmd) Synopsis() string  { return "Rename a column" }
func (c *RenameColCmd) Usage() string     { return "kboard renamecol <column> <title...>" }
func (c *RenameColCmd) NeedsBoard() bool  { return true }

func (c *RenameColCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RenameColCmd) Run(ctx context.Context, cfg *config.Config, mgr *board.Manager, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return fail(errOut, fmt.Errorf("column %w", ErrRefRequired))
	}
	title, err := board.NormalizeTitle(strings.Join(args[1:], " "))
	if err != nil {
		return fail(errOut, err)
	}
	if err := ensureLoaded(ctx, mgr); err != nil {
		return fail(errOut, err)
	}

	col, err := ResolveColumn(mgr.Board(), args[0])
	if err != nil {
		return fail(errOut, err)
	}
	if col.Title == title {
		if !cfg.Quiet {
			fmt.Fprintln(out, "unchanged")
		}
		return exitcode.Success
	}
	if _, err := mgr.UpdateColumn(ctx, col.ID, title); err != nil {
		return fail(errOut, err)
	}
	return success(cfg, out)
}
