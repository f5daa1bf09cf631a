package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"kboard/internal/board"
	"kboard/internal/config"
	"kboard/internal/exitcode"
)

func init() {
	Register(&InitCmd{})
}

// InitCmd implements the init command.
type InitCmd struct{}

func (c *InitCmd) Name() string      { return "init" }
func (c *InitCmd) Aliases() []string { return nil }
func (c *InitCmd) Synopsis() string  { return "Create the board on the store if missing" }
func (c *InitCmd) Usage() string     { return "kboard init" }
func (c *InitCmd) NeedsBoard() bool  { return true }

func (c *InitCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *InitCmd) Run(ctx context.Context, cfg *config.Config, mgr *board.Manager, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if err := mgr.Initialize(ctx); err != nil {
		return fail(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "ok (%d columns)\n", len(mgr.Board().ColumnOrder))
	}
	return exitcode.Success
}
