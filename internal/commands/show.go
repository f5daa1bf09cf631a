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
	"kboard/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
// Handles both `kboard` (no args) and `kboard show <task>`.
type ShowCmd struct {
	columns bool
}

// SetColumnsOnly limits output to the column list (for testing).
func (c *ShowCmd) SetColumnsOnly(v bool) {
	c.columns = v
}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return []string{"ls"} }
func (c *ShowCmd) Synopsis() string  { return "Print the board or one task" }
func (c *ShowCmd) Usage() string     { return "kboard show [--columns] [<task>]" }
func (c *ShowCmd) NeedsBoard() bool  { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.columns, "columns", false, "")
}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, mgr *board.Manager, args []string, out, errOut io.Writer) int {
	if err := ensureLoaded(ctx, mgr); err != nil {
		return fail(errOut, err)
	}
	b := mgr.Board()

	if len(args) > 0 {
		task, colID, _, err := ResolveTask(b, strings.Join(args, " "))
		if err != nil {
			return fail(errOut, err)
		}
		output.FormatTaskDetail(out, b.Columns[colID], task)
		return exitcode.Success
	}

	if len(b.ColumnOrder) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no columns (run: kboard addcol <title>)")
		}
		return exitcode.Success
	}

	if c.columns {
		output.FormatColumns(out, b)
		return exitcode.Success
	}
	output.FormatBoard(out, b)
	return exitcode.Success
}
