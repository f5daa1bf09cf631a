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
	Register(&AddColCmd{})
}

// AddColCmd implements the addcol command.
type AddColCmd struct{}

func (c *AddColCmd) Name() string      { return "addcol" }
func (c *AddColCmd) Aliases() []string { return []string{"createcol"} }
func (c *AddColCmd) Synopsis() string  { return "Create a column" }
func (c *AddColCmd) Usage() string     { return "kboard addcol <title...>" }
func (c *AddColCmd) NeedsBoard() bool  { return true }

func (c *AddColCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddColCmd) Run(ctx context.Context, cfg *config.Config, mgr *board.Manager, args []string, out, errOut io.Writer) int {
	title, err := board.NormalizeTitle(strings.Join(args, " "))
	if err != nil {
		return fail(errOut, err)
	}
	if err := ensureLoaded(ctx, mgr); err != nil {
		return fail(errOut, err)
	}

	for _, col := range mgr.Board().OrderedColumns() {
		if strings.EqualFold(strings.TrimSpace(col.Title), title) {
			fmt.Fprintf(errOut, "error: column already exists: %s\n", title)
			return exitcode.UserError
		}
	}

	col, err := mgr.CreateColumn(ctx, title)
	if err != nil {
		return fail(errOut, err)
	}
	if !cfg.Quiet {
		if letter, ok := ColumnLetter(mgr.Board(), col.ID); ok {
			fmt.Fprintf(out, "ok %c\n", letter)
			return exitcode.Success
		}
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
