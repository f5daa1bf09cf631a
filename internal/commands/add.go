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
	"kboard/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	column   string
	desc     string
	assignee string
	due      string
	priority string
	tags     stringList
}

// SetColumn sets the target column reference (for testing).
func (c *AddCmd) SetColumn(ref string) {
	c.column = ref
}

// SetFields sets the optional task fields (for testing).
func (c *AddCmd) SetFields(desc, assignee, due, priority string, tags ...string) {
	c.desc, c.assignee, c.due, c.priority = desc, assignee, due, priority
	c.tags = tags
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "kboard add [--column <col>] [--desc <text>] [--assignee <name>] [--due YYYY-MM-DD] [--priority low|medium|high] [--tag <tag>]... <title...>"
}
func (c *AddCmd) NeedsBoard() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.tags = nil
	fs.StringVar(&c.column, "column", "", "")
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.assignee, "assignee", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.Var(&c.tags, "tag", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, mgr *board.Manager, args []string, out, errOut io.Writer) int {
	fields, err := board.NormalizeFields(service.TaskFields{
		Title:       strings.Join(args, " "),
		Description: c.desc,
		Assignee:    strings.TrimSpace(c.assignee),
		DueDate:     c.due,
		Priority:    service.Priority(c.priority),
		Tags:        c.tags,
	})
	if err != nil {
		return fail(errOut, err)
	}

	if err := ensureLoaded(ctx, mgr); err != nil {
		return fail(errOut, err)
	}
	b := mgr.Board()

	var col service.Column
	switch {
	case c.column != "":
		col, err = ResolveColumn(b, c.column)
		if err != nil {
			return fail(errOut, err)
		}
	case len(b.ColumnOrder) > 0:
		col = b.Columns[b.ColumnOrder[0]]
	default:
		fmt.Fprintln(errOut, "error: board has no columns (run: kboard addcol <title>)")
		return exitcode.UserError
	}

	task, err := mgr.CreateTask(ctx, col.ID, fields)
	if err != nil {
		return fail(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "ok %s\n", TaskRefString(mgr.Board(), task.ID))
	}
	return exitcode.Success
}
