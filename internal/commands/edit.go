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
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the given flags change the task.
type EditCmd struct {
	title     optString
	desc      optString
	assignee  optString
	due       optString
	priority  optString
	tags      stringList
	clearTags bool
}

// SetTitle sets the new title (for testing).
func (c *EditCmd) SetTitle(title string) { _ = c.title.Set(title) }

// SetPriority sets the new priority (for testing).
func (c *EditCmd) SetPriority(p string) { _ = c.priority.Set(p) }

// SetDue sets the new due date (for testing).
func (c *EditCmd) SetDue(due string) { _ = c.due.Set(due) }

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "kboard edit [--title <t>] [--desc <text>] [--assignee <name>] [--due YYYY-MM-DD] [--priority <p>] [--tag <tag>]... [--clear-tags] <task>"
}
func (c *EditCmd) NeedsBoard() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.assignee, "assignee", "")
	fs.Var(&c.due, "due", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.tags, "tag", "")
	fs.BoolVar(&c.clearTags, "clear-tags", false, "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, mgr *board.Manager, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return fail(errOut, fmt.Errorf("task %w", ErrRefRequired))
	}
	if !c.changes() {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	if err := ensureLoaded(ctx, mgr); err != nil {
		return fail(errOut, err)
	}
	task, _, _, err := ResolveTask(mgr.Board(), strings.Join(args, " "))
	if err != nil {
		return fail(errOut, err)
	}

	fields := task.Fields()
	c.title.apply(&fields.Title)
	c.desc.apply(&fields.Description)
	c.assignee.apply(&fields.Assignee)
	c.due.apply(&fields.DueDate)
	if c.priority.set {
		fields.Priority = service.Priority(c.priority.v)
	}
	if c.clearTags {
		fields.Tags = nil
	}
	fields.Tags = append(fields.Tags, c.tags...)

	if _, err := mgr.UpdateTask(ctx, task.ID, fields); err != nil {
		return fail(errOut, err)
	}
	return success(cfg, out)
}

func (c *EditCmd) changes() bool {
	return c.title.set || c.desc.set || c.assignee.set || c.due.set ||
		c.priority.set || len(c.tags) > 0 || c.clearTags
}
