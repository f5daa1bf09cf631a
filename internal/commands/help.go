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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "kboard help" }
func (c *HelpCmd) NeedsBoard() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, mgr *board.Manager, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  kboard                                             Print the board
  kboard show [common flags] [--columns] [<task>]    Print the board, columns or one task
  kboard add [common flags] [--column <col>] [--desc <text>] [--assignee <name>]
             [--due YYYY-MM-DD] [--priority low|medium|high] [--tag <tag>]... <title...>
  kboard edit [common flags] [--title <t>] [--desc <text>] [--assignee <name>]
              [--due YYYY-MM-DD] [--priority <p>] [--tag <tag>]... [--clear-tags] <task>
  kboard rm [common flags] <task>
  kboard move [common flags] [--no-wait] <task> <column> [<position>]
  kboard addcol [common flags] <title...>
  kboard renamecol [common flags] <column> <title...>
  kboard rmcol [common flags] [--force] <column>
  kboard drag [common flags] [--show] < events.jsonl
  kboard shell [common flags]
  kboard init [common flags]
  kboard login [common flags]
  kboard logout [common flags]
  kboard help
  kboard version

References:
  <task>     task id, column letter + position (b3) or title
  <column>   column id, letter (b), position (2) or title

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
