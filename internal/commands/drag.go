package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"

	"kboard/internal/board"
	"kboard/internal/config"
	"kboard/internal/exitcode"
	"kboard/internal/output"
)

func init() {
	Register(&DragCmd{})
}

// JSONLineSource reads one move event per line, in the Board Store's
// move-task body format. Blank lines and lines starting with # are skipped.
type JSONLineSource struct {
	scanner *bufio.Scanner
	line    int
}

// NewJSONLineSource returns a board.EventSource reading from r.
func NewJSONLineSource(r io.Reader) *JSONLineSource {
	return &JSONLineSource{scanner: bufio.NewScanner(r)}
}

// Next implements board.EventSource.
func (s *JSONLineSource) Next(ctx context.Context) (board.MoveEvent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return board.MoveEvent{}, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return board.MoveEvent{}, err
			}
			return board.MoveEvent{}, io.EOF
		}
		s.line++
		text := strings.TrimSpace(s.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var ev board.MoveEvent
		if err := sonic.ConfigStd.UnmarshalFromString(text, &ev); err != nil {
			return board.MoveEvent{}, fmt.Errorf("line %d: invalid move event: %w", s.line, err)
		}
		if ev.TaskID == "" || ev.SourceColumnID == "" || ev.DestinationColumnID == "" {
			return board.MoveEvent{}, fmt.Errorf("line %d: move event needs taskId, sourceColumnId and destinationColumnId", s.line)
		}
		return ev, nil
	}
}

// DragCmd implements the drag command: it replays drag-and-drop events
// from standard input against the board.
type DragCmd struct {
	in   io.Reader
	show bool
}

// SetInput implements InputCommand.
func (c *DragCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *DragCmd) Name() string      { return "drag" }
func (c *DragCmd) Aliases() []string { return nil }
func (c *DragCmd) Synopsis() string  { return "Apply move events read from stdin" }
func (c *DragCmd) Usage() string     { return "kboard drag [--show] < events.jsonl" }
func (c *DragCmd) NeedsBoard() bool  { return true }

func (c *DragCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.show, "show", false, "")
}

func (c *DragCmd) Run(ctx context.Context, cfg *config.Config, mgr *board.Manager, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	in := c.in
	if in == nil {
		in = os.Stdin
	}

	if err := ensureLoaded(ctx, mgr); err != nil {
		return fail(errOut, err)
	}

	err := mgr.Consume(ctx, NewJSONLineSource(in))
	mgr.Wait()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if c.show {
		output.FormatBoard(out, mgr.Board())
		return exitcode.Success
	}
	return success(cfg, out)
}
