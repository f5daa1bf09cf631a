package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"kboard/internal/board"
	"kboard/internal/config"
	"kboard/internal/exitcode"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements the shell command: an interactive session over one
// board manager. Moves show up immediately and reconcile in the background.
type ShellCmd struct {
	in       io.Reader
	registry *Registry
}

// SetInput implements InputCommand.
func (c *ShellCmd) SetInput(r io.Reader) {
	c.in = r
}

// SetRegistry sets the registry commands are looked up in (for testing).
func (c *ShellCmd) SetRegistry(r *Registry) {
	c.registry = r
}

func (c *ShellCmd) Name() string      { return "shell" }
func (c *ShellCmd) Aliases() []string { return []string{"sh"} }
func (c *ShellCmd) Synopsis() string  { return "Interactive session" }
func (c *ShellCmd) Usage() string     { return "kboard shell" }
func (c *ShellCmd) NeedsBoard() bool  { return true }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, cfg *config.Config, mgr *board.Manager, args []string, out, errOut io.Writer) int {
	in := c.in
	if in == nil {
		in = os.Stdin
	}
	registry := c.registry
	if registry == nil {
		registry = DefaultRegistry
	}
	prompt := isTerminal(in) && !cfg.Quiet

	if err := mgr.Load(ctx); err != nil {
		return fail(errOut, err)
	}

	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(out, "kboard> ")
		}
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		fields, err := splitArgs(scanner.Text())
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			continue
		}
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "exit", "quit":
			return exitcode.Success
		case "reload":
			if err := mgr.Load(ctx); err != nil {
				fail(errOut, err)
				continue
			}
			success(cfg, out)
			continue
		case "wait":
			mgr.Wait()
			continue
		case "help":
			c.printHelp(registry, out)
			continue
		}

		cmd, ok := registry.Find(fields[0])
		if !ok || !shellable(cmd) {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", fields[0])
			continue
		}
		c.runLine(ctx, cfg, mgr, cmd, fields[1:], out, errOut)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

func (c *ShellCmd) runLine(ctx context.Context, cfg *config.Config, mgr *board.Manager, cmd Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return cmd.Run(ctx, cfg, mgr, fs.Args(), out, errOut)
}

func (c *ShellCmd) printHelp(registry *Registry, out io.Writer) {
	for _, cmd := range registry.Filter(shellable) {
		fmt.Fprintf(out, "  %-10s %s\n", cmd.Name(), cmd.Synopsis())
	}
	fmt.Fprintf(out, "  %-10s %s\n", "reload", "Fetch the board again")
	fmt.Fprintf(out, "  %-10s %s\n", "wait", "Wait for pending moves")
	fmt.Fprintf(out, "  %-10s %s\n", "exit", "Leave the shell")
}

// shellable reports whether cmd can run inside a shell session.
func shellable(cmd Command) bool {
	if _, reads := cmd.(InputCommand); reads {
		return false
	}
	return cmd.NeedsBoard()
}

var errUnterminatedQuote = errors.New("unterminated quote")

// splitArgs splits a line into words. Single and double quotes group words;
// a backslash escapes the next character outside single quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped, inWord = true, true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote, inWord = r, true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 || escaped {
		return nil, errUnterminatedQuote
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
