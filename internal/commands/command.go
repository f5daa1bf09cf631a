// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"kboard/internal/board"
	"kboard/internal/config"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsBoard returns true if the command talks to the Board Store.
	// Commands like help, version, login, logout return false.
	NeedsBoard() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, settings).
	// mgr is nil if NeedsBoard() returns false. It is not loaded yet.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, mgr *board.Manager, args []string, out, errOut io.Writer) int
}

// InputCommand is implemented by commands that read standard input.
// The dispatcher calls SetInput before Run.
type InputCommand interface {
	SetInput(r io.Reader)
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// optString is a string flag that remembers whether it was given.
type optString struct {
	set bool
	v   string
}

func (o *optString) String() string { return o.v }

func (o *optString) Set(v string) error {
	o.set, o.v = true, v
	return nil
}

// apply overwrites dst when the flag was given.
func (o optString) apply(dst *string) {
	if o.set {
		*dst = o.v
	}
}
