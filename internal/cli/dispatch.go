package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"kboard/internal/board"
	"kboard/internal/commands"
	"kboard/internal/config"
	"kboard/internal/exitcode"
	"kboard/internal/logging"
	"kboard/internal/service"
)

// DefaultCommand runs when no command is given.
const DefaultCommand = "show"

// StoreFactory creates the Board Store from config.
// Used to inject the backend during dispatch.
type StoreFactory func(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (service.Store, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  StoreFactory
	in       io.Reader
	opts     []board.Option
}

// NewDispatcher creates a new dispatcher with the given registry and store
// factory. A nil factory means DefaultStoreFactory.
func NewDispatcher(registry *commands.Registry, factory StoreFactory) *Dispatcher {
	if factory == nil {
		factory = DefaultStoreFactory
	}
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// SetInput sets the reader handed to commands that read standard input.
func (d *Dispatcher) SetInput(r io.Reader) {
	d.in = r
}

// SetManagerOptions adds options to every board manager the dispatcher creates.
func (d *Dispatcher) SetManagerOptions(opts ...board.Option) {
	d.opts = opts
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return d.dispatch(ctx, DefaultCommand, nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	// Look up command
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	// Parse flags
	remaining := args[1:]
	return d.dispatchCommand(ctx, cmd, remaining, out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	// Parse flags
	if err := fs.Parse(args); err != nil {
		errStr := err.Error()

		if name, ok := strings.CutPrefix(errStr, "flag needs an argument: "); ok {
			fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", name)
			return exitcode.UserError
		}

		// Check for unknown flag
		if strings.HasPrefix(errStr, "flag provided but not defined:") {
			flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
			fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
			return exitcode.UserError
		}

		fmt.Fprintf(errOut, "error: %s\n", errStr)
		return exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	logger, closer, err := logging.New(logging.Options{Debug: debug, File: cfg.LogFile, Stderr: errOut})
	if err != nil {
		fmt.Fprintf(errOut, "error: log file: %s\n", err)
		return exitcode.UserError
	}
	defer closer.Close()
	log := logger.WithField("command", cmd.Name())

	var mgr *board.Manager
	if cmd.NeedsBoard() {
		store, err := d.factory(ctx, cfg, log)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) || errors.Is(err, service.ErrUnauthorized) {
				fmt.Fprintf(errOut, "error: %s\n", err)
				return exitcode.AuthError
			}
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
		opts := append([]board.Option{board.WithLogger(log)}, d.opts...)
		mgr = board.NewManager(store, opts...)
	}

	if ic, ok := cmd.(commands.InputCommand); ok && d.in != nil {
		ic.SetInput(d.in)
	}

	code := cmd.Run(ctx, cfg, mgr, positionalArgs, out, errOut)
	if mgr != nil {
		// Pending moves must reach the store before the process exits.
		mgr.Wait()
	}
	return code
}
