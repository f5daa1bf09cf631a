package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"kboard/internal/board"
	"kboard/internal/config"
	"kboard/internal/exitcode"
)

// ensureLoaded loads the board unless an earlier command in the same
// session already did. Later state comes from local transitions.
func ensureLoaded(ctx context.Context, mgr *board.Manager) error {
	if mgr.Loaded() {
		return nil
	}
	return mgr.Load(ctx)
}

// fail prints err the way every command reports errors and returns the
// matching exit code.
func fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	if errors.Is(err, ErrRefRequired) || errors.Is(err, ErrAmbiguousRef) {
		return exitcode.UserError
	}
	return exitcode.FromError(err)
}

// success prints the "ok" marker unless quiet.
func success(cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
