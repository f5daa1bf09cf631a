// Package main is the entry point for the kboard CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"kboard/internal/cli"
	"kboard/internal/commands"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// A nil factory builds the HTTP store from the loaded config.
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)
	dispatcher.SetInput(os.Stdin)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
