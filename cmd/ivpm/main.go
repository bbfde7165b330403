// Package main is the entry point for the ivpm package manager.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/ivpm/cmd/ivpm/commands"
	"go.trai.ch/ivpm/internal/app"
	"go.trai.ch/ivpm/internal/core/domain"
	_ "go.trai.ch/ivpm/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	if cleanup != nil {
		defer cleanup()
	}

	for _, opt := range opts {
		opt(components.App)
	}

	// 2. Interface - CLI
	logs, _ := components.Logger.(commands.LogConfig)
	cli := commands.New(components.App, logs)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		// Per-package sync failures have already been reported.
		if errors.Is(err, domain.ErrSyncFailed) {
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}
