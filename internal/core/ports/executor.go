package ports

import (
	"context"
	"io"
)

// Command is an external process invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string
}

// Executor runs external processes.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd to completion, streaming its output to stdout and stderr.
	// A non-zero exit is returned as an error.
	Execute(ctx context.Context, cmd Command, stdout, stderr io.Writer) error
}
