package domain

import (
	"fmt"
	"strings"
)

// GitError is returned when a git invocation exits non-zero.
type GitError struct {
	Dir      string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// Error implements error.
func (e *GitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(e.Stdout)
	}
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s (exit %d): %s", strings.Join(e.Args, " "), e.ExitCode, msg)
}

// Unwrap returns the underlying process error.
func (e *GitError) Unwrap() error {
	return e.Err
}

// Is matches ErrGitCommandFailed.
func (e *GitError) Is(target error) bool {
	return target == ErrGitCommandFailed
}
