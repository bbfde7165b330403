// Package git runs the git binary as a subprocess.
package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/ivpm/internal/core/domain"
)

// noPromptEnv keeps git from waiting on credentials or editors.
var noPromptEnv = []string{
	"GIT_TERMINAL_PROMPT=0",
	"GIT_ASKPASS=true",
	"GIT_EDITOR=true",
	"GIT_MERGE_AUTOEDIT=no",
	"LC_ALL=C",
}

// Runner implements ports.GitRunner.
type Runner struct {
	// Binary is the git executable. Defaults to "git".
	Binary string
	// Env is appended to the process environment.
	Env []string
}

// NewRunner creates a Runner using the git found on PATH.
func NewRunner() *Runner {
	return &Runner{Binary: "git"}
}

// Run executes git with args inside dir.
func (r *Runner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	// #nosec G204 -- arguments are built by ivpm, not passed through a shell
	cmd := exec.CommandContext(ctx, r.binary(), args...)
	cmd.Dir = dir
	cmd.Env = append(append(os.Environ(), noPromptEnv...), r.Env...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		gitErr := &domain.GitError{
			Dir:      dir,
			Args:     args,
			ExitCode: -1,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			gitErr.ExitCode = exitErr.ExitCode()
		}
		return "", gitErr
	}

	return strings.TrimRight(stdout.String(), " \t\r\n"), nil
}

func (r *Runner) binary() string {
	if r.Binary == "" {
		return "git"
	}
	return r.Binary
}
