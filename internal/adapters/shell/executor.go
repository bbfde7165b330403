// Package shell runs external processes such as the interpreter and its
// package installer.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
)

// Executor implements ports.Executor. On an interactive terminal the process
// runs on a pseudo-terminal so that installers keep their progress bars;
// otherwise stdout and stderr are plain pipes.
type Executor struct {
	logger ports.Logger
	usePTY bool
}

// NewExecutor creates an Executor.
func NewExecutor(logger ports.Logger, usePTY bool) *Executor {
	return &Executor{logger: logger, usePTY: usePTY}
}

// Execute implements ports.Executor.
func (e *Executor) Execute(ctx context.Context, c ports.Command, stdout, stderr io.Writer) error {
	if c.Path == "" {
		return nil
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	env := resolveEnvironment(os.Environ(), c.Env)
	executable := c.Path
	if !filepath.IsAbs(executable) && !strings.ContainsRune(executable, filepath.Separator) {
		if lp, err := lookPath(executable, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, c.Args...) //nolint:gosec // installer command built by the handler
	cmd.Args[0] = c.Path
	cmd.Dir = c.Dir
	cmd.Env = env

	if e.logger != nil {
		e.logger.Debug("exec: " + strings.Join(append([]string{c.Path}, c.Args...), " "))
	}

	var err error
	if e.usePTY {
		err = runPTY(cmd, stdout)
	} else {
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		err = cmd.Run()
	}
	if err != nil {
		return commandError(err, c)
	}
	return nil
}

// runPTY runs cmd on a pseudo-terminal. Its merged output goes to out.
func runPTY(cmd *exec.Cmd, out io.Writer) error {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return err
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// Reading the master returns EIO once the child side closes.
		_, _ = io.Copy(out, ptmx)
	}()

	err = cmd.Wait()
	<-ioDone
	_ = ptmx.Close()
	return err
}

func commandError(err error, c ports.Command) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	wrapped := errors.Join(domain.ErrCommandFailed, err)
	wrapped = zerr.With(wrapped, "command", c.Path)
	return zerr.With(wrapped, "exit_code", exitCode)
}

// resolveEnvironment overlays overrides on the inherited environment. A
// PATH override that ends with the list separator is prepended to the
// inherited PATH.
func resolveEnvironment(sysEnv, overrides []string) []string {
	order := make([]string, 0, len(sysEnv)+len(overrides))
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	set := func(k, v string) {
		if _, ok := envMap[k]; !ok {
			order = append(order, k)
		}
		envMap[k] = v
	}

	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			set(k, v)
		}
	}
	for _, entry := range overrides {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		sep := string(os.PathListSeparator)
		if k == "PATH" && strings.HasSuffix(v, sep) {
			if sysPath := envMap["PATH"]; sysPath != "" {
				v += sysPath
			} else {
				v = strings.TrimSuffix(v, sep)
			}
		}
		set(k, v)
	}

	result := make([]string, 0, len(order))
	for _, k := range order {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

// lookPath searches for an executable in the PATH of env rather than the
// PATH of the current process.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "PATH="); ok {
			path = after
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
