package pyinstall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultPython is the base interpreter used to create environments.
const DefaultPython = "python3"

const versionScript = "import sys; print('%d.%d' % sys.version_info[:2])"

// PipInstaller implements ports.Installer with venv and pip.
type PipInstaller struct {
	exec   ports.Executor
	python string
	goos   string
}

// NewPipInstaller creates a PipInstaller that runs python through exec.
func NewPipInstaller(exec ports.Executor, python string) *PipInstaller {
	if python == "" {
		python = DefaultPython
	}
	return &PipInstaller{exec: exec, python: python, goos: runtime.GOOS}
}

// VenvPython returns the interpreter inside venvDir.
func (p *PipInstaller) VenvPython(venvDir string) string {
	if p.goos == "windows" {
		return filepath.Join(venvDir, "Scripts", "python.exe")
	}
	return filepath.Join(venvDir, "bin", "python")
}

// EnsureEnv implements ports.Installer.
func (p *PipInstaller) EnsureEnv(ctx context.Context, venvDir string, systemSitePackages bool) (bool, error) {
	if _, err := os.Stat(p.VenvPython(venvDir)); err == nil {
		return false, nil
	}

	args := []string{"-m", "venv"}
	if systemSitePackages {
		args = append(args, "--system-site-packages")
	}
	args = append(args, venvDir)

	var stderr bytes.Buffer
	err := p.exec.Execute(ctx, ports.Command{Path: p.python, Args: args}, io.Discard, &stderr)
	if err != nil {
		err = errors.Join(domain.ErrVenvCreateFailed, err)
		err = zerr.With(err, "venv", venvDir)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = zerr.With(err, "stderr", msg)
		}
		return false, err
	}
	return true, nil
}

// PythonVersion implements ports.Installer.
func (p *PipInstaller) PythonVersion(ctx context.Context, venvDir string) (string, error) {
	python := p.python
	if venvDir != "" {
		python = p.VenvPython(venvDir)
	}

	var stdout bytes.Buffer
	cmd := ports.Command{Path: python, Args: []string{"-c", versionScript}}
	if err := p.exec.Execute(ctx, cmd, &stdout, io.Discard); err != nil {
		return "", zerr.With(errors.Join(domain.ErrVenvCreateFailed, err), "python", python)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Install implements ports.Installer.
func (p *PipInstaller) Install(ctx context.Context, venvDir, requirementsFile string, env []string, out io.Writer) error {
	cmd := ports.Command{
		Path: p.VenvPython(venvDir),
		Args: []string{"-m", "pip", "install", "-r", requirementsFile},
		Dir:  filepath.Dir(requirementsFile),
		Env:  append([]string{"VIRTUAL_ENV=" + venvDir}, env...),
	}
	if err := p.exec.Execute(ctx, cmd, out, out); err != nil {
		err = errors.Join(domain.ErrInstallerFailed, err)
		return zerr.With(err, "requirements", requirementsFile)
	}
	return nil
}

type distribution struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Installed implements ports.Installer.
func (p *PipInstaller) Installed(ctx context.Context, venvDir string) (map[string]string, error) {
	var stdout, stderr bytes.Buffer
	cmd := ports.Command{
		Path: p.VenvPython(venvDir),
		Args: []string{"-m", "pip", "list", "--format=json", "--disable-pip-version-check"},
		Env:  []string{"VIRTUAL_ENV=" + venvDir},
	}
	if err := p.exec.Execute(ctx, cmd, &stdout, &stderr); err != nil {
		err = zerr.With(errors.Join(domain.ErrInstallerFailed, err), "venv", venvDir)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = zerr.With(err, "stderr", msg)
		}
		return nil, err
	}

	// Output on a pseudo-terminal may carry warnings around the listing.
	data := stdout.Bytes()
	if i, j := bytes.IndexByte(data, '['), bytes.LastIndexByte(data, ']'); i >= 0 && j > i {
		data = data[i : j+1]
	}
	var dists []distribution
	if err := json.Unmarshal(data, &dists); err != nil {
		return nil, zerr.With(errors.Join(domain.ErrInstallerFailed, err), "venv", venvDir)
	}
	versions := make(map[string]string, len(dists))
	for _, d := range dists {
		versions[NormalizeName(d.Name)] = d.Version
	}
	return versions, nil
}

// NormalizeName folds a python project name to its canonical form: lower
// case with runs of "-", "_" and "." collapsed to a single "-".
func NormalizeName(name string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(name) {
		if r == '-' || r == '_' || r == '.' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('-')
		}
		sep = false
		b.WriteRune(r)
	}
	return b.String()
}
