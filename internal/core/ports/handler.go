package ports

import (
	"context"
	"io"

	"go.trai.ch/ivpm/internal/core/domain"
)

// UpdateInfo is passed to post-processing handlers after the fetch completes.
type UpdateInfo struct {
	DepsDir            string
	Cache              CacheBackend
	Closure            *domain.PackagesInfo
	Events             EventDispatcher
	SuppressOutput     bool
	SystemSitePackages bool
}

// PackageHandler post-processes the resolved closure.
//
//go:generate mockgen -source=handler.go -destination=mocks/mock_handler.go -package=mocks
type PackageHandler interface {
	// Name identifies the handler in logs.
	Name() string

	// ProcessPkg is called for every closure entry once it is resolved.
	ProcessPkg(pkg *domain.Package)

	// Update runs after every package has been fetched.
	Update(ctx context.Context, info *UpdateInfo) error

	// LockContribution returns top-level keys to add to the lock file.
	LockContribution() map[string]any
}

// Installer provisions an interpreter environment and installs requirements files.
type Installer interface {
	// EnsureEnv creates venvDir unless it exists. It reports whether it was created.
	EnsureEnv(ctx context.Context, venvDir string, systemSitePackages bool) (bool, error)

	// PythonVersion returns the major.minor version of the interpreter in
	// venvDir, or of the base interpreter when venvDir is empty.
	PythonVersion(ctx context.Context, venvDir string) (string, error)

	// Install runs the installer on one requirements file inside venvDir.
	// Installer output is written to out.
	Install(ctx context.Context, venvDir, requirementsFile string, env []string, out io.Writer) error

	// Installed lists the distributions in venvDir keyed by normalized
	// project name.
	Installed(ctx context.Context, venvDir string) (map[string]string, error)
}
