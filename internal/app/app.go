// Package app implements the application layer for ivpm.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.trai.ch/ivpm/internal/adapters/detector"
	"go.trai.ch/ivpm/internal/adapters/settings"
	"go.trai.ch/ivpm/internal/adapters/telemetry"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
)

// Progress is the listener that renders update progress for humans.
type Progress interface {
	ports.EventListener
	SetColor(color bool)
}

// Deps are the collaborators of an App.
type Deps struct {
	Loader   ports.ManifestLoader
	Registry ports.SourceRegistry
	Locks    ports.LockStore
	Selector ports.CacheSelector
	Admin    ports.CacheAdmin
	Git      ports.GitRunner
	Logger   ports.Logger
	Progress Progress
	// Python is the interpreter-package handler. It may be nil.
	Python   ports.PackageHandler
	Env      detector.Environment
	Settings *settings.Settings
}

// App represents the main application logic.
type App struct {
	loader   ports.ManifestLoader
	registry ports.SourceRegistry
	locks    ports.LockStore
	selector ports.CacheSelector
	admin    ports.CacheAdmin
	git      ports.GitRunner
	logger   ports.Logger
	progress Progress
	python   ports.PackageHandler
	env      detector.Environment
	settings *settings.Settings
	now      func() time.Time
}

// New creates a new App instance.
func New(d Deps) *App {
	cfg := d.Settings
	if cfg == nil {
		cfg = &settings.Settings{Jobs: 1, CachePrefix: settings.DefaultCachePrefix}
	}
	return &App{
		loader:   d.Loader,
		registry: d.Registry,
		locks:    d.Locks,
		selector: d.Selector,
		admin:    d.Admin,
		git:      d.Git,
		logger:   d.Logger,
		progress: d.Progress,
		python:   d.Python,
		env:      d.Env,
		settings: cfg,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for durations and cache ages.
// This is primarily used for testing.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// RunOptions are the settings shared by every command that touches packages.
type RunOptions struct {
	// ProjectDir is the directory holding ivpm.yaml. Empty means the working directory.
	ProjectDir string
	// Jobs overrides the worker count. Zero uses IVPM_JOBS or the number of CPUs.
	Jobs int
	// Trace logs a span for every package operation at debug level.
	Trace bool
}

// project loads the manifest of opts.ProjectDir and returns it with the
// absolute deps directory.
func (a *App) project(opts RunOptions) (*domain.ProjInfo, string, error) {
	dir := opts.ProjectDir
	if dir == "" {
		dir = "."
	}
	proj, err := a.loader.LoadDir(dir)
	if err != nil {
		return nil, "", err
	}
	return proj, depsDir(proj), nil
}

func depsDir(proj *domain.ProjInfo) string {
	deps := proj.DepsDir
	if deps == "" {
		deps = domain.DefaultDepsDir
	}
	if filepath.IsAbs(deps) {
		return filepath.Clean(deps)
	}
	return filepath.Join(proj.Dir, deps)
}

func (a *App) jobs(override int) (int, error) {
	switch {
	case override < 0:
		return 0, zerr.With(zerr.Wrap(domain.ErrInvalidJobs, ""), "jobs", override)
	case override > 0:
		return override, nil
	case a.settings.Jobs > 0:
		return a.settings.Jobs, nil
	default:
		return 1, nil
	}
}

func (a *App) tracer(enabled bool) ports.Tracer {
	if enabled {
		return telemetry.NewOTelTracer(a.logger)
	}
	return telemetry.NewNoopTracer()
}

func shutdown(ctx context.Context, t ports.Tracer) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	_ = t.Shutdown(ctx)
}

// readLock reads the lock file of depsDir, reporting a checksum mismatch as a warning.
func (a *App) readLock(deps string) (*domain.Lock, error) {
	path := domain.LockPath(deps)
	lock, err := a.locks.Read(path)
	if err != nil {
		return nil, err
	}
	if !lock.ChecksumValid {
		a.logger.Warn(fmt.Sprintf("%s: %s, the file was edited by hand", path, domain.ErrLockChecksumMismatch))
	}
	return lock, nil
}
