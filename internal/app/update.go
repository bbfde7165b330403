package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.trai.ch/ivpm/internal/adapters/detector"
	"go.trai.ch/ivpm/internal/adapters/events"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/ivpm/internal/engine/fetcher"
	"go.trai.ch/ivpm/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// UpdateOptions configuration for the Update method.
type UpdateOptions struct {
	RunOptions
	// DepSet names the root dependency set. Empty uses default-dev.
	DepSet string
	// FromLock rebuilds the workspace from the existing lock file.
	FromLock bool
	// AnonymousGit disables ssh rewriting of git URLs.
	AnonymousGit bool
	// SystemSitePackages gives the python environment access to the system packages.
	SystemSitePackages bool
	// SkipPyInstall leaves the python environment untouched.
	SkipPyInstall bool
	// CacheBackend overrides IVPM_CACHE_BACKEND and the manifest.
	CacheBackend string
	// OutputMode is auto, interactive or plain.
	OutputMode string
	// LogEvents reports progress through the logger instead of the progress listener.
	LogEvents bool
	// SuppressOutput silences subprocess output.
	SuppressOutput bool
}

// Update resolves the dependency closure of the project, materializes every
// package, runs the post-processing handlers and writes the lock file.
//
//nolint:cyclop,funlen // orchestration function
func (a *App) Update(ctx context.Context, opts UpdateOptions) (err error) {
	start := a.now()

	jobs, err := a.jobs(opts.Jobs)
	if err != nil {
		return err
	}
	proj, deps, err := a.project(opts.RunOptions)
	if err != nil {
		return err
	}
	lockPath := domain.LockPath(deps)

	rootSet, err := a.rootSet(proj, deps, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(deps, domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", deps)
	}

	backend, err := a.selector.Select(ctx, opts.CacheBackend, proj)
	if err != nil {
		return err
	}
	if backend != nil {
		a.logger.Debug(fmt.Sprintf("using %s cache", backend.Name()))
		if err := backend.Activate(ctx); err != nil {
			return err
		}
		defer func() {
			if derr := backend.Deactivate(context.WithoutCancel(ctx), err == nil); derr != nil {
				a.logger.Warn(fmt.Sprintf("cache: %v", derr))
			}
		}()
	}

	dispatcher := events.NewDispatcher(a.listener(opts))
	defer dispatcher.Flush()

	tracer := a.tracer(opts.Trace)
	defer shutdown(ctx, tracer)

	stats := &domain.UpdateStats{}
	uctx := &ports.UpdateContext{
		DepsDir:        deps,
		Cache:          backend,
		Events:         dispatcher,
		SuppressOutput: opts.SuppressOutput,
		AnonymousGit:   opts.AnonymousGit,
		Stats:          stats,
	}

	var handlers []ports.PackageHandler
	if a.python != nil && !opts.SkipPyInstall {
		handlers = append(handlers, a.python)
	}

	res, err := resolver.New(fetcher.New(a.registry, a.loader, tracer, jobs), a.logger, handlers...).
		Resolve(ctx, proj, rootSet, uctx)
	if err != nil {
		return err
	}

	complete := func() {
		summary := stats.Snapshot()
		summary.Duration = a.now().Sub(start)
		dispatcher.Dispatch(domain.Event{Kind: domain.EventUpdateComplete, Summary: summary})
	}

	if len(res.Failures) > 0 {
		complete()
		errs := make([]error, 0, len(res.Failures)+1)
		errs = append(errs, domain.ErrFetchFailed)
		for _, f := range res.Failures {
			errs = append(errs, zerr.With(zerr.Wrap(f.Err, ""), "package", f.Name))
		}
		return errors.Join(errs...)
	}

	info := &ports.UpdateInfo{
		DepsDir:            deps,
		Cache:              backend,
		Closure:            res.Closure,
		Events:             dispatcher,
		SuppressOutput:     opts.SuppressOutput,
		SystemSitePackages: opts.SystemSitePackages,
	}
	contributions := make(map[string]any)
	for _, h := range handlers {
		if err := h.Update(ctx, info); err != nil {
			complete()
			return zerr.With(zerr.Wrap(err, ""), "handler", h.Name())
		}
		for k, v := range h.LockContribution() {
			contributions[k] = v
		}
	}

	if !opts.FromLock {
		if err := a.locks.Write(lockPath, res.Closure, contributions); err != nil {
			complete()
			return err
		}
	}
	complete()
	return nil
}

// rootSet returns the packages the resolver starts from: the requested
// dependency set, or the lock file contents in reproduction mode.
func (a *App) rootSet(proj *domain.ProjInfo, deps string, opts UpdateOptions) (*domain.PackagesInfo, error) {
	if opts.FromLock {
		lock, err := a.readLock(deps)
		if err != nil {
			return nil, err
		}
		return a.locks.Reproduce(lock)
	}

	name := opts.DepSet
	if name == "" {
		name = domain.DefaultDepSet
	}
	ds, ok := proj.DepSet(name)
	if !ok {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrDepSetNotFound, ""),
			"dep_set", name), "available", proj.DepSetNames())
	}
	a.reportDrift(deps, ds)
	return ds, nil
}

// reportDrift warns about manifest changes the existing lock file does not
// reflect yet. A missing lock file is not reported.
func (a *App) reportDrift(deps string, ds *domain.PackagesInfo) {
	lock, err := a.locks.Read(domain.LockPath(deps))
	if err != nil {
		if !errors.Is(err, domain.ErrLockNotFound) {
			a.logger.Warn(fmt.Sprintf("ignoring unreadable lock file: %v", err))
		}
		return
	}
	if !lock.ChecksumValid {
		a.logger.Warn(fmt.Sprintf("%s: %s", lock.Path, domain.ErrLockChecksumMismatch))
	}
	for _, c := range a.locks.CheckChanges(lock, ds) {
		if c.Field == domain.LockFieldAdded {
			a.logger.Warn(fmt.Sprintf("package %s is not in the lock file yet", c.Name))
			continue
		}
		a.logger.Warn(fmt.Sprintf("package %s: %s changed from %q to %q since the lock was written",
			c.Name, c.Field, c.Locked, c.Wanted))
	}
}

// listener picks the progress listener for one run.
func (a *App) listener(opts UpdateOptions) ports.EventListener {
	if opts.LogEvents || a.progress == nil {
		return events.NewLogListener(a.logger)
	}
	a.progress.SetColor(detector.ResolveMode(a.env, opts.OutputMode) == detector.ModeInteractive)
	return a.progress
}
