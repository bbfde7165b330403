package app

import (
	"context"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/engine/status"
	"go.trai.ch/ivpm/internal/engine/syncer"
	"go.trai.ch/zerr"
)

// SyncOptions configuration for the Sync method.
type SyncOptions struct {
	RunOptions
	DryRun bool
	// OnStart is called when a package starts syncing.
	OnStart func(name string)
	// OnResult is called as soon as a package has finished.
	OnResult func(res domain.PkgSyncResult)
}

// Sync fast-forwards every writable git package recorded in the lock file
// and refreshes the resolved commits of the ones that moved.
func (a *App) Sync(ctx context.Context, opts SyncOptions) ([]domain.PkgSyncResult, error) {
	jobs, err := a.jobs(opts.Jobs)
	if err != nil {
		return nil, err
	}
	_, deps, err := a.project(opts.RunOptions)
	if err != nil {
		return nil, err
	}
	lock, err := a.readLock(deps)
	if err != nil {
		return nil, err
	}

	tracer := a.tracer(opts.Trace)
	defer shutdown(ctx, tracer)

	results := syncer.New(a.git, tracer, jobs).Sync(ctx, lock.Checkouts(deps), syncer.Options{
		DryRun:   opts.DryRun,
		OnStart:  opts.OnStart,
		OnResult: opts.OnResult,
	})

	if !opts.DryRun && anySynced(results) {
		if err := a.locks.PatchAfterSync(lock.Path, results); err != nil {
			return results, err
		}
	}

	failed := 0
	for i := range results {
		if results[i].Failed() {
			failed++
		}
	}
	if failed > 0 {
		return results, zerr.With(zerr.With(zerr.Wrap(domain.ErrSyncFailed, ""), "failed", failed), "total", len(results))
	}
	return results, nil
}

func anySynced(results []domain.PkgSyncResult) bool {
	for _, r := range results {
		if r.Outcome == domain.SyncSynced {
			return true
		}
	}
	return false
}

// StatusOptions configuration for the Status method.
type StatusOptions struct {
	RunOptions
}

// Status reports the working-copy state of every package recorded in the lock file.
func (a *App) Status(ctx context.Context, opts StatusOptions) ([]domain.PkgStatus, error) {
	jobs, err := a.jobs(opts.Jobs)
	if err != nil {
		return nil, err
	}
	_, deps, err := a.project(opts.RunOptions)
	if err != nil {
		return nil, err
	}
	lock, err := a.readLock(deps)
	if err != nil {
		return nil, err
	}
	return status.New(a.git, jobs).Read(ctx, lock.Checkouts(deps)), nil
}
