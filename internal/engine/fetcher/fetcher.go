// Package fetcher materializes resolved packages concurrently.
package fetcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// PkgStatus is the progress of one package within a fetch.
type PkgStatus string

const (
	// StatusPending indicates the package is waiting for a worker.
	StatusPending PkgStatus = "Pending"
	// StatusRunning indicates the package is being materialized.
	StatusRunning PkgStatus = "Running"
	// StatusCompleted indicates the package was materialized.
	StatusCompleted PkgStatus = "Completed"
	// StatusFailed indicates materialization failed.
	StatusFailed PkgStatus = "Failed"
)

// Result is the outcome of fetching one package.
type Result struct {
	Pkg *domain.Package
	// Proj is the manifest found in the materialized directory, or nil.
	Proj   *domain.ProjInfo
	Update domain.UpdateResult
	Err    error
}

// Fetcher drives SourceRegistry.Update over a batch of packages.
type Fetcher struct {
	registry ports.SourceRegistry
	loader   ports.ManifestLoader
	tracer   ports.Tracer
	jobs     int
	now      func() time.Time

	mu     sync.RWMutex
	status map[string]PkgStatus
}

// New creates a Fetcher running at most jobs packages at once.
func New(registry ports.SourceRegistry, loader ports.ManifestLoader, tracer ports.Tracer, jobs int) *Fetcher {
	if jobs < 1 {
		jobs = 1
	}
	return &Fetcher{
		registry: registry,
		loader:   loader,
		tracer:   tracer,
		jobs:     jobs,
		now:      time.Now,
		status:   make(map[string]PkgStatus),
	}
}

// Status returns the progress of the named package.
func (f *Fetcher) Status(name string) (PkgStatus, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s, ok := f.status[name]
	return s, ok
}

func (f *Fetcher) setStatus(name string, s PkgStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[name] = s
}

// Fetch materializes pkgs and returns one result per package in input order.
// A failing package never cancels its siblings.
func (f *Fetcher) Fetch(ctx context.Context, uctx *ports.UpdateContext, pkgs []*domain.Package) []Result {
	for _, pkg := range pkgs {
		f.setStatus(pkg.Name, StatusPending)
	}
	if uctx.Stats != nil {
		uctx.Stats.AddTotal(len(pkgs))
	}

	results := make([]Result, len(pkgs))
	var g errgroup.Group
	g.SetLimit(f.jobs)
	for i, pkg := range pkgs {
		g.Go(func() error {
			results[i] = f.fetchOne(ctx, uctx, pkg)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, uctx *ports.UpdateContext, pkg *domain.Package) Result {
	f.setStatus(pkg.Name, StatusRunning)
	dispatch(uctx, domain.Event{
		Kind: domain.EventPackageStart, Name: pkg.Name, SrcType: pkg.Src, SrcDesc: pkg.Describe(),
	})
	start := f.now()

	res := func() Result {
		ctx, span := f.tracer.Start(ctx, "update "+pkg.Name)
		defer span.End()
		span.SetAttribute("ivpm.src", pkg.Src.String())

		if err := ctx.Err(); err != nil {
			return Result{Pkg: pkg, Err: err}
		}

		upd, err := f.registry.Update(ctx, uctx, pkg)
		if err != nil {
			span.RecordError(err)
			return Result{Pkg: pkg, Update: upd, Err: err}
		}
		if upd.Cacheable {
			span.SetAttribute("ivpm.cache_hit", boolString(upd.CacheHit))
		}

		proj, err := f.subManifest(pkg)
		if err != nil {
			span.RecordError(err)
			return Result{Pkg: pkg, Update: upd, Err: err}
		}
		return Result{Pkg: pkg, Proj: proj, Update: upd}
	}()

	f.record(uctx, res)
	if res.Err != nil {
		f.setStatus(pkg.Name, StatusFailed)
		dispatch(uctx, domain.Event{
			Kind: domain.EventPackageError, Name: pkg.Name, SrcType: pkg.Src,
			Duration: f.now().Sub(start), Message: res.Err.Error(),
		})
		return res
	}

	f.setStatus(pkg.Name, StatusCompleted)
	dispatch(uctx, domain.Event{
		Kind: domain.EventPackageComplete, Name: pkg.Name, SrcType: pkg.Src,
		Duration: f.now().Sub(start), CacheHit: res.Update.CacheHit,
	})
	return res
}

// subManifest reads the manifest of a materialized package. Packages without
// one, or that are never materialized, yield nil.
func (f *Fetcher) subManifest(pkg *domain.Package) (*domain.ProjInfo, error) {
	if pkg.Path == "" {
		return nil, nil
	}
	proj, err := f.loader.LoadDir(pkg.Path)
	if errors.Is(err, domain.ErrManifestNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(err, "package", pkg.Name)
	}
	return proj, nil
}

func (f *Fetcher) record(uctx *ports.UpdateContext, res Result) {
	stats := uctx.Stats
	if stats == nil {
		return
	}
	switch {
	case res.Err != nil:
		stats.MarkError()
	case res.Update.Cacheable:
		stats.MarkCacheable()
		if res.Update.CacheHit {
			stats.CacheHit()
		} else {
			stats.CacheMiss()
		}
	case res.Pkg.Path != "":
		stats.MarkEditable()
	}
}

func dispatch(uctx *ports.UpdateContext, ev domain.Event) {
	if uctx.Events != nil {
		uctx.Events.Dispatch(ev)
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
