// Package resolver computes the dependency closure of a project breadth-first,
// fetching each batch of packages before reading their own dependency sets.
package resolver

import (
	"context"
	"fmt"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/ivpm/internal/engine/fetcher"
)

// Failure is a package that could not be materialized.
type Failure struct {
	Name string
	Err  error
}

// Result is the resolved closure of one update.
type Result struct {
	Closure  *domain.PackagesInfo
	Failures []Failure
}

// Fetcher materializes one batch of packages.
type Fetcher interface {
	Fetch(ctx context.Context, uctx *ports.UpdateContext, pkgs []*domain.Package) []fetcher.Result
}

// Resolver walks dependency sets level by level. The first binding of a name
// wins, so the root project overrides every transitive request.
type Resolver struct {
	fetcher  Fetcher
	logger   ports.Logger
	handlers []ports.PackageHandler
}

// New creates a Resolver. Every handler sees each closure entry once.
func New(f Fetcher, logger ports.Logger, handlers ...ports.PackageHandler) *Resolver {
	return &Resolver{fetcher: f, logger: logger, handlers: handlers}
}

// Resolve computes the closure of rootSet, which belongs to root.
func (r *Resolver) Resolve(
	ctx context.Context, root *domain.ProjInfo, rootSet *domain.PackagesInfo, uctx *ports.UpdateContext,
) (*Result, error) {
	closure := domain.NewPackagesInfo(rootSet.Name)
	closure.SrcInfo = rootSet.SrcInfo
	closure.Reserve(root.Name)
	closure.AddSetupDeps(root.Name, root.SetupDeps)

	queue := make([]*domain.Package, 0, rootSet.Len()+1)
	for pkg := range rootSet.All() {
		if pkg.ResolvedBy == "" {
			pkg.ResolvedBy = root.Name
		}
		queue = append(queue, pkg)
	}
	if !rootSet.Has(domain.SelfPackageName) && root.Name != domain.SelfPackageName {
		queue = append(queue, &domain.Package{
			Name:       domain.SelfPackageName,
			Src:        domain.SrcPyPI,
			ResolvedBy: root.Name,
			Source:     &domain.PyPISource{},
		})
	}

	res := &Result{Closure: closure}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		batch := make([]*domain.Package, 0, len(queue))
		for _, pkg := range queue {
			if !closure.Add(pkg) {
				continue
			}
			for _, h := range r.handlers {
				h.ProcessPkg(pkg)
			}
			batch = append(batch, pkg)
		}
		if len(batch) == 0 {
			break
		}

		pending := domain.NewPackagesInfo(rootSet.Name)
		for _, fr := range r.fetcher.Fetch(ctx, uctx, batch) {
			if fr.Err != nil {
				res.Failures = append(res.Failures, Failure{Name: fr.Pkg.Name, Err: fr.Err})
				continue
			}
			r.expand(root, closure, pending, fr)
		}
		queue = pending.Packages()
	}
	return res, nil
}

// expand records the setup-deps of a fetched package and queues the members
// of its requested dependency set.
func (r *Resolver) expand(root *domain.ProjInfo, closure, pending *domain.PackagesInfo, fr fetcher.Result) {
	pkg, proj := fr.Pkg, fr.Proj
	if proj == nil {
		return
	}
	closure.AddSetupDeps(pkg.Name, proj.SetupDeps)
	if !pkg.ProcessDeps {
		return
	}

	setName := pkg.DepSet
	if setName == "" {
		setName = proj.ConsumedDepSet()
	}
	ds, ok := proj.DepSet(setName)
	if !ok {
		r.logger.Warn(fmt.Sprintf("package %s has no dependency set %q, skipping its dependencies", pkg.Name, setName))
		return
	}
	pkg.Requires = ds.Names()

	for dep := range ds.All() {
		if dep.ResolvedBy == "" {
			dep.ResolvedBy = pkg.Name
		}
		if existing, ok := closure.Get(dep.Name); ok {
			r.checkSibling(root, existing, dep)
			continue
		}
		if existing, ok := pending.Get(dep.Name); ok {
			r.checkSibling(root, existing, dep)
			continue
		}
		pending.Add(dep)
	}
}

// checkSibling warns when two non-root manifests ask for the same name from
// different sources. The first one stays bound.
func (r *Resolver) checkSibling(root *domain.ProjInfo, existing, dep *domain.Package) {
	if existing == nil || existing.ResolvedBy == root.Name || existing == dep {
		return
	}
	if existing.Src == dep.Src && existing.URL() == dep.URL() {
		return
	}
	r.logger.Warn(fmt.Sprintf(
		"package %s requested as %s at %s and as %s at %s, using the first",
		dep.Name, existing.Describe(), existing.SrcInfo, dep.Describe(), dep.SrcInfo,
	))
}
