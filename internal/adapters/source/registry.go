// Package source implements the package variants: how each one is built from
// manifest options and how it is materialized in the deps directory.
package source

import (
	"context"
	"sync"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
)

// Registry maps source tags to their handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[domain.SourceType]ports.SourceHandler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[domain.SourceType]ports.SourceHandler)}
}

// Register adds a handler for tag.
func (r *Registry) Register(tag domain.SourceType, h ports.SourceHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[tag]; exists {
		return zerr.With(zerr.Wrap(domain.ErrDuplicateSourceHandler, ""), "src", tag.String())
	}
	r.handlers[tag] = h
	return nil
}

// Lookup returns the handler for tag.
func (r *Registry) Lookup(tag domain.SourceType) (ports.SourceHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[tag]
	return h, ok
}

// Create builds a package through the handler registered for tag.
func (r *Registry) Create(
	tag domain.SourceType, name string, opts domain.Options, si domain.SrcInfo,
) (*domain.Package, error) {
	h, ok := r.Lookup(tag)
	if !ok {
		return nil, zerr.With(si.Annotate(zerr.Wrap(domain.ErrUnknownSourceTag, "")), "src", tag.String())
	}
	return h.Create(name, opts, si)
}

// Update dispatches to the handler registered for pkg.Src.
func (r *Registry) Update(
	ctx context.Context, uctx *ports.UpdateContext, pkg *domain.Package,
) (domain.UpdateResult, error) {
	h, ok := r.Lookup(pkg.Src)
	if !ok {
		err := pkg.SrcInfo.Annotate(zerr.Wrap(domain.ErrUnknownSourceTag, ""))
		return domain.UpdateResult{}, zerr.With(err, "src", pkg.Src.String())
	}
	return h.Update(ctx, uctx, pkg)
}

// Deps are the collaborators of the built-in handlers.
type Deps struct {
	Git        ports.GitRunner
	Downloader ports.Downloader
	Extractor  ports.Extractor
	Releases   ReleaseResolver
}

// NewDefaultRegistry creates a Registry holding every built-in variant.
func NewDefaultRegistry(d Deps) (*Registry, error) {
	r := NewRegistry()

	handlers := map[domain.SourceType]ports.SourceHandler{
		domain.SrcGit:   NewGitHandler(d.Git),
		domain.SrcGhRls: NewReleaseHandler(d.Releases, d.Downloader, d.Extractor),
		domain.SrcPyPI:  NewPyPIHandler(),
		domain.SrcDir:   NewDirHandler(),
	}
	for _, tag := range []domain.SourceType{
		domain.SrcHTTP, domain.SrcTgz, domain.SrcTxz, domain.SrcZip, domain.SrcJar, domain.SrcFile, domain.SrcURL,
	} {
		handlers[tag] = NewArchiveHandler(tag, d.Downloader, d.Extractor)
	}

	for tag, h := range handlers {
		if err := r.Register(tag, h); err != nil {
			return nil, err
		}
	}
	return r, nil
}
