package ports

import (
	"context"

	"go.trai.ch/ivpm/internal/core/domain"
)

// UpdateContext is shared by every fetch worker of one update run.
type UpdateContext struct {
	// DepsDir is the absolute dependencies directory.
	DepsDir string
	// Cache is the active backend, or nil when caching is disabled.
	Cache CacheBackend
	// Events receives progress events. It may be nil.
	Events EventDispatcher
	// SuppressOutput silences subprocess output.
	SuppressOutput bool
	// AnonymousGit disables git URL rewriting for every package.
	AnonymousGit bool
	// Stats are the run counters.
	Stats *domain.UpdateStats
}

// SourceHandler creates and materializes packages of one source type.
//
//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks
type SourceHandler interface {
	// Create validates opts and builds a Package. Unknown options are rejected
	// with their SrcInfo.
	Create(name string, opts domain.Options, si domain.SrcInfo) (*domain.Package, error)

	// Update materializes pkg below uctx.DepsDir and sets pkg.Path.
	// Packages that are never materialized leave Path empty.
	Update(ctx context.Context, uctx *UpdateContext, pkg *domain.Package) (domain.UpdateResult, error)
}

// SourceRegistry maps source tags to their handlers.
type SourceRegistry interface {
	// Register adds a handler. Registering a tag twice fails.
	Register(tag domain.SourceType, h SourceHandler) error

	// Lookup returns the handler for tag.
	Lookup(tag domain.SourceType) (SourceHandler, bool)

	// Create builds a package through the handler registered for tag.
	Create(tag domain.SourceType, name string, opts domain.Options, si domain.SrcInfo) (*domain.Package, error)

	// Update dispatches to the handler registered for pkg.Src.
	Update(ctx context.Context, uctx *UpdateContext, pkg *domain.Package) (domain.UpdateResult, error)
}
