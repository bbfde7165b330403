package ports

import (
	"context"
	"time"

	"go.trai.ch/ivpm/internal/core/domain"
)

// CacheBackend stores read-only package versions. Per-package methods may be
// called concurrently.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type CacheBackend interface {
	// Name returns the backend tag (filesystem, gha, s3).
	Name() string

	// HasVersion reports whether (name, version) is available locally. A remote
	// hit is materialized locally before returning true.
	HasVersion(ctx context.Context, name, version string) (bool, error)

	// StoreVersion moves sourcePath into the cache, makes it read-only and
	// returns the entry path. Repeat calls with the same key return the same path.
	StoreVersion(ctx context.Context, name, version, sourcePath string) (string, error)

	// LinkToDeps replaces depsDir/name with a link to the cached entry.
	LinkToDeps(name, version, depsDir string) (string, error)

	// Activate prepares the backend for a run.
	Activate(ctx context.Context) error

	// Deactivate ends the run. Pending uploads are always joined; session
	// artifacts are only persisted when success is true.
	Deactivate(ctx context.Context, success bool) error
}

// VenvCache is implemented by backends that can cache the interpreter environment.
type VenvCache interface {
	// TryRestoreVenv restores venvDir for the given interpreter version and
	// requirements hash. It reports whether anything was restored.
	TryRestoreVenv(ctx context.Context, venvDir, pyVersion, reqHash string) (bool, error)

	// NotifyVenvRebuilt schedules venvDir for upload when the run succeeds.
	NotifyVenvRebuilt(venvDir, pyVersion, reqHash string)

	// PipCacheDir returns the wheel cache directory, or "" if none.
	PipCacheDir() string
}

// RemoteCache is a thin client of a remote (L2) cache service.
type RemoteCache interface {
	// Name returns the remote tag.
	Name() string

	// Available reports whether the remote can be used in this environment.
	Available() bool

	// Lookup returns a download URL for key, trying restoreKeys as prefixes
	// when key is missing. It returns "" on a miss.
	Lookup(ctx context.Context, key string, restoreKeys ...string) (string, error)

	// Download streams the tar.gz at url into destDir.
	Download(ctx context.Context, url, destDir string) error

	// Upload archives srcDir and stores it under key. An existing key is not an error.
	Upload(ctx context.Context, key, srcDir string) error
}

// CacheSelector chooses the backend for a run.
type CacheSelector interface {
	// Select resolves a backend from the explicit name, the environment, the
	// project configuration and auto-detection, in that order. It returns nil
	// when caching is disabled.
	Select(ctx context.Context, explicit string, proj *domain.ProjInfo) (CacheBackend, error)
}

// CacheAdmin performs maintenance on a filesystem cache root.
type CacheAdmin interface {
	// Init creates and marks a cache root.
	Init(root string) error

	// Entries lists every (name, version) entry under root.
	Entries(root string) ([]domain.CacheEntry, error)

	// CleanOlderThan removes entries whose mtime is before now minus age and
	// returns the removed entries.
	CleanOlderThan(root string, age time.Duration) ([]domain.CacheEntry, error)
}
