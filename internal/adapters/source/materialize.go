package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/ivpm/internal/adapters/fs"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
)

// fillFunc materializes a package into dir, which does not exist yet.
type fillFunc func(ctx context.Context, dir string) error

// useCache reports whether pkg goes through the cache backend.
func useCache(uctx *ports.UpdateContext, pkg *domain.Package) bool {
	return pkg.Cache.Enabled() && uctx.Cache != nil
}

// cachedUpdate links (name, version) from the cache, filling and storing it
// first on a miss.
func cachedUpdate(
	ctx context.Context, uctx *ports.UpdateContext, pkg *domain.Package, version string, fill fillFunc,
) (domain.UpdateResult, error) {
	res := domain.UpdateResult{Cacheable: true}
	cache := uctx.Cache

	hit, err := cache.HasVersion(ctx, pkg.Name, version)
	if err != nil {
		return res, zerr.With(errors.Join(domain.ErrFetchFailed, err), "package", pkg.Name)
	}
	res.CacheHit = hit

	if !hit {
		staging, err := stagingDir(uctx, pkg.Name)
		if err != nil {
			return res, err
		}
		defer func() { _ = fs.RemoveTree(staging) }()

		dir := filepath.Join(staging, pkg.Name)
		if err := fill(ctx, dir); err != nil {
			return res, err
		}
		if _, err := cache.StoreVersion(ctx, pkg.Name, version, dir); err != nil {
			return res, zerr.With(errors.Join(domain.ErrCacheStoreFailed, err), "package", pkg.Name)
		}
	}

	path, err := cache.LinkToDeps(pkg.Name, version, uctx.DepsDir)
	if err != nil {
		return res, zerr.With(errors.Join(domain.ErrCacheLinkFailed, err), "package", pkg.Name)
	}
	pkg.Path = path
	return res, nil
}

// editableUpdate fills deps/<name> unless it already holds a directory. A link
// left behind by an earlier cached run is replaced with an editable copy.
func editableUpdate(
	ctx context.Context, uctx *ports.UpdateContext, pkg *domain.Package, fill fillFunc,
) (domain.UpdateResult, error) {
	dest := domain.DepPath(uctx.DepsDir, pkg.Name)

	exists, err := fs.Exists(dest)
	if err != nil {
		return domain.UpdateResult{}, zerr.With(err, "package", pkg.Name)
	}
	if exists && isCachedLink(dest) {
		if err := os.Remove(dest); err != nil {
			return domain.UpdateResult{}, zerr.With(errors.Join(domain.ErrFetchFailed, err), "path", dest)
		}
		exists = false
	}
	if exists {
		pkg.Path = dest
		return domain.UpdateResult{AlreadyLoaded: true}, nil
	}

	if err := os.MkdirAll(uctx.DepsDir, domain.DirPerm); err != nil {
		return domain.UpdateResult{}, zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", uctx.DepsDir)
	}
	if err := fill(ctx, dest); err != nil {
		_ = fs.RemoveTree(dest)
		return domain.UpdateResult{}, err
	}
	pkg.Path = dest
	return domain.UpdateResult{}, nil
}

// isCachedLink reports whether path is a symlink to a read-only directory.
func isCachedLink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return false
	}
	return fs.IsReadOnly(path)
}

// stagingDir creates a private scratch directory below deps/.download.
func stagingDir(uctx *ports.UpdateContext, name string) (string, error) {
	root := domain.DownloadDir(uctx.DepsDir)
	if err := os.MkdirAll(root, domain.DirPerm); err != nil {
		return "", zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", root)
	}
	dir, err := os.MkdirTemp(root, name+"-")
	if err != nil {
		return "", zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", root)
	}
	return dir, nil
}

func fetchErr(err error, pkg *domain.Package) error {
	err = errors.Join(domain.ErrFetchFailed, err)
	err = zerr.With(err, "package", pkg.Name)
	return zerr.With(err, "src", pkg.Src.String())
}
