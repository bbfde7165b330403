// Package cache implements the package cache: a filesystem store of read-only
// (name, version) entries, optionally backed by a remote cache service.
package cache

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/ivpm/internal/adapters/fs"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// BackendFilesystem is the name of the local cache backend.
const BackendFilesystem = "filesystem"

// Filesystem stores entries as <root>/<name>/<version> directories.
type Filesystem struct {
	root string
}

// NewFilesystem creates a Filesystem rooted at root.
func NewFilesystem(root string) *Filesystem {
	return &Filesystem{root: root}
}

// Name implements ports.CacheBackend.
func (f *Filesystem) Name() string { return BackendFilesystem }

// Root returns the cache root.
func (f *Filesystem) Root() string { return f.root }

// HasVersion implements ports.CacheBackend.
func (f *Filesystem) HasVersion(_ context.Context, name, version string) (bool, error) {
	info, err := os.Stat(domain.VersionDir(f.root, name, version))
	switch {
	case err == nil:
		return info.IsDir(), nil
	case errors.Is(err, iofs.ErrNotExist):
		return false, nil
	default:
		return false, zerr.With(errors.Join(domain.ErrCacheStoreFailed, err), "package", name)
	}
}

// StoreVersion implements ports.CacheBackend. When the entry already exists
// sourcePath is discarded and the existing entry is returned.
func (f *Filesystem) StoreVersion(_ context.Context, name, version, sourcePath string) (string, error) {
	dst := domain.VersionDir(f.root, name, version)
	if isDir(dst) {
		_ = fs.RemoveTree(sourcePath)
		return dst, nil
	}

	if err := os.MkdirAll(domain.PkgDir(f.root, name), domain.DirPerm); err != nil {
		return "", zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", domain.PkgDir(f.root, name))
	}

	if err := fs.Move(sourcePath, dst); err != nil {
		// Another writer stored the same entry first.
		if isDir(dst) {
			_ = fs.RemoveTree(sourcePath)
			return dst, nil
		}
		err = zerr.With(errors.Join(domain.ErrCacheStoreFailed, err), "package", name)
		return "", zerr.With(err, "version", version)
	}

	if err := fs.SetReadOnly(dst); err != nil {
		return "", zerr.With(errors.Join(domain.ErrCacheStoreFailed, err), "path", dst)
	}
	return dst, nil
}

// LinkToDeps implements ports.CacheBackend.
func (f *Filesystem) LinkToDeps(name, version, depsDir string) (string, error) {
	link := domain.DepPath(depsDir, name)
	if err := fs.ReplaceSymlink(domain.VersionDir(f.root, name, version), link); err != nil {
		return "", zerr.With(errors.Join(domain.ErrCacheLinkFailed, err), "package", name)
	}
	return link, nil
}

// Activate implements ports.CacheBackend.
func (f *Filesystem) Activate(context.Context) error {
	if err := os.MkdirAll(f.root, domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", f.root)
	}
	return nil
}

// Deactivate implements ports.CacheBackend.
func (f *Filesystem) Deactivate(context.Context, bool) error { return nil }

// restoreDir returns a fresh scratch directory beside the entry directory.
func (f *Filesystem) restoreDir(name, version string) (string, error) {
	parent := domain.PkgDir(f.root, name)
	if err := os.MkdirAll(parent, domain.DirPerm); err != nil {
		return "", zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", parent)
	}
	dir, err := os.MkdirTemp(parent, filepath.Base(domain.StagingDir(f.root, name, version))+"-*")
	if err != nil {
		return "", zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", parent)
	}
	return dir, nil
}

// adopt renames a restored tree into place. Losing a race to another writer
// is not an error.
func (f *Filesystem) adopt(tmp, name, version string) error {
	dst := domain.VersionDir(f.root, name, version)
	if err := os.Rename(tmp, dst); err != nil {
		_ = fs.RemoveTree(tmp)
		if isDir(dst) {
			return nil
		}
		return zerr.With(errors.Join(domain.ErrCacheStoreFailed, err), "path", dst)
	}
	return fs.SetReadOnly(dst)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
