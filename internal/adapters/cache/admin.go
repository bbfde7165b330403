package cache

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.trai.ch/ivpm/internal/adapters/fs"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// Admin implements ports.CacheAdmin for filesystem cache roots.
type Admin struct {
	now func() time.Time
}

// NewAdmin creates an Admin.
func NewAdmin() *Admin {
	return &Admin{now: time.Now}
}

// Init creates root and marks it as an ivpm cache.
func (a *Admin) Init(root string) error {
	if err := os.MkdirAll(root, domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", root)
	}
	marker := filepath.Join(root, domain.CacheMarkerName)
	if err := os.WriteFile(marker, []byte("ivpm package cache\n"), domain.FilePerm); err != nil {
		return zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", marker)
	}
	return nil
}

// Entries lists the complete entries below root, sorted by name and version.
func (a *Admin) Entries(root string) ([]domain.CacheEntry, error) {
	pkgs, err := os.ReadDir(root)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheNotConfigured, ""), "path", root)
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read cache"), "path", root)
	}

	var entries []domain.CacheEntry
	for _, pkg := range pkgs {
		if !pkg.IsDir() || hidden(pkg.Name()) {
			continue
		}
		versions, err := os.ReadDir(filepath.Join(root, pkg.Name()))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to read cache"), "package", pkg.Name())
		}
		for _, v := range versions {
			if !v.IsDir() || hidden(v.Name()) || strings.Contains(v.Name(), domain.StagingSuffix) {
				continue
			}
			entry, err := describe(root, pkg.Name(), v)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Version < entries[j].Version
	})
	return entries, nil
}

// CleanOlderThan removes entries last modified before now minus age and
// prunes package directories left empty.
func (a *Admin) CleanOlderThan(root string, age time.Duration) ([]domain.CacheEntry, error) {
	entries, err := a.Entries(root)
	if err != nil {
		return nil, err
	}
	cutoff := a.now().Add(-age)

	var removed []domain.CacheEntry
	for _, e := range entries {
		if !e.ModTime.Before(cutoff) {
			continue
		}
		if err := fs.RemoveTree(e.Path); err != nil {
			return removed, zerr.With(errors.Join(domain.ErrCacheCleanFailed, err), "path", e.Path)
		}
		removed = append(removed, e)
	}

	for _, e := range removed {
		pkgDir := domain.PkgDir(root, e.Name)
		if rest, err := os.ReadDir(pkgDir); err == nil && len(rest) == 0 {
			_ = os.Remove(pkgDir)
		}
	}
	return removed, nil
}

func describe(root, name string, v iofs.DirEntry) (domain.CacheEntry, error) {
	info, err := v.Info()
	if err != nil {
		return domain.CacheEntry{}, zerr.With(zerr.Wrap(err, "failed to read cache"), "package", name)
	}
	path := domain.VersionDir(root, name, v.Name())
	size, files, err := fs.Stats(path)
	if err != nil {
		return domain.CacheEntry{}, zerr.With(zerr.Wrap(err, "failed to read cache"), "path", path)
	}
	return domain.CacheEntry{
		Name:    name,
		Version: v.Name(),
		Path:    path,
		ModTime: info.ModTime(),
		Size:    size,
		Files:   files,
	}, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
