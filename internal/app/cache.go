package app

import (
	"fmt"
	"slices"
	"time"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// CacheReport is the content of a filesystem cache.
type CacheReport struct {
	Root    string
	Entries []domain.CacheEntry
}

// Packages returns the distinct package names in the cache, sorted.
func (r *CacheReport) Packages() []string {
	var names []string
	for _, e := range r.Entries {
		if !slices.Contains(names, e.Name) {
			names = append(names, e.Name)
		}
	}
	slices.Sort(names)
	return names
}

// Versions returns the entries of one package.
func (r *CacheReport) Versions(name string) []domain.CacheEntry {
	var out []domain.CacheEntry
	for _, e := range r.Entries {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// TotalSize returns the summed size of every entry in bytes.
func (r *CacheReport) TotalSize() int64 {
	var total int64
	for _, e := range r.Entries {
		total += e.Size
	}
	return total
}

// CacheInit creates and marks a cache directory. An empty dir uses IVPM_CACHE.
func (a *App) CacheInit(dir string) (string, error) {
	root, err := a.cacheRoot(dir)
	if err != nil {
		return "", err
	}
	if err := a.admin.Init(root); err != nil {
		return "", err
	}
	a.logger.Info(fmt.Sprintf("initialized cache at %s", root))
	return root, nil
}

// CacheInfo lists the entries of a cache directory. An empty dir uses IVPM_CACHE.
func (a *App) CacheInfo(dir string) (*CacheReport, error) {
	root, err := a.cacheRoot(dir)
	if err != nil {
		return nil, err
	}
	entries, err := a.admin.Entries(root)
	if err != nil {
		return nil, err
	}
	return &CacheReport{Root: root, Entries: entries}, nil
}

// CacheClean removes the entries not used for the given number of days and
// returns them.
func (a *App) CacheClean(dir string, days int) ([]domain.CacheEntry, error) {
	if days < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidAge, ""), "days", days)
	}
	root, err := a.cacheRoot(dir)
	if err != nil {
		return nil, err
	}
	removed, err := a.admin.CleanOlderThan(root, time.Duration(days)*24*time.Hour)
	if err != nil {
		return removed, err
	}
	a.logger.Debug(fmt.Sprintf("removed %d cache entries from %s", len(removed), root))
	return removed, nil
}

func (a *App) cacheRoot(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	if a.settings.CacheRoot != "" {
		return a.settings.CacheRoot, nil
	}
	return "", zerr.Wrap(domain.ErrCacheNotConfigured, "")
}
