package lockfile

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/natefinch/atomic"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
)

// ReproducedDepSet names the dependency set rebuilt from a lock file.
const ReproducedDepSet = "lock"

// Store implements ports.LockStore on a JSON file.
type Store struct {
	registry ports.SourceRegistry
	now      func() time.Time
}

// NewStore creates a Store. The registry reconstitutes packages in Reproduce.
func NewStore(registry ports.SourceRegistry) *Store {
	return &Store{registry: registry, now: time.Now}
}

// Write records every package of closure.
func (s *Store) Write(path string, closure *domain.PackagesInfo, contributions map[string]any) error {
	lockDir := absDir(path)

	var previous *domain.Lock
	if old, err := s.Read(path); err == nil {
		previous = old
	}

	lock := &domain.Lock{
		Path:          path,
		Version:       domain.LockVersion,
		Generated:     s.now().UTC().Truncate(time.Second),
		Packages:      make(map[string]domain.LockEntry, closure.Len()),
		Contributions: contributions,
	}
	for pkg := range closure.All() {
		e := entryFor(pkg, lockDir)
		if previous != nil {
			if old, ok := previous.Packages[pkg.Name]; ok {
				carryForward(&e, old)
			}
		}
		lock.Packages[pkg.Name] = e
	}
	return s.save(path, lock)
}

// Read parses the lock file at path.
func (s *Store) Read(path string) (*domain.Lock, error) {
	//nolint:gosec // Path is the lock location inside the deps directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrLockNotFound, ""), "path", path)
		}
		return nil, zerr.With(errors.Join(domain.ErrLockReadFailed, err), "path", path)
	}
	lock, err := parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	lock.Path = path
	return lock, nil
}

// CheckChanges reports, for every package of current, the user fields that
// no longer match lock.
func (s *Store) CheckChanges(lock *domain.Lock, current *domain.PackagesInfo) []domain.LockChange {
	lockDir := ""
	if lock.Path != "" {
		lockDir = absDir(lock.Path)
	}

	var changes []domain.LockChange
	for pkg := range current.All() {
		locked, ok := lock.Packages[pkg.Name]
		if !ok {
			changes = append(changes, domain.LockChange{
				Name:   pkg.Name,
				Field:  domain.LockFieldAdded,
				Wanted: pkg.Src.String(),
			})
			continue
		}
		if locked.Src != pkg.Src {
			changes = append(changes, domain.LockChange{
				Name:   pkg.Name,
				Field:  domain.LockFieldSrc,
				Locked: locked.Src.String(),
				Wanted: pkg.Src.String(),
			})
			continue
		}
		changes = append(changes, diffUserFields(pkg.Name, locked, entryFor(pkg, lockDir))...)
	}
	return changes
}

// PatchAfterSync stores the new HEAD of every synced git package. Other
// entries and the generated timestamp are left as they are.
func (s *Store) PatchAfterSync(path string, results []domain.PkgSyncResult) error {
	lock, err := s.Read(path)
	if err != nil {
		return err
	}

	changed := false
	for _, r := range results {
		if r.Outcome != domain.SyncSynced || r.SrcType != domain.SrcGit || r.NewCommit == "" {
			continue
		}
		e, ok := lock.Packages[r.Name]
		if !ok || e.CommitResolved == r.NewCommit {
			continue
		}
		e.CommitResolved = r.NewCommit
		lock.Packages[r.Name] = e
		changed = true
	}
	if !changed && lock.ChecksumValid {
		return nil
	}
	return s.save(path, lock)
}

// Reproduce builds a dependency set whose packages are pinned to the
// identities resolved in lock. Transitive processing is disabled since the
// lock already holds the whole closure.
func (s *Store) Reproduce(lock *domain.Lock) (*domain.PackagesInfo, error) {
	si := domain.SrcInfo{File: lock.Path}
	info := domain.NewPackagesInfo(ReproducedDepSet)
	info.SrcInfo = si

	names := make([]string, 0, len(lock.Packages))
	for name := range lock.Packages {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		e := lock.Packages[name]
		pkg, err := s.registry.Create(e.Src, name, pinnedOptions(e, si), si)
		if err != nil {
			return nil, zerr.With(err, "package", name)
		}
		pkg.ResolvedBy = e.ResolvedBy
		info.Add(pkg)
	}
	return info, nil
}

func (s *Store) save(path string, lock *domain.Lock) error {
	data, err := render(lock)
	if err != nil {
		return zerr.With(err, "path", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrLockWriteFailed, err), "path", path)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return zerr.With(errors.Join(domain.ErrLockWriteFailed, err), "path", path)
	}
	if err := os.Chmod(path, domain.FilePerm); err != nil {
		return zerr.With(errors.Join(domain.ErrLockWriteFailed, err), "path", path)
	}
	return nil
}

func absDir(path string) string {
	dir := filepath.Dir(path)
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// pinnedOptions turns a lock entry back into manifest options with the
// resolved identity in place of the requested one.
func pinnedOptions(e domain.LockEntry, si domain.SrcInfo) domain.Options {
	var opts domain.Options
	add := func(key string, value any) {
		opts = append(opts, domain.Option{Key: key, Value: value, SrcInfo: si})
	}

	add("deps", "skip")
	if e.DepSet != "" {
		add("dep-set", e.DepSet)
	}
	if e.Cache != nil {
		add("cache", *e.Cache)
	}

	switch {
	case e.Src == domain.SrcGit:
		add("url", e.URL)
		switch {
		case e.CommitResolved != "":
			if e.Branch != "" {
				add("branch", e.Branch)
			}
			add("commit", e.CommitResolved)
		case e.CommitRequested != "":
			add("commit", e.CommitRequested)
		case e.Tag != "":
			add("tag", e.Tag)
		case e.Branch != "":
			add("branch", e.Branch)
		}
	case e.Src == domain.SrcGhRls:
		add("url", e.URL)
		add("version", firstNonEmpty(e.VersionResolved, e.VersionRequested))
		if e.Prerelease {
			add("prerelease", true)
		}
		if e.File != "" {
			add("file", e.File)
		}
		if e.ForceSource {
			add("source", true)
		}
	case e.Src == domain.SrcPyPI:
		if e.VersionResolved != "" {
			add("version", "=="+e.VersionResolved)
		} else if e.VersionRequested != "" {
			add("version", e.VersionRequested)
		}
	case e.Src == domain.SrcDir:
		add("url", fileScheme+e.Path)
		add("link", e.Link)
	case e.Src.IsArchive():
		add("url", e.URL)
		if e.Unpack != nil {
			add("unpack", *e.Unpack)
		}
	}
	return opts
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
