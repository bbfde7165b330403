package lockfile

import (
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/ivpm/internal/core/domain"
)

const fileScheme = "file://"

// entryFor records pkg. Relative dir paths are expressed against lockDir.
func entryFor(pkg *domain.Package, lockDir string) domain.LockEntry {
	e := domain.LockEntry{
		Src:          pkg.Src,
		ResolvedBy:   pkg.ResolvedBy,
		DepSet:       pkg.DepSet,
		Reproducible: true,
		Cache:        pkg.Cache.Ptr(),
	}

	switch s := pkg.Source.(type) {
	case *domain.GitSource:
		e.URL = s.URL
		e.Branch = s.Branch
		e.Tag = s.Tag
		e.Depth = s.Depth
		e.CommitRequested = s.Commit
		e.CommitResolved = s.ResolvedCommit
	case *domain.ArchiveSource:
		e.URL = s.URL
		unpack := s.Unpack
		e.Unpack = &unpack
		e.ETag = s.ResolvedETag
		e.LastModified = s.ResolvedLastModified
	case *domain.ReleaseSource:
		e.URL = s.URL
		e.VersionRequested = s.Version
		e.VersionResolved = s.ResolvedTag
		e.Prerelease = s.Prerelease
		e.File = s.File
		e.ForceSource = s.ForceSource
		e.AssetURL = s.AssetURL
	case *domain.PyPISource:
		e.VersionRequested = s.Version
		e.VersionResolved = s.ResolvedVersion
	case *domain.DirSource:
		e.Reproducible = false
		e.Path = relDirPath(s.URL, pkg.SrcInfo, lockDir)
		e.Link = s.Link
	}
	return e
}

// relDirPath resolves a file:// url the way the dir handler does and
// re-expresses it relative to base when possible.
func relDirPath(rawURL string, si domain.SrcInfo, base string) string {
	path := filepath.FromSlash(strings.TrimPrefix(rawURL, fileScheme))
	if !filepath.IsAbs(path) && si.File != "" {
		path = filepath.Join(filepath.Dir(si.File), path)
	}
	path = filepath.Clean(path)
	if base == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	if rel, err := filepath.Rel(base, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

type userField struct {
	name  string
	value string
}

// userFields are the manifest-controlled fields of an entry, in report order.
func userFields(e domain.LockEntry) []userField {
	return []userField{
		{"url", e.URL},
		{"branch", e.Branch},
		{"tag", e.Tag},
		{"commit", e.CommitRequested},
		{"version", e.VersionRequested},
		{"cache", formatCache(e.Cache)},
		{"path", e.Path},
	}
}

func formatCache(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

// diffUserFields lists the user fields that differ between locked and wanted.
// Dir entries are compared by path only since their url may be spelled
// differently for the same directory.
func diffUserFields(name string, locked, wanted domain.LockEntry) []domain.LockChange {
	var changes []domain.LockChange
	lf, wf := userFields(locked), userFields(wanted)
	for i := range lf {
		if lf[i].name == "url" && locked.Src == domain.SrcDir {
			continue
		}
		if lf[i].value != wf[i].value {
			changes = append(changes, domain.LockChange{
				Name:   name,
				Field:  lf[i].name,
				Locked: lf[i].value,
				Wanted: wf[i].value,
			})
		}
	}
	return changes
}

// carryForward copies resolved fields from old into e when e did not resolve
// them this run and the user fields are unchanged.
func carryForward(e *domain.LockEntry, old domain.LockEntry) {
	if old.Src != e.Src || len(diffUserFields("", old, *e)) != 0 {
		return
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&e.CommitResolved, old.CommitResolved)
	fill(&e.VersionResolved, old.VersionResolved)
	fill(&e.AssetURL, old.AssetURL)
	fill(&e.ETag, old.ETag)
	fill(&e.LastModified, old.LastModified)
}
