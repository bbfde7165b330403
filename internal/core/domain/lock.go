package domain

import (
	"slices"
	"time"
)

// LockVersion is the only lock file format version this build reads and writes.
const LockVersion = 1

// Lock is the parsed content of a lock file.
type Lock struct {
	// Path is the file the lock was read from. Relative dir paths resolve against its directory.
	Path      string
	Version   int
	Generated time.Time
	Packages  map[string]LockEntry
	// Contributions holds handler-contributed top-level keys such as python_packages.
	Contributions map[string]any
	SHA256        string
	// ChecksumValid is false when the stored checksum does not match the body.
	ChecksumValid bool
}

// LockEntry records the requested and resolved identity of one package.
type LockEntry struct {
	Src          SourceType `json:"src"`
	ResolvedBy   string     `json:"resolved_by"`
	DepSet       string     `json:"dep_set,omitempty"`
	Reproducible bool       `json:"reproducible"`
	Cache        *bool      `json:"cache,omitempty"`
	URL          string     `json:"url,omitempty"`

	Branch          string `json:"branch,omitempty"`
	Tag             string `json:"tag,omitempty"`
	Depth           int    `json:"depth,omitempty"`
	CommitRequested string `json:"commit_requested,omitempty"`
	CommitResolved  string `json:"commit_resolved,omitempty"`

	VersionRequested string `json:"version_requested,omitempty"`
	VersionResolved  string `json:"version_resolved,omitempty"`
	Prerelease       bool   `json:"prerelease,omitempty"`
	File             string `json:"file,omitempty"`
	ForceSource      bool   `json:"source,omitempty"`
	AssetURL         string `json:"asset_url,omitempty"`

	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	Unpack       *bool  `json:"unpack,omitempty"`

	Path string `json:"path,omitempty"`
	Link bool   `json:"link,omitempty"`
}

// LockChange is one difference between the manifest and the lock file.
type LockChange struct {
	Name   string
	Field  string
	Locked string
	Wanted string
}

const (
	// LockFieldAdded marks a package present in the manifest but absent from the lock.
	LockFieldAdded = "<added>"
	// LockFieldSrc marks a package whose source type changed.
	LockFieldSrc = "src"
)

// Checkout is a package as recorded by the lock file, located in the deps directory.
type Checkout struct {
	Name   string
	Src    SourceType
	Path   string
	Branch string
	Tag    string
}

// Checkouts returns the locked packages in name order. pypi entries are
// omitted because they are never materialized.
func (l *Lock) Checkouts(depsDir string) []Checkout {
	names := make([]string, 0, len(l.Packages))
	for name, e := range l.Packages {
		if e.Src == SrcPyPI {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]Checkout, len(names))
	for i, name := range names {
		e := l.Packages[name]
		out[i] = Checkout{
			Name:   name,
			Src:    e.Src,
			Path:   DepPath(depsDir, name),
			Branch: e.Branch,
			Tag:    e.Tag,
		}
	}
	return out
}
