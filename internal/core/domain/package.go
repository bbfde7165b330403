package domain

// Package is one dependency in a dependency set or in the resolved closure.
// Source carries the variant-specific payload.
type Package struct {
	Name        string
	Src         SourceType
	DepSet      string
	ProcessDeps bool
	PkgType     string
	Path        string
	ResolvedBy  string
	Cache       CacheMode
	SrcInfo     SrcInfo
	Source      Source
	// Requires lists the packages named by this package's own dependency set.
	Requires []string
}

// Source is the sealed set of per-variant package payloads.
type Source interface {
	// Describe returns a short human-readable location for progress output.
	Describe() string
	isSource()
}

// GitSource is the payload of git packages.
type GitSource struct {
	URL            string
	Branch         string
	Tag            string
	Commit         string
	Depth          int
	Anonymous      bool
	ResolvedCommit string
}

// ArchiveSource is the payload of http, tgz, txz, zip, jar, file and url packages.
type ArchiveSource struct {
	URL                  string
	Unpack               bool
	Ext                  string
	ResolvedETag         string
	ResolvedLastModified string
}

// ReleaseSource is the payload of gh-rls packages.
type ReleaseSource struct {
	URL         string
	Version     string
	Prerelease  bool
	File        string
	ForceSource bool
	ResolvedTag string
	AssetName   string
	AssetURL    string
	BinaryAsset bool
	PlatformTag string
}

// PyPISource is the payload of pypi packages.
type PyPISource struct {
	Version         string
	ResolvedVersion string
}

// DirSource is the payload of dir packages.
type DirSource struct {
	URL  string
	Link bool
}

func (*GitSource) isSource()     {}
func (*ArchiveSource) isSource() {}
func (*ReleaseSource) isSource() {}
func (*PyPISource) isSource()    {}
func (*DirSource) isSource()     {}

// Describe implements Source.
func (g *GitSource) Describe() string {
	switch {
	case g.Tag != "":
		return g.URL + "@" + g.Tag
	case g.Branch != "":
		return g.URL + "#" + g.Branch
	default:
		return g.URL
	}
}

// Describe implements Source.
func (a *ArchiveSource) Describe() string { return a.URL }

// Describe implements Source.
func (r *ReleaseSource) Describe() string {
	if r.Version == "" {
		return r.URL
	}
	return r.URL + " (" + r.Version + ")"
}

// Describe implements Source.
func (p *PyPISource) Describe() string {
	if p.Version == "" {
		return "pypi"
	}
	return "pypi " + p.Version
}

// Describe implements Source.
func (d *DirSource) Describe() string { return d.URL }

// Git returns the git payload, or nil for other variants.
func (p *Package) Git() *GitSource {
	s, _ := p.Source.(*GitSource)
	return s
}

// Archive returns the archive payload, or nil for other variants.
func (p *Package) Archive() *ArchiveSource {
	s, _ := p.Source.(*ArchiveSource)
	return s
}

// Release returns the gh-rls payload, or nil for other variants.
func (p *Package) Release() *ReleaseSource {
	s, _ := p.Source.(*ReleaseSource)
	return s
}

// PyPI returns the pypi payload, or nil for other variants.
func (p *Package) PyPI() *PyPISource {
	s, _ := p.Source.(*PyPISource)
	return s
}

// Dir returns the dir payload, or nil for other variants.
func (p *Package) Dir() *DirSource {
	s, _ := p.Source.(*DirSource)
	return s
}

// Describe returns the source description, or the source tag if no payload is set.
func (p *Package) Describe() string {
	if p.Source == nil {
		return p.Src.String()
	}
	return p.Source.Describe()
}

// URL returns the URL of URL-bearing variants.
func (p *Package) URL() string {
	switch s := p.Source.(type) {
	case *GitSource:
		return s.URL
	case *ArchiveSource:
		return s.URL
	case *ReleaseSource:
		return s.URL
	case *DirSource:
		return s.URL
	default:
		return ""
	}
}

// UpdateResult reports how a source handler materialized a package.
type UpdateResult struct {
	// Cacheable is true when the package went through the cache backend.
	Cacheable bool
	// CacheHit is true when the cached entry already existed.
	CacheHit bool
	// AlreadyLoaded is true when the destination existed and nothing was fetched.
	AlreadyLoaded bool
}
