package domain

// SourceType is the tag selecting how a package is fetched.
type SourceType string

const (
	SrcGit   SourceType = "git"
	SrcHTTP  SourceType = "http"
	SrcTgz   SourceType = "tgz"
	SrcTxz   SourceType = "txz"
	SrcZip   SourceType = "zip"
	SrcJar   SourceType = "jar"
	SrcGhRls SourceType = "gh-rls"
	SrcPyPI  SourceType = "pypi"
	SrcDir   SourceType = "dir"
	SrcFile  SourceType = "file"
	SrcURL   SourceType = "url"
)

// String implements fmt.Stringer.
func (s SourceType) String() string {
	return string(s)
}

// IsArchive reports whether the source is fetched as a single HTTP resource.
func (s SourceType) IsArchive() bool {
	switch s {
	case SrcHTTP, SrcTgz, SrcTxz, SrcZip, SrcJar, SrcFile, SrcURL:
		return true
	default:
		return false
	}
}

// CacheMode is the tri-state `cache:` option of a package.
type CacheMode int

const (
	// CacheUnset means the manifest did not say.
	CacheUnset CacheMode = iota
	// CacheEnabled stores the package read-only in the cache.
	CacheEnabled
	// CacheDisabled materializes the package as an editable copy.
	CacheDisabled
)

// Enabled reports whether the package is cacheable.
func (c CacheMode) Enabled() bool {
	return c == CacheEnabled
}

// Ptr returns the mode as an optional bool for serialization.
func (c CacheMode) Ptr() *bool {
	switch c {
	case CacheEnabled:
		v := true
		return &v
	case CacheDisabled:
		v := false
		return &v
	default:
		return nil
	}
}

// CacheModeFromPtr is the inverse of Ptr.
func CacheModeFromPtr(b *bool) CacheMode {
	switch {
	case b == nil:
		return CacheUnset
	case *b:
		return CacheEnabled
	default:
		return CacheDisabled
	}
}
