package domain

// VCS identifies the version control system of a package directory.
type VCS string

const (
	VCSGit  VCS = "git"
	VCSNone VCS = "none"
)

// StatusMissing is recorded as the error of a package whose directory does not exist.
const StatusMissing = "missing"

// PkgStatus is the read-only state of one materialized package.
type PkgStatus struct {
	Name       string
	SrcType    SourceType
	Path       string
	VCS        VCS
	Branch     string
	Commit     string
	Tag        string
	Dirty      bool
	DirtyLines []string
	Ahead      *int
	Behind     *int
	ReadOnly   bool
	Error      string
}
