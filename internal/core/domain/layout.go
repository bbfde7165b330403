package domain

import "path/filepath"

const (
	// ManifestFileName is the name of the project manifest.
	ManifestFileName = "ivpm.yaml"

	// DefaultDepsDir is the dependencies directory used when the manifest does not name one.
	DefaultDepsDir = "packages"

	// LockFileName is the name of the lock file inside the dependencies directory.
	LockFileName = "package-lock.json"

	// DownloadDirName is the transient staging area for archive downloads.
	DownloadDirName = ".download"

	// PythonDirName is the interpreter environment directory inside the dependencies directory.
	PythonDirName = "python"

	// CacheMarkerName marks a directory initialized by `ivpm cache init`.
	CacheMarkerName = ".ivpm-cache"

	// StagingSuffix is appended to a version directory while it is being populated.
	StagingSuffix = ".tmp"

	// DefaultDepSet is the dependency set used when none is requested.
	DefaultDepSet = "default-dev"

	// DefaultConsumedDepSet is the dependency set used for a package consumed as a dependency.
	DefaultConsumedDepSet = "default"

	// SelfPackageName is the tool's own registry package name.
	SelfPackageName = "ivpm"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// PkgDir returns the directory holding every cached version of a package.
func PkgDir(cacheRoot, name string) string {
	return filepath.Join(cacheRoot, name)
}

// VersionDir returns the directory of one cached (name, version) entry.
func VersionDir(cacheRoot, name, version string) string {
	return filepath.Join(cacheRoot, name, version)
}

// StagingDir returns the temporary directory an entry is assembled in before
// it is renamed to its VersionDir.
func StagingDir(cacheRoot, name, version string) string {
	return VersionDir(cacheRoot, name, version) + StagingSuffix
}

// DepPath returns the location of a materialized package in the deps directory.
func DepPath(depsDir, name string) string {
	return filepath.Join(depsDir, name)
}

// LockPath returns the lock file location for a deps directory.
func LockPath(depsDir string) string {
	return filepath.Join(depsDir, LockFileName)
}

// DownloadDir returns the download staging area of a deps directory.
func DownloadDir(depsDir string) string {
	return filepath.Join(depsDir, DownloadDirName)
}

// PythonDir returns the interpreter environment location of a deps directory.
func PythonDir(depsDir string) string {
	return filepath.Join(depsDir, PythonDirName)
}
