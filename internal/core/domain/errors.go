package domain

import "go.trai.ch/zerr"

// Manifest errors.
var (
	// ErrManifestNotFound is returned when no ivpm.yaml exists in the project directory.
	ErrManifestNotFound = zerr.New("could not find ivpm.yaml")

	// ErrManifestReadFailed is returned when the manifest file cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest")

	// ErrMalformedManifest is returned when the manifest does not have the expected structure.
	ErrMalformedManifest = zerr.New("malformed manifest")

	// ErrUnknownSourceTag is returned when a dependency names a src that has no registered handler.
	ErrUnknownSourceTag = zerr.New("unknown source type")

	// ErrUnknownPackageOption is returned when a dependency carries an option its source does not accept.
	ErrUnknownPackageOption = zerr.New("unknown package option")

	// ErrInvalidPackageOption is returned when an option value has the wrong type or an illegal value.
	ErrInvalidPackageOption = zerr.New("invalid package option")

	// ErrDuplicatePackage is returned when a dependency set names the same package twice.
	ErrDuplicatePackage = zerr.New("duplicate package")

	// ErrMissingPackageName is returned when a dependency entry has no name.
	ErrMissingPackageName = zerr.New("dependency is missing a name")

	// ErrSourceNotInferred is returned when neither src nor a recognizable url is given.
	ErrSourceNotInferred = zerr.New("cannot infer source type, specify src")

	// ErrDepSetNotFound is returned when a requested dependency set does not exist.
	ErrDepSetNotFound = zerr.New("dependency set not found")

	// ErrDuplicateSourceHandler is returned when two handlers register the same source tag.
	ErrDuplicateSourceHandler = zerr.New("source handler already registered")
)

// Network errors.
var (
	// ErrFetchFailed is returned when one or more packages could not be materialized.
	ErrFetchFailed = zerr.New("fetch failed")

	// ErrGitCommandFailed is returned when a git invocation exits non-zero.
	ErrGitCommandFailed = zerr.New("git command failed")

	// ErrHTTPStatus is returned when a download answers with a non-2xx status.
	ErrHTTPStatus = zerr.New("unexpected HTTP status")

	// ErrForgeAPIFailed is returned when the release API cannot be queried.
	ErrForgeAPIFailed = zerr.New("release API request failed")

	// ErrForgeRateLimited is returned when the release API reports an exhausted rate limit.
	ErrForgeRateLimited = zerr.New("release API rate limit exceeded")

	// ErrNoMatchingRelease is returned when no release satisfies the version spec.
	ErrNoMatchingRelease = zerr.New("no release matches version spec")

	// ErrNoMatchingAsset is returned when no release asset fits the current platform.
	ErrNoMatchingAsset = zerr.New("no release asset matches this platform")

	// ErrGitRefNotFound is returned when a branch or tag does not exist on the remote.
	ErrGitRefNotFound = zerr.New("git ref not found on remote")

	// ErrInvalidVersionSpec is returned when a version spec cannot be parsed.
	ErrInvalidVersionSpec = zerr.New("invalid version spec")

	// ErrRemoteCacheFailed is returned when a remote cache operation fails.
	ErrRemoteCacheFailed = zerr.New("remote cache request failed")

	// ErrRemoteKeyExists is returned when a remote cache slot for the key has already been reserved.
	ErrRemoteKeyExists = zerr.New("remote cache key already exists")
)

// Filesystem errors.
var (
	// ErrExtractFailed is returned when an archive cannot be unpacked.
	ErrExtractFailed = zerr.New("failed to extract archive")

	// ErrUnsupportedArchive is returned when no extractor handles the archive extension.
	ErrUnsupportedArchive = zerr.New("unsupported archive format")

	// ErrUnsafeArchivePath is returned when an archive member escapes the destination.
	ErrUnsafeArchivePath = zerr.New("archive entry escapes destination")

	// ErrSymlinkFailed is returned when a symlink cannot be created or replaced.
	ErrSymlinkFailed = zerr.New("failed to create symlink")

	// ErrCopyFailed is returned when a directory cannot be copied.
	ErrCopyFailed = zerr.New("failed to copy directory")

	// ErrUnexpectedFile is returned when a non-directory occupies a package destination.
	ErrUnexpectedFile = zerr.New("unexpected file at destination")

	// ErrDirSourceNotFound is returned when a dir package points at a missing directory.
	ErrDirSourceNotFound = zerr.New("source directory does not exist")

	// ErrDirURLScheme is returned when a dir package URL does not start with file://.
	ErrDirURLScheme = zerr.New("dir package url must start with file://")

	// ErrCreateDirFailed is returned when a directory cannot be created.
	ErrCreateDirFailed = zerr.New("failed to create directory")
)

// Cache errors.
var (
	// ErrCacheStoreFailed is returned when a staging directory cannot be moved into the cache.
	ErrCacheStoreFailed = zerr.New("failed to store cache entry")

	// ErrCacheLinkFailed is returned when a cache entry cannot be linked into the deps directory.
	ErrCacheLinkFailed = zerr.New("failed to link cache entry")

	// ErrCacheNotConfigured is returned when a cache operation needs a root that was never set.
	ErrCacheNotConfigured = zerr.New("cache is not configured, set IVPM_CACHE")

	// ErrUnknownCacheBackend is returned when a backend name has no registered provider.
	ErrUnknownCacheBackend = zerr.New("unknown cache backend")

	// ErrCacheBackendUnavailable is returned when a requested backend cannot run in this environment.
	ErrCacheBackendUnavailable = zerr.New("cache backend is not available")

	// ErrCacheCleanFailed is returned when old cache entries cannot be removed.
	ErrCacheCleanFailed = zerr.New("failed to clean cache")
)

// Lock errors.
var (
	// ErrLockNotFound is returned when no lock file exists.
	ErrLockNotFound = zerr.New("lock file not found")

	// ErrLockReadFailed is returned when the lock file cannot be read.
	ErrLockReadFailed = zerr.New("failed to read lock file")

	// ErrLockParseFailed is returned when the lock file is not valid JSON.
	ErrLockParseFailed = zerr.New("failed to parse lock file")

	// ErrUnknownLockVersion is returned when the lock file version is not supported.
	ErrUnknownLockVersion = zerr.New("unknown lock file version")

	// ErrLockWriteFailed is returned when the lock file cannot be written.
	ErrLockWriteFailed = zerr.New("failed to write lock file")

	// ErrLockChecksumMismatch is reported when the stored checksum does not match the body.
	ErrLockChecksumMismatch = zerr.New("lock file checksum mismatch")
)

// Sync errors.
var (
	// ErrSyncFailed is returned when at least one package ended in the ERROR outcome.
	ErrSyncFailed = zerr.New("sync failed")

	// ErrNotGitRepository is returned when a package directory is not a git working copy.
	ErrNotGitRepository = zerr.New("not a git repository")

	// ErrDetachedHead is returned when HEAD is detached and no branch can be inferred.
	ErrDetachedHead = zerr.New("detached HEAD and no branch could be inferred")
)

// Handler errors.
var (
	// ErrCommandFailed is returned when an external process exits non-zero or cannot be started.
	ErrCommandFailed = zerr.New("command failed")

	// ErrInstallerFailed is returned when the external installer exits non-zero.
	ErrInstallerFailed = zerr.New("installer failed")

	// ErrVenvCreateFailed is returned when the interpreter environment cannot be provisioned.
	ErrVenvCreateFailed = zerr.New("failed to create python environment")

	// ErrDependencyCycle is returned when handler ordering finds a cycle.
	ErrDependencyCycle = zerr.New("dependency cycle detected")

	// ErrRequirementsWriteFailed is returned when a requirements file cannot be written.
	ErrRequirementsWriteFailed = zerr.New("failed to write requirements file")
)

// Application errors.
var (
	// ErrCloneFailed is returned when the clone command cannot clone the project.
	ErrCloneFailed = zerr.New("clone failed")

	// ErrWorkspaceExists is returned when the clone destination already exists.
	ErrWorkspaceExists = zerr.New("workspace directory already exists")

	// ErrInvalidJobs is returned when the worker count is not positive.
	ErrInvalidJobs = zerr.New("jobs must be greater than zero")

	// ErrInvalidAge is returned when cache clean is given a negative number of days.
	ErrInvalidAge = zerr.New("days must not be negative")
)
