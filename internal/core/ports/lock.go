package ports

import "go.trai.ch/ivpm/internal/core/domain"

// LockStore reads and writes lock files.
//
//go:generate mockgen -source=lock.go -destination=mocks/mock_lock.go -package=mocks
type LockStore interface {
	// Write serializes the closure and handler contributions to path atomically.
	Write(path string, closure *domain.PackagesInfo, contributions map[string]any) error

	// Read parses path. A checksum mismatch is reported through
	// Lock.ChecksumValid, not as an error.
	Read(path string) (*domain.Lock, error)

	// CheckChanges compares the user-specified fields of current against lock.
	CheckChanges(lock *domain.Lock, current *domain.PackagesInfo) []domain.LockChange

	// PatchAfterSync rewrites commit_resolved of every SYNCED git package.
	PatchAfterSync(path string, results []domain.PkgSyncResult) error

	// Reproduce rebuilds a dependency set pinned to the resolved identities in lock.
	Reproduce(lock *domain.Lock) (*domain.PackagesInfo, error)
}
