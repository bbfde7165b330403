package lockfile

import (
	"time"

	"go.trai.ch/ivpm/internal/core/ports"
)

// NewStoreAt creates a Store with a fixed clock.
func NewStoreAt(registry ports.SourceRegistry, now time.Time) *Store {
	s := NewStore(registry)
	s.now = func() time.Time { return now }
	return s
}
