package ports

import (
	"io"

	"go.trai.ch/ivpm/internal/core/domain"
)

// ManifestLoader reads project descriptions.
//
//go:generate mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks
type ManifestLoader interface {
	// Load parses a manifest from r. file is used for SrcInfo and to resolve
	// relative paths.
	Load(r io.Reader, file string) (*domain.ProjInfo, error)

	// LoadDir reads <dir>/ivpm.yaml.
	// It returns domain.ErrManifestNotFound when the directory has no manifest.
	LoadDir(dir string) (*domain.ProjInfo, error)
}
