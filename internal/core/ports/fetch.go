package ports

import (
	"context"

	"go.trai.ch/ivpm/internal/core/domain"
)

// ReleaseClient queries a forge for repository releases.
//
//go:generate mockgen -source=fetch.go -destination=mocks/mock_fetch.go -package=mocks
type ReleaseClient interface {
	// ListReleases returns the releases of owner/repo, newest first.
	ListReleases(ctx context.Context, owner, repo string) ([]domain.Release, error)
}

// Downloader fetches HTTP resources.
type Downloader interface {
	// Probe returns the validators of url without downloading the body.
	Probe(ctx context.Context, url string) (domain.Download, error)

	// Download writes url to dest and returns its validators.
	Download(ctx context.Context, url, dest string) (domain.Download, error)
}

// Extractor unpacks archives.
type Extractor interface {
	// Extract unpacks archive into destDir. When strip is true the single
	// top-level directory of the archive is removed.
	Extract(archive, destDir string, strip bool) error
}
