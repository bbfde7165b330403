package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/ivpm/internal/adapters/forge"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
)

// ReleaseResolver picks the release asset of a gh-rls package and records it
// in the package's resolved fields.
type ReleaseResolver interface {
	Resolve(ctx context.Context, src *domain.ReleaseSource) (forge.AssetChoice, error)
}

// ReleaseHandler fetches forge release assets.
type ReleaseHandler struct {
	releases   ReleaseResolver
	downloader ports.Downloader
	extractor  ports.Extractor
}

// NewReleaseHandler creates a ReleaseHandler.
func NewReleaseHandler(rr ReleaseResolver, d ports.Downloader, e ports.Extractor) *ReleaseHandler {
	return &ReleaseHandler{releases: rr, downloader: d, extractor: e}
}

// Create implements ports.SourceHandler.
func (h *ReleaseHandler) Create(name string, opts domain.Options, si domain.SrcInfo) (*domain.Package, error) {
	r := newOptionReader(opts)
	pkg, err := newPackage(domain.SrcGhRls, name, r, si)
	if err != nil {
		return nil, err
	}
	rawURL, err := requireURL(r, name, si)
	if err != nil {
		return nil, err
	}

	src := &domain.ReleaseSource{
		URL:     rawURL,
		Version: r.str("version"),
		File:    r.str("file"),
	}
	if src.Version == "" {
		src.Version = forge.LatestSpec
	}
	if src.Prerelease, err = r.boolean("prerelease", false); err != nil {
		return nil, err
	}
	if src.ForceSource, err = r.boolean("source", false); err != nil {
		return nil, err
	}
	if pkg.Cache, err = r.cacheMode(); err != nil {
		return nil, err
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	pkg.Source = src
	return pkg, nil
}

// Update implements ports.SourceHandler.
func (h *ReleaseHandler) Update(
	ctx context.Context, uctx *ports.UpdateContext, pkg *domain.Package,
) (domain.UpdateResult, error) {
	src := pkg.Release()

	if !useCache(uctx, pkg) {
		res, err := editableUpdate(ctx, uctx, pkg, func(ctx context.Context, dir string) error {
			if _, err := h.releases.Resolve(ctx, src); err != nil {
				return err
			}
			return h.fetch(ctx, uctx, pkg, dir)
		})
		if err != nil {
			return res, fetchErr(err, pkg)
		}
		return res, nil
	}

	if _, err := h.releases.Resolve(ctx, src); err != nil {
		return domain.UpdateResult{}, fetchErr(err, pkg)
	}
	res, err := cachedUpdate(ctx, uctx, pkg, forge.Version(src), func(ctx context.Context, dir string) error {
		return h.fetch(ctx, uctx, pkg, dir)
	})
	if err != nil {
		return res, fetchErr(err, pkg)
	}
	return res, nil
}

// fetch downloads the resolved asset and unpacks it, or places it as-is when
// it is not an archive.
func (h *ReleaseHandler) fetch(ctx context.Context, uctx *ports.UpdateContext, pkg *domain.Package, dir string) error {
	src := pkg.Release()
	scratch, err := stagingDir(uctx, pkg.Name)
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	name := src.AssetName
	if name == "" {
		name = fileName(src.AssetURL, pkg.Name)
	}
	file := filepath.Join(scratch, name)
	if _, err := h.downloader.Download(ctx, src.AssetURL, file); err != nil {
		return err
	}

	err = h.extractor.Extract(file, dir, true)
	if errors.Is(err, domain.ErrUnsupportedArchive) {
		if err := placeFile(file, dir, name); err != nil {
			return err
		}
		return os.Chmod(filepath.Join(dir, name), 0o755) //nolint:gosec // release binaries are executables
	}
	return err
}
