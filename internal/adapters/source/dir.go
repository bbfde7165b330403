package source

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.trai.ch/ivpm/internal/adapters/fs"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
)

const fileScheme = "file://"

// DirHandler brings a local directory into the deps directory, as a link or
// as a copy.
type DirHandler struct {
	goos string
}

// NewDirHandler creates a DirHandler.
func NewDirHandler() *DirHandler {
	return &DirHandler{goos: runtime.GOOS}
}

// Create implements ports.SourceHandler.
func (h *DirHandler) Create(name string, opts domain.Options, si domain.SrcInfo) (*domain.Package, error) {
	r := newOptionReader(opts)
	pkg, err := newPackage(domain.SrcDir, name, r, si)
	if err != nil {
		return nil, err
	}
	rawURL, err := requireURL(r, name, si)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(rawURL, fileScheme) {
		opt, _ := r.get("url")
		return nil, zerr.With(opt.SrcInfo.Annotate(zerr.Wrap(domain.ErrDirURLScheme, "")), "url", rawURL)
	}

	src := &domain.DirSource{URL: rawURL}
	if src.Link, err = r.boolean("link", true); err != nil {
		return nil, err
	}
	if h.goos == "windows" {
		src.Link = false
	}
	// Local directories are never cached; the option is accepted for symmetry.
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
func (h *DirHandler) Update(
	ctx context.Context, uctx *ports.UpdateContext, pkg *domain.Package,
) (domain.UpdateResult, error) {
	src := pkg.Dir()
	path := dirPath(src.URL, pkg.SrcInfo)

	info, err := os.Stat(path)
	if errors.Is(err, iofs.ErrNotExist) || (err == nil && !info.IsDir()) {
		err := pkg.SrcInfo.Annotate(zerr.Wrap(domain.ErrDirSourceNotFound, ""))
		return domain.UpdateResult{}, zerr.With(err, "path", path)
	}
	if err != nil {
		return domain.UpdateResult{}, fetchErr(err, pkg)
	}

	res, err := editableUpdate(ctx, uctx, pkg, func(_ context.Context, dest string) error {
		if src.Link {
			if err := os.Symlink(path, dest); err != nil {
				return zerr.With(errors.Join(domain.ErrSymlinkFailed, err), "path", dest)
			}
			return nil
		}
		return fs.CopyDir(path, dest)
	})
	if err != nil {
		return res, fetchErr(err, pkg)
	}
	return res, nil
}

// dirPath resolves a file:// URL. Relative paths are taken from the directory
// of the manifest that declared the package.
func dirPath(rawURL string, si domain.SrcInfo) string {
	path := filepath.FromSlash(strings.TrimPrefix(rawURL, fileScheme))
	if !filepath.IsAbs(path) && si.File != "" {
		path = filepath.Join(filepath.Dir(si.File), path)
	}
	return filepath.Clean(path)
}
