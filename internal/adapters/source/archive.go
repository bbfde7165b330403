package source

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/ivpm/internal/adapters/archive"
	"go.trai.ch/ivpm/internal/adapters/fs"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
)

// maxVersionLen bounds cache versions derived from HTTP validators.
const maxVersionLen = 64

// ArchiveHandler fetches single-resource packages: archives that are unpacked
// and plain files that are placed as-is.
type ArchiveHandler struct {
	tag        domain.SourceType
	downloader ports.Downloader
	extractor  ports.Extractor
}

// NewArchiveHandler creates the handler for one of the archive-like tags.
func NewArchiveHandler(tag domain.SourceType, d ports.Downloader, e ports.Extractor) *ArchiveHandler {
	return &ArchiveHandler{tag: tag, downloader: d, extractor: e}
}

// Create implements ports.SourceHandler.
func (h *ArchiveHandler) Create(name string, opts domain.Options, si domain.SrcInfo) (*domain.Package, error) {
	if h.tag == domain.SrcFile {
		if opt, ok := opts.Get("url"); ok && strings.HasPrefix(opt.String(), fileScheme) {
			if info, err := os.Stat(dirPath(opt.String(), si)); err == nil && info.IsDir() {
				return NewDirHandler().Create(name, opts, si)
			}
		}
	}
	r := newOptionReader(opts)
	pkg, err := newPackage(h.tag, name, r, si)
	if err != nil {
		return nil, err
	}
	rawURL, err := requireURL(r, name, si)
	if err != nil {
		return nil, err
	}

	src := &domain.ArchiveSource{URL: rawURL, Ext: extFor(h.tag, rawURL)}
	if src.Unpack, err = r.boolean("unpack", defaultUnpack(h.tag, src.Ext)); err != nil {
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
func (h *ArchiveHandler) Update(
	ctx context.Context, uctx *ports.UpdateContext, pkg *domain.Package,
) (domain.UpdateResult, error) {
	src := pkg.Archive()
	fill := func(ctx context.Context, dir string) error {
		return h.fetch(ctx, uctx, pkg, dir)
	}

	if !useCache(uctx, pkg) {
		res, err := editableUpdate(ctx, uctx, pkg, fill)
		if err != nil {
			return res, fetchErr(err, pkg)
		}
		return res, nil
	}

	probe, err := h.downloader.Probe(ctx, src.URL)
	if err != nil {
		return domain.UpdateResult{}, fetchErr(err, pkg)
	}
	src.ResolvedETag = probe.ETag
	src.ResolvedLastModified = probe.LastModified

	res, err := cachedUpdate(ctx, uctx, pkg, archiveVersion(probe, src.URL), fill)
	if err != nil {
		return res, fetchErr(err, pkg)
	}
	return res, nil
}

func (h *ArchiveHandler) fetch(ctx context.Context, uctx *ports.UpdateContext, pkg *domain.Package, dir string) error {
	src := pkg.Archive()
	scratch, err := stagingDir(uctx, pkg.Name)
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	base := fileName(src.URL, pkg.Name+src.Ext)
	file := filepath.Join(scratch, base)
	if src.Unpack && src.Ext != "" && archive.FormatFromName(base) == archive.FormatUnknown {
		file += src.Ext
	}

	d, err := h.downloader.Download(ctx, src.URL, file)
	if err != nil {
		return err
	}
	if src.ResolvedETag == "" && src.ResolvedLastModified == "" {
		src.ResolvedETag = d.ETag
		src.ResolvedLastModified = d.LastModified
	}

	if src.Unpack {
		return h.extractor.Extract(file, dir, true)
	}
	return placeFile(file, dir, base)
}

// placeFile moves file into dir under name.
func placeFile(file, dir, name string) error {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", dir)
	}
	return fs.Move(file, filepath.Join(dir, name))
}

// fileName returns the last path element of rawURL, or fallback.
func fileName(rawURL, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return fallback
	}
	return base
}

func extFor(tag domain.SourceType, rawURL string) string {
	switch tag {
	case domain.SrcTgz:
		return archive.FormatTarGz.Ext()
	case domain.SrcTxz:
		return archive.FormatTarXz.Ext()
	case domain.SrcZip:
		return archive.FormatZip.Ext()
	case domain.SrcJar:
		return ".jar"
	}
	if strings.HasSuffix(strings.ToLower(fileName(rawURL, "")), ".jar") {
		return ".jar"
	}
	return archive.FormatFromName(rawURL).Ext()
}

func defaultUnpack(tag domain.SourceType, ext string) bool {
	switch tag {
	case domain.SrcTgz, domain.SrcTxz, domain.SrcZip:
		return true
	case domain.SrcHTTP:
		return ext != "" && ext != ".jar"
	default:
		return false
	}
}

// archiveVersion derives a cache version from the strongest validator
// available, falling back to a hash of the URL.
func archiveVersion(d domain.Download, rawURL string) string {
	etag := strings.TrimPrefix(d.ETag, "W/")
	etag = strings.Trim(etag, `"`)

	v := sanitizeVersion(etag)
	if v == "" {
		v = sanitizeVersion(d.LastModified)
	}
	if v == "" {
		return fs.HashStrings(rawURL)
	}
	if len(v) > maxVersionLen {
		return fs.HashStrings(v)
	}
	return v
}

func sanitizeVersion(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(s))
}
