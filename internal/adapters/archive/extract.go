package archive

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// Extractor implements ports.Extractor.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks archive into destDir. The archive is first unpacked into a
// sibling staging directory which is renamed into place, so destDir never
// holds a partial tree.
func (e *Extractor) Extract(archive, destDir string, strip bool) error {
	format := FormatFromName(archive)
	if format == FormatUnknown {
		sniffed, err := sniff(archive)
		if err != nil {
			return zerr.With(errors.Join(domain.ErrExtractFailed, err), "archive", archive)
		}
		format = sniffed
	}
	if format == FormatUnknown {
		return zerr.With(zerr.Wrap(domain.ErrUnsupportedArchive, ""), "archive", archive)
	}

	if err := removeEmptyDir(destDir); err != nil {
		return err
	}

	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", parent)
	}
	staging, err := os.MkdirTemp(parent, ".extract-*")
	if err != nil {
		return zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", parent)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	if format == FormatZip {
		err = extractZip(archive, staging)
	} else {
		err = extractTarFile(archive, format, staging)
	}
	if err != nil {
		return zerr.With(err, "archive", archive)
	}

	src := staging
	if strip {
		if top, ok := singleTopDir(staging); ok {
			src = top
		}
	}
	if err := os.Rename(src, destDir); err != nil {
		return zerr.With(errors.Join(domain.ErrExtractFailed, err), "dest", destDir)
	}
	return nil
}

// ExtractTar unpacks a tar stream in format into destDir without staging.
func ExtractTar(r io.Reader, format Format, destDir string) error {
	dr, closeFn, err := decompress(format, r)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()
	return untar(tar.NewReader(dr), destDir)
}

func extractTarFile(path string, format Format, destDir string) error {
	// #nosec G304 -- path is a download staged by ivpm
	f, err := os.Open(path)
	if err != nil {
		return errors.Join(domain.ErrExtractFailed, err)
	}
	defer func() { _ = f.Close() }()
	return ExtractTar(f, format, destDir)
}

func untar(tr *tar.Reader, destDir string) error {
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Join(domain.ErrExtractFailed, err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, dirMode(hdr.FileInfo().Mode())); err != nil {
				return errors.Join(domain.ErrExtractFailed, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := symlink(destDir, target, hdr.Linkname); err != nil {
				return err
			}
		case tar.TypeLink:
			src, err := safeJoin(destDir, hdr.Linkname)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
				return errors.Join(domain.ErrExtractFailed, err)
			}
			if err := os.Link(src, target); err != nil {
				return errors.Join(domain.ErrExtractFailed, err)
			}
		default:
			// Device nodes, fifos and pax headers carry nothing a package needs.
		}
	}
}

func extractZip(path, destDir string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return errors.Join(domain.ErrExtractFailed, err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, dirMode(mode)); err != nil {
				return errors.Join(domain.ErrExtractFailed, err)
			}
		case mode&fs.ModeSymlink != 0:
			rc, err := f.Open()
			if err != nil {
				return errors.Join(domain.ErrExtractFailed, err)
			}
			link, err := io.ReadAll(rc)
			_ = rc.Close()
			if err != nil {
				return errors.Join(domain.ErrExtractFailed, err)
			}
			if err := symlink(destDir, target, string(link)); err != nil {
				return err
			}
		default:
			rc, err := f.Open()
			if err != nil {
				return errors.Join(domain.ErrExtractFailed, err)
			}
			err = writeFile(target, rc, mode)
			_ = rc.Close()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// safeJoin resolves name below root and rejects entries that escape it.
func safeJoin(root, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", zerr.With(zerr.Wrap(domain.ErrUnsafeArchivePath, ""), "entry", name)
	}
	return filepath.Join(root, clean), nil
}

func symlink(root, target, linkname string) error {
	resolved := linkname
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(target), linkname)
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return zerr.With(zerr.Wrap(domain.ErrUnsafeArchivePath, ""), "link", linkname)
	}
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return errors.Join(domain.ErrExtractFailed, err)
	}
	if err := os.Symlink(linkname, target); err != nil {
		return errors.Join(domain.ErrSymlinkFailed, err)
	}
	return nil
}

func writeFile(target string, r io.Reader, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return errors.Join(domain.ErrExtractFailed, err)
	}
	perm := mode.Perm() | 0o600
	// #nosec G304 -- target was validated by safeJoin
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return errors.Join(domain.ErrExtractFailed, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return errors.Join(domain.ErrExtractFailed, err)
	}
	if err := f.Close(); err != nil {
		return errors.Join(domain.ErrExtractFailed, err)
	}
	return nil
}

func dirMode(mode fs.FileMode) fs.FileMode {
	return mode.Perm() | 0o700
}

// singleTopDir returns the only entry of dir when that entry is a directory.
func singleTopDir(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		return "", false
	}
	return filepath.Join(dir, entries[0].Name()), true
}

// removeEmptyDir clears an empty destination so it can be replaced by rename.
func removeEmptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return zerr.With(zerr.Wrap(domain.ErrUnexpectedFile, ""), "path", dir)
	case len(entries) > 0:
		return zerr.With(zerr.Wrap(domain.ErrExtractFailed, "destination is not empty"), "path", dir)
	}
	return os.Remove(dir)
}
