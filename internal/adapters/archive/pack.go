package archive

import (
	"archive/tar"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// WriteTarGz streams the contents of srcDir as a gzip-compressed tar to w.
// Entry names are relative to srcDir.
func WriteTarGz(w io.Writer, srcDir string) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil || rel == "." {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}
		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
		}
		hdr.Uname, hdr.Gname = "", ""
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		// #nosec G304 -- path comes from walking a cache entry
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, f)
		_ = f.Close()
		return err
	})
	if walkErr != nil {
		return zerr.With(zerr.Wrap(walkErr, "failed to archive directory"), "path", srcDir)
	}

	if err := tw.Close(); err != nil {
		return zerr.Wrap(err, "failed to finish tar stream")
	}
	if err := gz.Close(); err != nil {
		return zerr.Wrap(err, "failed to finish gzip stream")
	}
	return nil
}

// ExtractTarGz unpacks a gzip-compressed tar stream into destDir.
func ExtractTarGz(r io.Reader, destDir string) error {
	if err := os.MkdirAll(destDir, domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", destDir)
	}
	return ExtractTar(r, FormatTarGz, destDir)
}
