// Package fs provides the filesystem operations behind package materialization
// and the cache: copying, moving, atomic symlink swaps and write protection.
package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"syscall"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

const writeBits iofs.FileMode = 0o222

// CopyDir copies the tree at src to dst. Symlinks are copied as links and file
// modes are preserved. dst must not exist.
func CopyDir(src, dst string) error {
	err := filepath.WalkDir(src, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case info.Mode()&iofs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode().Perm())
		default:
			return nil
		}
	})
	if err != nil {
		return zerr.With(zerr.With(errors.Join(domain.ErrCopyFailed, err), "src", src), "dst", dst)
	}
	return nil
}

func copyFile(src, dst string, perm iofs.FileMode) error {
	// #nosec G304 -- src comes from walking a tree chosen by the caller
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	// #nosec G304 -- dst is inside the destination tree
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm|0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, perm)
}

// Move renames src to dst, copying across filesystems when rename cannot.
func Move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := CopyDir(src, dst); err != nil {
		_ = RemoveTree(dst)
		return err
	}
	return RemoveTree(src)
}

// ReplaceSymlink points link at target, replacing whatever is at link. The new
// link is created beside the old one and renamed over it.
func ReplaceSymlink(target, link string) error {
	if info, err := os.Lstat(link); err == nil && info.IsDir() {
		if err := RemoveTree(link); err != nil {
			return zerr.With(errors.Join(domain.ErrSymlinkFailed, err), "path", link)
		}
	}

	if err := os.MkdirAll(filepath.Dir(link), domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", filepath.Dir(link))
	}

	tmp, err := os.MkdirTemp(filepath.Dir(link), "."+filepath.Base(link)+".link-*")
	if err != nil {
		return zerr.With(errors.Join(domain.ErrSymlinkFailed, err), "path", link)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	staged := filepath.Join(tmp, "link")
	if err := os.Symlink(target, staged); err != nil {
		return zerr.With(errors.Join(domain.ErrSymlinkFailed, err), "path", link)
	}
	if err := os.Rename(staged, link); err != nil {
		return zerr.With(errors.Join(domain.ErrSymlinkFailed, err), "path", link)
	}
	return nil
}

// SetReadOnly clears every write bit below and including root.
func SetReadOnly(root string) error {
	return chmodTree(root, func(m iofs.FileMode) iofs.FileMode { return m &^ writeBits })
}

// SetWritable restores owner write permission below and including root.
func SetWritable(root string) error {
	return chmodTree(root, func(m iofs.FileMode) iofs.FileMode { return m | 0o200 })
}

func chmodTree(root string, mode func(iofs.FileMode) iofs.FileMode) error {
	// Walk with the root made accessible first so directories can be entered.
	return filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&iofs.ModeSymlink != 0 {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return os.Chmod(path, mode(info.Mode().Perm()))
	})
}

// IsReadOnly reports whether root has no write bits set.
func IsReadOnly(root string) bool {
	info, err := os.Stat(root)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&writeBits == 0
}

// RemoveTree deletes root even when it was made read-only.
func RemoveTree(root string) error {
	info, err := os.Lstat(root)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		if err := SetWritable(root); err != nil {
			return err
		}
	}
	return os.RemoveAll(root)
}

// Exists classifies path. A dangling symlink is removed and reported as absent.
// A non-directory is reported as domain.ErrUnexpectedFile.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return false, zerr.With(zerr.Wrap(domain.ErrUnexpectedFile, ""), "path", path)
		}
		return true, nil
	}
	if !errors.Is(err, iofs.ErrNotExist) {
		return false, err
	}
	if _, lerr := os.Lstat(path); lerr == nil {
		if rmErr := os.Remove(path); rmErr != nil {
			return false, rmErr
		}
	}
	return false, nil
}

// Stats returns the total size and the number of regular files below root.
func Stats(root string) (int64, int, error) {
	var (
		size  int64
		files int
	)
	err := filepath.WalkDir(root, func(_ string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		files++
		return nil
	})
	return size, files, err
}
