package fs

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// HashStrings returns the hex XXHash of parts, separated so that ("ab","c")
// and ("a","bc") differ.
func HashStrings(parts ...string) string {
	h := xxhash.New()
	for _, p := range parts {
		_, _ = h.WriteString(p)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// HashFiles returns the hex XXHash over the contents of paths, in order.
func HashFiles(paths ...string) (string, error) {
	h := xxhash.New()
	for _, path := range paths {
		f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
		}
		_, err = io.Copy(h, f)
		_ = f.Close()
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
		}
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
