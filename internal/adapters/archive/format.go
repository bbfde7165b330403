// Package archive unpacks downloaded archives and packs cache entries.
package archive

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// Format is an archive family.
type Format string

// Supported archive formats.
const (
	FormatUnknown Format = ""
	FormatTarGz   Format = "tar.gz"
	FormatTarXz   Format = "tar.xz"
	FormatTarBz2  Format = "tar.bz2"
	FormatTar     Format = "tar"
	FormatZip     Format = "zip"
)

var suffixes = []struct {
	suffix string
	format Format
}{
	{".tar.gz", FormatTarGz},
	{".tgz", FormatTarGz},
	{".tar.xz", FormatTarXz},
	{".txz", FormatTarXz},
	{".tar.bz2", FormatTarBz2},
	{".tbz2", FormatTarBz2},
	{".tbz", FormatTarBz2},
	{".tar", FormatTar},
	{".zip", FormatZip},
	{".jar", FormatZip},
	{".whl", FormatZip},
}

// FormatFromName derives the format from a file name or URL.
func FormatFromName(name string) Format {
	lower := strings.ToLower(name)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.format
		}
	}
	return FormatUnknown
}

// Ext returns the file extension of the format, with a leading dot.
func (f Format) Ext() string {
	if f == FormatUnknown {
		return ""
	}
	return "." + string(f)
}

var magic = []struct {
	prefix []byte
	format Format
}{
	{[]byte{0x1f, 0x8b}, FormatTarGz},
	{[]byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, FormatTarXz},
	{[]byte("BZh"), FormatTarBz2},
	{[]byte("PK\x03\x04"), FormatZip},
}

// sniff detects the format from the leading bytes of a file.
func sniff(path string) (Format, error) {
	// #nosec G304 -- path is a download staged by ivpm
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FormatUnknown, err
	}
	head = head[:n]

	for _, m := range magic {
		if bytes.HasPrefix(head, m.prefix) {
			return m.format, nil
		}
	}
	if len(head) >= 262 && string(head[257:262]) == "ustar" {
		return FormatTar, nil
	}
	return FormatUnknown, nil
}

// decompress wraps r with the decoder of a tar-based format.
func decompress(format Format, r io.Reader) (io.Reader, func() error, error) {
	noop := func() error { return nil }
	switch format {
	case FormatTarGz:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, errors.Join(domain.ErrExtractFailed, err)
		}
		return gz, gz.Close, nil
	case FormatTarXz:
		xzr, err := xz.NewReader(bufio.NewReader(r))
		if err != nil {
			return nil, nil, errors.Join(domain.ErrExtractFailed, err)
		}
		return xzr, noop, nil
	case FormatTarBz2:
		return bzip2.NewReader(r), noop, nil
	case FormatTar:
		return r, noop, nil
	default:
		return nil, nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedArchive, ""), "format", string(format))
	}
}
