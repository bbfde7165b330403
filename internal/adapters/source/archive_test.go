package source_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ivpm/internal/adapters/archive"
	"go.trai.ch/ivpm/internal/adapters/httpfetch"
	"go.trai.ch/ivpm/internal/adapters/source"
	"go.trai.ch/ivpm/internal/core/domain"
)

// tarball returns a tar.gz whose single top-level directory holds ivpm.yaml.
func tarball(t *testing.T) []byte {
	t.Helper()
	src := t.TempDir()
	top := filepath.Join(src, "lib-1.0")
	require.NoError(t, os.MkdirAll(top, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(top, "ivpm.yaml"), []byte("package:\n  name: lib\n"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, archive.WriteTarGz(&buf, src))
	return buf.Bytes()
}

type server struct {
	*httptest.Server
	gets atomic.Int32
}

func newServer(t *testing.T, body []byte, etag string) *server {
	t.Helper()
	s := &server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if etag != "" {
			w.Header().Set("ETag", etag)
		}
		if r.Method == http.MethodGet {
			s.gets.Add(1)
			_, _ = w.Write(body)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func newArchiveHandler(tag domain.SourceType) *source.ArchiveHandler {
	return source.NewArchiveHandler(tag, httpfetch.NewDownloader("ivpm-test"), archive.NewExtractor())
}

func TestArchiveUpdate_EditableUnpack(t *testing.T) {
	srv := newServer(t, tarball(t), `"abc"`)
	h := newArchiveHandler(domain.SrcHTTP)
	uctx := newUpdateContext(t, nil)

	pkg, err := h.Create("lib", opts("url", srv.URL+"/lib-1.0.tar.gz"), si)
	require.NoError(t, err)

	res, err := h.Update(context.Background(), uctx, pkg)
	require.NoError(t, err)
	assert.False(t, res.Cacheable)
	assert.FileExists(t, filepath.Join(uctx.DepsDir, "lib", "ivpm.yaml"))
	assert.Equal(t, `"abc"`, pkg.Archive().ResolvedETag)

	res, err = h.Update(context.Background(), uctx, pkg)
	require.NoError(t, err)
	assert.True(t, res.AlreadyLoaded)
	assert.Equal(t, int32(1), srv.gets.Load())
}

func TestArchiveUpdate_TagForcesFormat(t *testing.T) {
	srv := newServer(t, tarball(t), "")
	h := newArchiveHandler(domain.SrcTgz)
	uctx := newUpdateContext(t, nil)

	pkg, err := h.Create("lib", opts("url", srv.URL+"/download"), si)
	require.NoError(t, err)

	_, err = h.Update(context.Background(), uctx, pkg)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(uctx.DepsDir, "lib", "ivpm.yaml"))
}

func TestArchiveUpdate_PlainFile(t *testing.T) {
	srv := newServer(t, []byte("jar-bytes"), "")
	h := newArchiveHandler(domain.SrcJar)
	uctx := newUpdateContext(t, nil)

	pkg, err := h.Create("tool", opts("url", srv.URL+"/tool-2.1.jar"), si)
	require.NoError(t, err)

	_, err = h.Update(context.Background(), uctx, pkg)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(uctx.DepsDir, "tool", "tool-2.1.jar"))
	require.NoError(t, err)
	assert.Equal(t, "jar-bytes", string(data))
}

func TestArchiveUpdate_CachedByETag(t *testing.T) {
	srv := newServer(t, tarball(t), `W/"v1"`)
	h := newArchiveHandler(domain.SrcHTTP)
	cache := newDirCache(t)
	ctx := context.Background()

	pkg, err := h.Create("lib", opts("url", srv.URL+"/lib.tar.gz", "cache", true), si)
	require.NoError(t, err)

	res, err := h.Update(ctx, newUpdateContext(t, cache), pkg)
	require.NoError(t, err)
	assert.True(t, res.Cacheable)
	assert.False(t, res.CacheHit)
	assert.DirExists(t, domain.VersionDir(cache.root, "lib", "v1"))

	res, err = h.Update(ctx, newUpdateContext(t, cache), pkg)
	require.NoError(t, err)
	assert.True(t, res.CacheHit)
	assert.Equal(t, int32(1), srv.gets.Load())
}

func TestArchiveUpdate_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	h := newArchiveHandler(domain.SrcHTTP)
	uctx := newUpdateContext(t, nil)

	pkg, err := h.Create("lib", opts("url", srv.URL+"/lib.tar.gz"), si)
	require.NoError(t, err)

	_, err = h.Update(context.Background(), uctx, pkg)
	require.ErrorIs(t, err, domain.ErrHTTPStatus)
	assert.NoDirExists(t, filepath.Join(uctx.DepsDir, "lib"))
}
