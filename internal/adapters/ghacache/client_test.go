package ghacache_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ivpm/internal/adapters/ghacache"
)

// fakeService is an in-memory Actions cache service.
type fakeService struct {
	mu       sync.Mutex
	reserved map[string]int64
	parts    map[int64]*bytes.Buffer
	ranges   []string
	blobs    map[string][]byte
	srv      *httptest.Server
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{
		reserved: map[string]int64{},
		parts:    map[int64]*bytes.Buffer{},
		blobs:    map[string][]byte{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /_apis/artifactcache/cache", f.lookup)
	mux.HandleFunc("POST /_apis/artifactcache/caches", f.reserve)
	mux.HandleFunc("PATCH /_apis/artifactcache/caches/{id}", f.patch)
	mux.HandleFunc("POST /_apis/artifactcache/caches/{id}", f.commit)
	mux.HandleFunc("GET /blob/{key}", f.blob)
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeService) lookup(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range strings.Split(r.URL.Query().Get("keys"), ",") {
		for key := range f.blobs {
			if key == k || strings.HasPrefix(key, k) {
				_ = json.NewEncoder(w).Encode(map[string]string{
					"cacheKey":        key,
					"archiveLocation": f.srv.URL + "/blob/" + key,
				})
				return
			}
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeService) reserve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reserved[req.Key]; ok {
		w.WriteHeader(http.StatusConflict)
		return
	}
	id := int64(len(f.reserved) + 1)
	f.reserved[req.Key] = id
	f.parts[id] = &bytes.Buffer{}
	_ = json.NewEncoder(w).Encode(map[string]int64{"cacheId": id})
}

func (f *fakeService) patch(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranges = append(f.ranges, r.Header.Get("Content-Range"))
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if part, ok := f.parts[id]; ok {
		part.Write(body)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeService) commit(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	for key, reserved := range f.reserved {
		if reserved == id {
			f.blobs[key] = f.parts[id].Bytes()
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeService) blob(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	data, ok := f.blobs[r.PathValue("key")]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	_, _ = w.Write(data)
}

func entry(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	data := make([]byte, 4096)
	_, err := rand.Read(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "payload"), data, 0o644))
	return dir
}

func TestClient_RoundTrip(t *testing.T) {
	svc := newFakeService(t)
	c := ghacache.NewClient(svc.srv.URL, "token", ghacache.WithChunkSize(1024))
	ctx := context.Background()
	require.True(t, c.Available())

	url, err := c.Lookup(ctx, "ivpm-pkg-Linux-lib-v1")
	require.NoError(t, err)
	assert.Empty(t, url)

	require.NoError(t, c.Upload(ctx, "ivpm-pkg-Linux-lib-v1", entry(t)))
	assert.Greater(t, len(svc.ranges), 1, "archive is uploaded in chunks")
	assert.True(t, strings.HasPrefix(svc.ranges[0], "bytes 0-1023/"))

	url, err = c.Lookup(ctx, "ivpm-pkg-Linux-lib-v1")
	require.NoError(t, err)
	require.NotEmpty(t, url)

	dest := filepath.Join(t.TempDir(), "restored")
	require.NoError(t, c.Download(ctx, url, dest))
	data, err := os.ReadFile(filepath.Join(dest, "payload"))
	require.NoError(t, err)
	assert.Len(t, data, 4096)
}

func TestClient_UploadExistingKey(t *testing.T) {
	svc := newFakeService(t)
	c := ghacache.NewClient(svc.srv.URL, "token")
	ctx := context.Background()

	require.NoError(t, c.Upload(ctx, "k", entry(t)))
	assert.NoError(t, c.Upload(ctx, "k", entry(t)))
}

func TestClient_RestoreKeys(t *testing.T) {
	svc := newFakeService(t)
	c := ghacache.NewClient(svc.srv.URL, "token")
	ctx := context.Background()

	require.NoError(t, c.Upload(ctx, "ivpm-pip-Linux-abc", entry(t)))

	url, err := c.Lookup(ctx, "ivpm-pip-Linux-def", "ivpm-pip-Linux-")
	require.NoError(t, err)
	assert.Contains(t, url, "ivpm-pip-Linux-abc")
}

func TestClient_Unavailable(t *testing.T) {
	assert.False(t, ghacache.NewClient("", "token").Available())
	assert.False(t, ghacache.NewClient("https://cache", "").Available())
	assert.Equal(t, "gha", ghacache.NewClient("", "").Name())
}

func TestClient_Unauthorized(t *testing.T) {
	svc := newFakeService(t)
	c := ghacache.NewClient(svc.srv.URL, "wrong")

	_, err := c.Lookup(context.Background(), "k")
	assert.Error(t, err)
}

func TestChunkSize(t *testing.T) {
	assert.Equal(t, 32<<20, ghacache.ChunkSize)
}
