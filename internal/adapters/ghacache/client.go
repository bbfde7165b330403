// Package ghacache is a remote package cache backed by the GitHub Actions
// cache service.
package ghacache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.trai.ch/ivpm/internal/adapters/archive"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// Name is the backend name of the Actions cache.
	Name = "gha"

	// ChunkSize is the size of each upload request.
	ChunkSize = 32 << 20

	apiVersion      = "application/json;api-version=6.0-preview.1"
	maxRetryElapsed = time.Minute
)

// version scopes keys to the archive layout written by this client.
var version = func() string {
	sum := sha256.Sum256([]byte("ivpm|tar.gz|1"))
	return hex.EncodeToString(sum[:])
}()

// Client implements ports.RemoteCache.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	chunkSize  int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithChunkSize overrides the upload chunk size.
func WithChunkSize(n int64) Option {
	return func(cl *Client) { cl.chunkSize = n }
}

// NewClient creates a client for the cache service at baseURL.
func NewClient(baseURL, token string, opts ...Option) *Client {
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: http.DefaultClient,
		chunkSize:  ChunkSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements ports.RemoteCache.
func (c *Client) Name() string { return Name }

// Available implements ports.RemoteCache.
func (c *Client) Available() bool {
	return c.baseURL != "" && c.token != ""
}

type lookupResponse struct {
	CacheKey        string `json:"cacheKey"`
	ArchiveLocation string `json:"archiveLocation"`
}

// Lookup implements ports.RemoteCache.
func (c *Client) Lookup(ctx context.Context, key string, restoreKeys ...string) (string, error) {
	keys := append([]string{key}, restoreKeys...)
	q := url.Values{}
	q.Set("keys", strings.Join(keys, ","))
	q.Set("version", version)

	var loc string
	err := c.retry(ctx, func() error {
		resp, err := c.do(ctx, http.MethodGet, "_apis/artifactcache/cache?"+q.Encode(), nil, nil)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusNoContent:
			return nil
		case resp.StatusCode == http.StatusOK:
			var body lookupResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return backoff.Permanent(errors.Join(domain.ErrRemoteCacheFailed, err))
			}
			loc = body.ArchiveLocation
			return nil
		default:
			return statusErr(resp)
		}
	})
	if err != nil {
		return "", zerr.With(err, "key", key)
	}
	return loc, nil
}

// Download implements ports.RemoteCache.
func (c *Client) Download(ctx context.Context, archiveURL, destDir string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return errors.Join(domain.ErrRemoteCacheFailed, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Join(domain.ErrRemoteCacheFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusErr(resp)
	}
	return archive.ExtractTarGz(resp.Body, destDir)
}

type reserveRequest struct {
	Key       string `json:"key"`
	Version   string `json:"version"`
	CacheSize int64  `json:"cacheSize"`
}

type reserveResponse struct {
	CacheID int64 `json:"cacheId"`
}

type commitRequest struct {
	Size int64 `json:"size"`
}

// Upload implements ports.RemoteCache. A key that was already reserved is
// left alone.
func (c *Client) Upload(ctx context.Context, key, srcDir string) error {
	tmp, err := os.CreateTemp("", "ivpm-gha-*.tar.gz")
	if err != nil {
		return errors.Join(domain.ErrRemoteCacheFailed, err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if err := archive.WriteTarGz(tmp, srcDir); err != nil {
		return err
	}
	size, err := tmp.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Join(domain.ErrRemoteCacheFailed, err)
	}

	id, err := c.reserve(ctx, key, size)
	if err != nil {
		if errors.Is(err, domain.ErrRemoteKeyExists) {
			return nil
		}
		return zerr.With(err, "key", key)
	}

	for start := int64(0); start < size; start += c.chunkSize {
		end := min(start+c.chunkSize, size) - 1
		if err := c.uploadChunk(ctx, id, tmp, start, end); err != nil {
			return zerr.With(err, "key", key)
		}
	}

	return c.commit(ctx, id, size)
}

func (c *Client) reserve(ctx context.Context, key string, size int64) (int64, error) {
	body, err := json.Marshal(reserveRequest{Key: key, Version: version, CacheSize: size})
	if err != nil {
		return 0, errors.Join(domain.ErrRemoteCacheFailed, err)
	}

	var id int64
	err = c.retry(ctx, func() error {
		resp, err := c.do(ctx, http.MethodPost, "_apis/artifactcache/caches", bytes.NewReader(body), jsonHeader)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusConflict:
			return backoff.Permanent(zerr.Wrap(domain.ErrRemoteKeyExists, ""))
		case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
			return statusErr(resp)
		}
		var out reserveResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return backoff.Permanent(errors.Join(domain.ErrRemoteCacheFailed, err))
		}
		id = out.CacheID
		return nil
	})
	return id, err
}

func (c *Client) uploadChunk(ctx context.Context, id int64, f *os.File, start, end int64) error {
	return c.retry(ctx, func() error {
		section := io.NewSectionReader(f, start, end-start+1)
		header := http.Header{}
		header.Set("Content-Type", "application/octet-stream")
		header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/*", start, end))

		resp, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("_apis/artifactcache/caches/%d", id), section, header)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode/100 != 2 {
			return statusErr(resp)
		}
		return nil
	})
}

func (c *Client) commit(ctx context.Context, id, size int64) error {
	body, err := json.Marshal(commitRequest{Size: size})
	if err != nil {
		return errors.Join(domain.ErrRemoteCacheFailed, err)
	}
	return c.retry(ctx, func() error {
		resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("_apis/artifactcache/caches/%d", id), bytes.NewReader(body), jsonHeader)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode/100 != 2 {
			return statusErr(resp)
		}
		return nil
	})
}

var jsonHeader = http.Header{"Content-Type": []string{"application/json"}}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, backoff.Permanent(errors.Join(domain.ErrRemoteCacheFailed, err))
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", apiVersion)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(domain.ErrRemoteCacheFailed, err)
	}
	return resp, nil
}

func (c *Client) retry(ctx context.Context, op backoff.Operation) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxRetryElapsed
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}

// statusErr classifies an unexpected response: server errors are retried.
func statusErr(resp *http.Response) error {
	err := zerr.With(zerr.Wrap(domain.ErrRemoteCacheFailed, ""), "status", resp.StatusCode)
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return err
	}
	return backoff.Permanent(err)
}
