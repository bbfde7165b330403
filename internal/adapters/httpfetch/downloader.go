// Package httpfetch downloads single resources over HTTP(S) or from file:// URLs.
package httpfetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

const maxRetryElapsed = time.Minute

// Downloader implements ports.Downloader.
type Downloader struct {
	Client    *http.Client
	UserAgent string
	// MaxElapsed bounds the retries of one request.
	MaxElapsed time.Duration
}

// NewDownloader creates a Downloader on http.DefaultClient.
func NewDownloader(userAgent string) *Downloader {
	return &Downloader{Client: http.DefaultClient, UserAgent: userAgent, MaxElapsed: maxRetryElapsed}
}

// Probe returns the validators of rawURL from a HEAD request. Servers that
// refuse HEAD yield an empty result rather than an error.
func (d *Downloader) Probe(ctx context.Context, rawURL string) (domain.Download, error) {
	if path, ok := localPath(rawURL); ok {
		return statLocal(path)
	}

	var out domain.Download
	op := func() error {
		resp, err := d.do(ctx, http.MethodHead, rawURL)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			return statusErr(rawURL, resp.StatusCode)
		case resp.StatusCode == http.StatusMethodNotAllowed, resp.StatusCode == http.StatusForbidden:
			return nil
		case resp.StatusCode >= http.StatusBadRequest:
			return backoff.Permanent(statusErr(rawURL, resp.StatusCode))
		}
		out = validators(resp)
		return nil
	}
	if err := d.retry(ctx, op); err != nil {
		return domain.Download{}, err
	}
	return out, nil
}

// Download writes rawURL to dest. The body is written to a temporary file
// next to dest and renamed on success.
func (d *Downloader) Download(ctx context.Context, rawURL, dest string) (domain.Download, error) {
	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return domain.Download{}, zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", filepath.Dir(dest))
	}

	if path, ok := localPath(rawURL); ok {
		return copyLocal(path, dest)
	}

	var out domain.Download
	op := func() error {
		resp, err := d.do(ctx, http.MethodGet, rawURL)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode >= http.StatusInternalServerError, resp.StatusCode == http.StatusTooManyRequests:
			return statusErr(rawURL, resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return backoff.Permanent(statusErr(rawURL, resp.StatusCode))
		}

		n, err := writeAtomic(dest, resp.Body)
		if err != nil {
			return err
		}
		out = validators(resp)
		out.Path, out.Size = dest, n
		return nil
	}
	if err := d.retry(ctx, op); err != nil {
		return domain.Download{}, err
	}
	return out, nil
}

func (d *Downloader) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(zerr.With(errors.Join(domain.ErrFetchFailed, err), "url", rawURL))
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrFetchFailed, err), "url", rawURL)
	}
	return resp, nil
}

func (d *Downloader) retry(ctx context.Context, op backoff.Operation) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = d.MaxElapsed
	if b.MaxElapsedTime == 0 {
		b.MaxElapsedTime = maxRetryElapsed
	}
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}

func validators(resp *http.Response) domain.Download {
	return domain.Download{
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		Size:         resp.ContentLength,
	}
}

func statusErr(rawURL string, status int) error {
	err := zerr.With(zerr.Wrap(domain.ErrHTTPStatus, ""), "status", status)
	return zerr.With(err, "url", rawURL)
}

func writeAtomic(dest string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return 0, backoff.Permanent(errors.Join(domain.ErrFetchFailed, err))
	}
	n, err := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return 0, zerr.With(errors.Join(domain.ErrFetchFailed, err), "path", dest)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, backoff.Permanent(zerr.With(errors.Join(domain.ErrFetchFailed, err), "path", dest))
	}
	return n, nil
}

// localPath returns the filesystem path of a file:// URL.
func localPath(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	if u.Host != "" && u.Host != "localhost" {
		return u.Host + u.Path, true
	}
	return u.Path, true
}

func statLocal(path string) (domain.Download, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Download{}, zerr.With(errors.Join(domain.ErrFetchFailed, err), "path", path)
	}
	return domain.Download{
		Path:         path,
		LastModified: info.ModTime().UTC().Format(http.TimeFormat),
		Size:         info.Size(),
	}, nil
}

func copyLocal(path, dest string) (domain.Download, error) {
	meta, err := statLocal(path)
	if err != nil {
		return domain.Download{}, err
	}
	// #nosec G304 -- path is a file:// URL from the manifest
	f, err := os.Open(path)
	if err != nil {
		return domain.Download{}, zerr.With(errors.Join(domain.ErrFetchFailed, err), "path", path)
	}
	defer func() { _ = f.Close() }()

	n, err := writeAtomic(dest, f)
	if err != nil {
		return domain.Download{}, err
	}
	meta.Path, meta.Size = dest, n
	return meta, nil
}
