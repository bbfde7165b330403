// Package s3cache is a remote package cache stored in an S3-compatible bucket.
package s3cache

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.trai.ch/ivpm/internal/adapters/archive"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// Name is the backend name of the S3 cache.
	Name = "s3"

	objectSuffix = ".tar.gz"
	contentType  = "application/gzip"
)

// Config locates the bucket.
type Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Insecure  bool
}

// Client implements ports.RemoteCache. The minio client is created on first use.
type Client struct {
	cfg Config

	once sync.Once
	mc   *minio.Client
	err  error
}

// NewClient creates a Client for cfg.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// Name implements ports.RemoteCache.
func (c *Client) Name() string { return Name }

// Available implements ports.RemoteCache.
func (c *Client) Available() bool {
	return c.cfg.Endpoint != "" && c.cfg.Bucket != ""
}

func (c *Client) client() (*minio.Client, error) {
	c.once.Do(func() {
		endpoint, secure := SplitEndpoint(c.cfg.Endpoint, c.cfg.Insecure)
		c.mc, c.err = minio.New(endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(c.cfg.AccessKey, c.cfg.SecretKey, ""),
			Secure: secure,
		})
		if c.err != nil {
			c.err = zerr.With(errors.Join(domain.ErrRemoteCacheFailed, c.err), "endpoint", c.cfg.Endpoint)
		}
	})
	return c.mc, c.err
}

// Lookup implements ports.RemoteCache. The returned location is the object
// name. Restore keys match the most recently modified object with that prefix.
func (c *Client) Lookup(ctx context.Context, key string, restoreKeys ...string) (string, error) {
	mc, err := c.client()
	if err != nil {
		return "", err
	}

	object := ObjectName(key)
	_, err = mc.StatObject(ctx, c.cfg.Bucket, object, minio.StatObjectOptions{})
	switch {
	case err == nil:
		return object, nil
	case !isNotFound(err):
		return "", c.wrap(err, key)
	}

	for _, prefix := range restoreKeys {
		var newest minio.ObjectInfo
		for obj := range mc.ListObjects(ctx, c.cfg.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
			if obj.Err != nil {
				return "", c.wrap(obj.Err, prefix)
			}
			if strings.HasSuffix(obj.Key, objectSuffix) && obj.LastModified.After(newest.LastModified) {
				newest = obj
			}
		}
		if newest.Key != "" {
			return newest.Key, nil
		}
	}
	return "", nil
}

// Download implements ports.RemoteCache.
func (c *Client) Download(ctx context.Context, object, destDir string) error {
	mc, err := c.client()
	if err != nil {
		return err
	}
	obj, err := mc.GetObject(ctx, c.cfg.Bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return c.wrap(err, object)
	}
	defer func() { _ = obj.Close() }()
	return archive.ExtractTarGz(obj, destDir)
}

// Upload implements ports.RemoteCache. Existing objects are kept.
func (c *Client) Upload(ctx context.Context, key, srcDir string) error {
	mc, err := c.client()
	if err != nil {
		return err
	}

	object := ObjectName(key)
	if _, err := mc.StatObject(ctx, c.cfg.Bucket, object, minio.StatObjectOptions{}); err == nil {
		return nil
	} else if !isNotFound(err) {
		return c.wrap(err, key)
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(archive.WriteTarGz(pw, srcDir))
	}()

	_, err = mc.PutObject(ctx, c.cfg.Bucket, object, pr, -1, minio.PutObjectOptions{ContentType: contentType})
	_ = pr.CloseWithError(err)
	if err != nil {
		return c.wrap(err, key)
	}
	return nil
}

func (c *Client) wrap(err error, key string) error {
	err = errors.Join(domain.ErrRemoteCacheFailed, err)
	err = zerr.With(err, "bucket", c.cfg.Bucket)
	return zerr.With(err, "key", key)
}

// ObjectName maps a cache key to its object name.
func ObjectName(key string) string {
	return key + objectSuffix
}

// SplitEndpoint strips an http(s) scheme from endpoint and reports whether
// TLS should be used.
func SplitEndpoint(endpoint string, insecure bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), false
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), true
	default:
		return strings.TrimRight(endpoint, "/"), !insecure
	}
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
