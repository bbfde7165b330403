package s3cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ivpm/internal/adapters/s3cache"
	"go.trai.ch/ivpm/internal/core/domain"
)

func TestAvailable(t *testing.T) {
	assert.False(t, s3cache.NewClient(s3cache.Config{}).Available())
	assert.False(t, s3cache.NewClient(s3cache.Config{Endpoint: "minio:9000"}).Available())
	assert.True(t, s3cache.NewClient(s3cache.Config{Endpoint: "minio:9000", Bucket: "ci"}).Available())
	assert.Equal(t, "s3", s3cache.NewClient(s3cache.Config{}).Name())
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		in       string
		insecure bool
		host     string
		secure   bool
	}{
		{"https://s3.example.com", false, "s3.example.com", true},
		{"http://minio:9000", false, "minio:9000", false},
		{"minio:9000", true, "minio:9000", false},
		{"s3.example.com/", false, "s3.example.com", true},
	}
	for _, tt := range tests {
		host, secure := s3cache.SplitEndpoint(tt.in, tt.insecure)
		assert.Equal(t, tt.host, host, tt.in)
		assert.Equal(t, tt.secure, secure, tt.in)
	}
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "ivpm-pkg-Linux-lib-v1.tar.gz", s3cache.ObjectName("ivpm-pkg-Linux-lib-v1"))
}

func TestInvalidEndpoint(t *testing.T) {
	c := s3cache.NewClient(s3cache.Config{Endpoint: "http://bad host", Bucket: "ci"})
	_, err := c.Lookup(context.Background(), "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrRemoteCacheFailed.Error())
}
