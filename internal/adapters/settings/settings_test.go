package settings_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ivpm/internal/adapters/settings"
	"go.trai.ch/ivpm/internal/core/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		settings.EnvCache, settings.EnvCacheBackend, settings.EnvCachePrefix, settings.EnvJobs,
		settings.EnvActionsCacheURL, settings.EnvActionsRuntimeToken, settings.EnvRunnerOS,
		settings.EnvS3Endpoint, settings.EnvS3Bucket, settings.EnvS3AccessKey, settings.EnvS3SecretKey,
		settings.EnvS3Insecure, settings.EnvGitHubToken,
	} {
		t.Setenv(env, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := settings.Load()
	require.NoError(t, err)

	assert.Empty(t, s.CacheRoot)
	assert.Empty(t, s.CacheBackend)
	assert.Equal(t, settings.DefaultCachePrefix, s.CachePrefix)
	assert.Equal(t, runtime.NumCPU(), s.Jobs)
	assert.False(t, s.S3Insecure)
	assert.Contains(t, s.UserAgent(), "ivpm/")
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(settings.EnvCache, "/var/cache/ivpm")
	t.Setenv(settings.EnvCacheBackend, " GHA ")
	t.Setenv(settings.EnvCachePrefix, "proj")
	t.Setenv(settings.EnvJobs, "3")
	t.Setenv(settings.EnvActionsCacheURL, "https://cache.example/")
	t.Setenv(settings.EnvRunnerOS, "Linux")
	t.Setenv(settings.EnvS3Insecure, "true")

	s, err := settings.Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/ivpm", s.CacheRoot)
	assert.Equal(t, "gha", s.CacheBackend)
	assert.Equal(t, "proj", s.CachePrefix)
	assert.Equal(t, 3, s.Jobs)
	assert.Equal(t, "https://cache.example/", s.ActionsCacheURL)
	assert.Equal(t, "Linux", s.RunnerOS)
	assert.True(t, s.S3Insecure)
}

func TestLoad_InvalidJobs(t *testing.T) {
	clearEnv(t)
	t.Setenv(settings.EnvJobs, "-2")

	_, err := settings.Load()
	require.ErrorIs(t, err, domain.ErrInvalidJobs)
}
