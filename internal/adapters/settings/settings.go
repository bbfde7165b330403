// Package settings reads process-wide configuration from the environment.
package settings

import (
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"go.trai.ch/ivpm/internal/build"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// Environment variables understood by ivpm.
const (
	EnvCache               = "IVPM_CACHE"
	EnvCacheBackend        = "IVPM_CACHE_BACKEND"
	EnvCachePrefix         = "IVPM_CACHE_PREFIX"
	EnvJobs                = "IVPM_JOBS"
	EnvActionsCacheURL     = "ACTIONS_CACHE_URL"
	EnvActionsRuntimeToken = "ACTIONS_RUNTIME_TOKEN"
	EnvRunnerOS            = "RUNNER_OS"
	EnvS3Endpoint          = "IVPM_S3_ENDPOINT"
	EnvS3Bucket            = "IVPM_S3_BUCKET"
	EnvS3AccessKey         = "IVPM_S3_ACCESS_KEY"
	EnvS3SecretKey         = "IVPM_S3_SECRET_KEY"
	EnvS3Insecure          = "IVPM_S3_INSECURE"
	EnvGitHubToken         = "GITHUB_TOKEN"
)

// DefaultCachePrefix prefixes every remote cache key.
const DefaultCachePrefix = "ivpm"

// Settings is the environment-derived configuration of one process.
type Settings struct {
	// CacheRoot is the L1 cache directory. Empty disables the filesystem cache.
	CacheRoot string
	// CacheBackend is the backend requested through the environment.
	CacheBackend string
	// CachePrefix prefixes remote cache keys.
	CachePrefix string
	// Jobs is the default worker count.
	Jobs int

	ActionsCacheURL     string
	ActionsRuntimeToken string
	RunnerOS            string

	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Insecure  bool

	GitHubToken string
}

var bindings = map[string]string{
	"cache.root":            EnvCache,
	"cache.backend":         EnvCacheBackend,
	"cache.prefix":          EnvCachePrefix,
	"jobs":                  EnvJobs,
	"actions.cache_url":     EnvActionsCacheURL,
	"actions.runtime_token": EnvActionsRuntimeToken,
	"runner.os":             EnvRunnerOS,
	"s3.endpoint":           EnvS3Endpoint,
	"s3.bucket":             EnvS3Bucket,
	"s3.access_key":         EnvS3AccessKey,
	"s3.secret_key":         EnvS3SecretKey,
	"s3.insecure":           EnvS3Insecure,
	"github.token":          EnvGitHubToken,
}

// Load reads the settings from the process environment.
func Load() (*Settings, error) {
	v := viper.New()
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to bind environment variable"), "env", env)
		}
	}
	v.SetDefault("cache.prefix", DefaultCachePrefix)
	v.SetDefault("jobs", runtime.NumCPU())
	v.SetDefault("runner.os", defaultRunnerOS())

	s := &Settings{
		CacheRoot:           strings.TrimSpace(v.GetString("cache.root")),
		CacheBackend:        strings.ToLower(strings.TrimSpace(v.GetString("cache.backend"))),
		CachePrefix:         v.GetString("cache.prefix"),
		Jobs:                v.GetInt("jobs"),
		ActionsCacheURL:     v.GetString("actions.cache_url"),
		ActionsRuntimeToken: v.GetString("actions.runtime_token"),
		RunnerOS:            v.GetString("runner.os"),
		S3Endpoint:          v.GetString("s3.endpoint"),
		S3Bucket:            v.GetString("s3.bucket"),
		S3AccessKey:         v.GetString("s3.access_key"),
		S3SecretKey:         v.GetString("s3.secret_key"),
		S3Insecure:          v.GetBool("s3.insecure"),
		GitHubToken:         v.GetString("github.token"),
	}
	if s.CachePrefix == "" {
		s.CachePrefix = DefaultCachePrefix
	}
	if s.Jobs <= 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidJobs, ""), "env", EnvJobs)
	}
	return s, nil
}

// UserAgent identifies ivpm in HTTP requests.
func (s *Settings) UserAgent() string {
	return "ivpm/" + build.Version
}

// defaultRunnerOS mirrors the RUNNER_OS values of GitHub Actions.
func defaultRunnerOS() string {
	switch runtime.GOOS {
	case "darwin":
		return "macOS"
	case "windows":
		return "Windows"
	default:
		return "Linux"
	}
}
