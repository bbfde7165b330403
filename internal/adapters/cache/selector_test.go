package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ivpm/internal/adapters/cache"
	"go.trai.ch/ivpm/internal/adapters/settings"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/ivpm/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func remoteMock(ctrl *gomock.Controller, name string, available bool) *mocks.MockRemoteCache {
	r := mocks.NewMockRemoteCache(ctrl)
	r.EXPECT().Name().Return(name).AnyTimes()
	r.EXPECT().Available().Return(available).AnyTimes()
	return r
}

func TestSelector_Select(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		env      string
		project  string
		root     string
		gha, s3  bool
		want     string
		wantErr  error
	}{
		{name: "auto without root disables caching", want: ""},
		{name: "auto falls back to filesystem", root: "/cache", want: "filesystem"},
		{name: "auto prefers gha", root: "/cache", gha: true, s3: true, want: "gha"},
		{name: "auto uses s3 when gha is absent", root: "/cache", s3: true, want: "s3"},
		{name: "none", explicit: "none", root: "/cache", gha: true, want: ""},
		{name: "explicit beats env", explicit: "filesystem", env: "gha", root: "/cache", gha: true, want: "filesystem"},
		{name: "env beats project", env: "s3", project: "gha", root: "/cache", gha: true, s3: true, want: "s3"},
		{name: "project setting", project: "gha", root: "/cache", gha: true, want: "gha"},
		{name: "unknown backend", explicit: "redis", root: "/cache", wantErr: domain.ErrUnknownCacheBackend},
		{name: "unavailable remote", explicit: "gha", root: "/cache", wantErr: domain.ErrCacheBackendUnavailable},
		{name: "filesystem without root", explicit: "filesystem", wantErr: domain.ErrCacheNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			log := mocks.NewMockLogger(ctrl)
			log.EXPECT().Debug(gomock.Any()).AnyTimes()

			cfg := &settings.Settings{
				CacheRoot:    tt.root,
				CacheBackend: tt.env,
				CachePrefix:  settings.DefaultCachePrefix,
				RunnerOS:     "Linux",
			}
			proj := domain.NewProjInfo("p")
			proj.Cache.Backend = tt.project

			s := cache.NewSelector(cfg, log, remoteMock(ctrl, "gha", tt.gha), remoteMock(ctrl, "s3", tt.s3))
			backend, err := s.Select(context.Background(), tt.explicit, proj)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, backend)
				return
			}
			require.NotNil(t, backend)
			assert.Equal(t, tt.want, backend.Name())
		})
	}
}

func TestSelector_TwoTierImplementsVenvCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	cfg := &settings.Settings{CacheRoot: t.TempDir(), CachePrefix: "ivpm", RunnerOS: "Linux"}

	backend, err := cache.NewSelector(cfg, log, remoteMock(ctrl, "gha", true)).Select(context.Background(), "", nil)
	require.NoError(t, err)

	_, ok := backend.(ports.VenvCache)
	assert.True(t, ok)
}
