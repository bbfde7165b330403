package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ivpm/internal/core/domain"
)

func pkg(name string) *domain.Package {
	return &domain.Package{Name: name, Src: domain.SrcDir, Source: &domain.DirSource{URL: "file:///" + name}}
}

func TestPackagesInfo_FirstInsertWins(t *testing.T) {
	info := domain.NewPackagesInfo("default")

	first := pkg("a")
	require.True(t, info.Add(first))
	assert.False(t, info.Add(pkg("a")))

	got, ok := info.Get("a")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestPackagesInfo_ReserveBlocksInsert(t *testing.T) {
	info := domain.NewPackagesInfo("closure")
	info.Reserve("root")

	assert.False(t, info.Add(pkg("root")))
	assert.True(t, info.Has("root"))

	got, ok := info.Get("root")
	assert.True(t, ok)
	assert.Nil(t, got)

	require.True(t, info.Add(pkg("b")))
	assert.Equal(t, []string{"root", "b"}, info.Names())
	assert.Equal(t, 1, info.Len())

	pkgs := info.Packages()
	require.Len(t, pkgs, 1)
	assert.Equal(t, "b", pkgs[0].Name)
}

func TestPackagesInfo_InsertionOrder(t *testing.T) {
	info := domain.NewPackagesInfo("default")
	for _, n := range []string{"zeta", "alpha", "mid"} {
		info.Add(pkg(n))
	}

	var names []string
	for p := range info.All() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestPackagesInfo_SetupDeps(t *testing.T) {
	info := domain.NewPackagesInfo("closure")
	info.AddSetupDeps("a", domain.NameSet{"setuptools": {}})
	info.AddSetupDeps("a", domain.NameSet{"wheel": {}})
	info.AddSetupDeps("b", domain.NameSet{"cython": {}})
	info.AddSetupDeps("c", nil)

	assert.Equal(t, []string{"setuptools", "wheel"}, info.SetupDeps["a"].Sorted())
	assert.NotContains(t, info.SetupDeps, "c")
	assert.Equal(t, []string{"cython", "setuptools", "wheel"}, info.AllSetupDeps().Sorted())
}

func TestProjInfo_DepSets(t *testing.T) {
	proj := domain.NewProjInfo("top")
	assert.Equal(t, domain.DefaultDepsDir, proj.DepsDir)
	assert.Equal(t, "default", proj.ConsumedDepSet())

	require.True(t, proj.AddDepSet(domain.NewPackagesInfo("default-dev")))
	require.True(t, proj.AddDepSet(domain.NewPackagesInfo("default")))
	assert.False(t, proj.AddDepSet(domain.NewPackagesInfo("default")))
	assert.Equal(t, []string{"default-dev", "default"}, proj.DepSetNames())

	_, ok := proj.DepSet("missing")
	assert.False(t, ok)

	proj.TargetDepSet = "runtime"
	assert.Equal(t, "runtime", proj.ConsumedDepSet())
}
