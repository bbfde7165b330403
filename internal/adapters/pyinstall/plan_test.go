package pyinstall

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ivpm/internal/core/domain"
)

func sourcePkg(t *testing.T, root, name, descriptor, content string, requires ...string) *domain.Package {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	if descriptor != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, descriptor), []byte(content), domain.FilePerm))
	}
	return &domain.Package{
		Name: name, Src: domain.SrcGit, Path: dir, Requires: requires,
		Source: &domain.GitSource{URL: "https://example.com/" + name + ".git"},
	}
}

func pypiPkg(name, version string) *domain.Package {
	return &domain.Package{Name: name, Src: domain.SrcPyPI, Source: &domain.PyPISource{Version: version}}
}

func TestBuildPlan(t *testing.T) {
	root := t.TempDir()

	raw := sourcePkg(t, root, "hdl", "pyproject.toml", "[project]\nname = \"hdl\"\n")
	raw.PkgType = "raw"
	forced := sourcePkg(t, root, "scripts", "", "")
	forced.PkgType = PkgTypePython

	pkgs := []*domain.Package{
		sourcePkg(t, root, "tool", "setup.cfg", "[metadata]\nname = tool\n", "plugin", "numpy"),
		pypiPkg("numpy", ">=1.26"),
		sourcePkg(t, root, "core", "pyproject.toml", "[project]\nname = \"acme-core\"\n"),
		pypiPkg("setuptools-scm", ""),
		sourcePkg(t, root, "plugin", "setup.py", "from setuptools import setup\nsetup()\n", "core"),
		pypiPkg("pyyaml", "6.0.1"),
		sourcePkg(t, root, "data", "", ""),
		raw,
		forced,
		pypiPkg("wheel", ""),
	}
	setup := domain.NameSet{}
	setup.Add("setuptools-scm", "wheel")

	plan, err := buildPlan(pkgs, setup)
	require.NoError(t, err)

	assert.Equal(t, []string{"setuptools-scm", "wheel"}, plan.Setup)
	assert.Equal(t, []string{"numpy", "pyyaml"}, plan.Registry)
	assert.Equal(t, [][]string{{"core", "scripts"}, {"plugin"}, {"tool"}}, plan.Layers)
	assert.Equal(t, map[string]string{"core": "acme-core"}, plan.Dists)

	var sb strings.Builder
	for _, f := range plan.Files {
		sb.WriteString("# " + f.Name + "\n")
		sb.Write(f.render())
	}
	rendered := strings.ReplaceAll(sb.String(), filepath.ToSlash(root), "<root>")

	g := goldie.New(t)
	g.Assert(t, "plan", []byte(rendered))
}

func TestBuildPlan_Empty(t *testing.T) {
	root := t.TempDir()
	plan, err := buildPlan([]*domain.Package{sourcePkg(t, root, "data", "", "")}, domain.NameSet{})
	require.NoError(t, err)
	assert.Empty(t, plan.Files)
	assert.Empty(t, plan.Layers)
}

func TestBuildPlan_Cycle(t *testing.T) {
	root := t.TempDir()
	pkgs := []*domain.Package{
		sourcePkg(t, root, "a", "setup.py", "", "b"),
		sourcePkg(t, root, "b", "setup.py", "", "a"),
	}

	_, err := buildPlan(pkgs, domain.NameSet{})
	require.ErrorIs(t, err, domain.ErrDependencyCycle)
}

func TestBuildPlan_SelfRequirementIgnored(t *testing.T) {
	root := t.TempDir()
	pkgs := []*domain.Package{sourcePkg(t, root, "a", "setup.py", "", "a")}

	plan, err := buildPlan(pkgs, domain.NameSet{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}}, plan.Layers)
}

func TestRequirement(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"", "numpy"},
		{"1.26.4", "numpy==1.26.4"},
		{">=1.26", "numpy>=1.26"},
		{"==1.26.4", "numpy==1.26.4"},
		{" ~=1.26 ", "numpy~=1.26"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, requirement(pypiPkg("numpy", tt.version), kindRegistry))
		})
	}
}

func TestProjectName(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, projectName(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"),
		[]byte("[tool.poetry]\nname = \"poetry-pkg\"\n"), domain.FilePerm))
	assert.Equal(t, "poetry-pkg", projectName(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte("not = [toml"), domain.FilePerm))
	assert.Empty(t, projectName(dir))
}
