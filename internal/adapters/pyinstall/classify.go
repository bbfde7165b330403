// Package pyinstall installs the python side of the closure: registry
// packages and source checkouts, into one environment in the deps directory.
package pyinstall

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.trai.ch/ivpm/internal/core/domain"
)

// PkgTypePython forces a package to be treated as a python source package.
const PkgTypePython = "python"

var buildDescriptors = []string{"pyproject.toml", "setup.py", "setup.cfg"}

type kind int

const (
	kindNone kind = iota
	kindRegistry
	kindSource
)

// classify decides how pkg takes part in the python install.
func classify(pkg *domain.Package) kind {
	if pkg.Src == domain.SrcPyPI {
		return kindRegistry
	}
	if pkg.Path == "" {
		return kindNone
	}
	switch pkg.PkgType {
	case PkgTypePython:
		return kindSource
	case "":
		if hasDescriptor(pkg.Path) {
			return kindSource
		}
	}
	return kindNone
}

func hasDescriptor(dir string) bool {
	for _, name := range buildDescriptors {
		if fi, err := os.Stat(filepath.Join(dir, name)); err == nil && !fi.IsDir() {
			return true
		}
	}
	return false
}

// projectName returns the distribution name declared in pyproject.toml, or
// "" if there is none.
func projectName(dir string) string {
	//nolint:gosec // Path is a materialized package directory
	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		return ""
	}
	var pyproject struct {
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Name string `toml:"name"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return ""
	}
	if pyproject.Project.Name != "" {
		return pyproject.Project.Name
	}
	return pyproject.Tool.Poetry.Name
}
