package pyinstall

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/philopon/go-toposort"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// RequirementsFile is one installer invocation.
type RequirementsFile struct {
	Name  string
	Lines []string
}

// Plan is the ordered set of requirements files for one closure.
type Plan struct {
	Setup    []string
	Registry []string
	Layers   [][]string
	Files    []RequirementsFile
	// Dists maps source packages to the distribution name they declare.
	Dists map[string]string
}

// FileName returns the name of the i-th requirements file, counting from 1.
func FileName(i int) string {
	return fmt.Sprintf("python_pkgs_%d.txt", i)
}

// buildPlan orders pkgs into setup, registry and source layers.
func buildPlan(pkgs []*domain.Package, setup domain.NameSet) (*Plan, error) {
	plan := &Plan{Dists: make(map[string]string)}

	var setupLines, registryLines []string
	sources := make(map[string]*domain.Package)
	var sourceOrder []string

	for _, pkg := range pkgs {
		k := classify(pkg)
		if k == kindNone {
			continue
		}
		line := requirement(pkg, k)
		if k == kindSource {
			if name := projectName(pkg.Path); name != "" {
				plan.Dists[pkg.Name] = name
			}
		}

		switch {
		case setup.Has(pkg.Name):
			plan.Setup = append(plan.Setup, pkg.Name)
			setupLines = append(setupLines, line)
		case k == kindRegistry:
			plan.Registry = append(plan.Registry, pkg.Name)
			registryLines = append(registryLines, line)
		default:
			sources[pkg.Name] = pkg
			sourceOrder = append(sourceOrder, pkg.Name)
		}
	}

	layers, err := layer(sources, sourceOrder)
	if err != nil {
		return nil, err
	}
	plan.Layers = layers

	add := func(lines []string) {
		if len(lines) == 0 {
			return
		}
		plan.Files = append(plan.Files, RequirementsFile{Name: FileName(len(plan.Files) + 1), Lines: lines})
	}
	add(setupLines)
	add(registryLines)
	for _, names := range layers {
		lines := make([]string, len(names))
		for i, name := range names {
			lines[i] = requirement(sources[name], kindSource)
		}
		add(lines)
	}
	return plan, nil
}

// layer groups source packages so that every package comes after the
// source packages it requires. Names within a layer are sorted.
func layer(sources map[string]*domain.Package, order []string) ([][]string, error) {
	if len(order) == 0 {
		return nil, nil
	}

	graph := toposort.NewGraph(len(order))
	graph.AddNodes(order...)
	for _, name := range order {
		for _, dep := range sources[name].Requires {
			if _, ok := sources[dep]; ok && dep != name {
				graph.AddEdge(dep, name)
			}
		}
	}

	sorted, ok := graph.Toposort()
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrDependencyCycle, ""), "packages", strings.Join(order, ", "))
	}

	depth := make(map[string]int, len(sorted))
	maxDepth := 0
	for _, name := range sorted {
		d := 0
		for _, dep := range sources[name].Requires {
			if dd, ok := depth[dep]; ok && dep != name && dd+1 > d {
				d = dd + 1
			}
		}
		depth[name] = d
		maxDepth = max(maxDepth, d)
	}

	layers := make([][]string, maxDepth+1)
	for _, name := range sorted {
		layers[depth[name]] = append(layers[depth[name]], name)
	}
	for _, l := range layers {
		slices.Sort(l)
	}
	return layers, nil
}

// requirement renders pkg as a requirements file line.
func requirement(pkg *domain.Package, k kind) string {
	if k == kindSource {
		return "-e " + filepath.ToSlash(pkg.Path)
	}
	spec := ""
	if src := pkg.PyPI(); src != nil {
		spec = strings.TrimSpace(src.Version)
	}
	switch {
	case spec == "":
		return pkg.Name
	case spec[0] >= '0' && spec[0] <= '9':
		return pkg.Name + "==" + spec
	default:
		return pkg.Name + spec
	}
}

// render returns the content of f.
func (f RequirementsFile) render() []byte {
	return []byte(strings.Join(f.Lines, "\n") + "\n")
}
