package domain

import (
	"iter"
	"slices"
)

// NameSet is a set of package names.
type NameSet map[string]struct{}

// Add inserts names into the set.
func (s NameSet) Add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

// Has reports whether name is in the set.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in lexical order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// PackagesInfo is an insertion-ordered mapping from name to Package.
// A name may be reserved with a nil package, which blocks later inserts.
type PackagesInfo struct {
	Name      string
	SrcInfo   SrcInfo
	SetupDeps map[string]NameSet

	order []string
	pkgs  map[string]*Package
}

// NewPackagesInfo creates an empty dependency set.
func NewPackagesInfo(name string) *PackagesInfo {
	return &PackagesInfo{
		Name:      name,
		SetupDeps: make(map[string]NameSet),
		pkgs:      make(map[string]*Package),
	}
}

// Add inserts pkg unless its name is already present. It reports whether the
// package was inserted.
func (p *PackagesInfo) Add(pkg *Package) bool {
	if _, exists := p.pkgs[pkg.Name]; exists {
		return false
	}
	p.order = append(p.order, pkg.Name)
	p.pkgs[pkg.Name] = pkg
	return true
}

// Reserve binds name to the nil sentinel unless it is already present.
func (p *PackagesInfo) Reserve(name string) {
	if _, exists := p.pkgs[name]; exists {
		return
	}
	p.order = append(p.order, name)
	p.pkgs[name] = nil
}

// Get returns the package bound to name. Reserved names return (nil, true).
func (p *PackagesInfo) Get(name string) (*Package, bool) {
	pkg, ok := p.pkgs[name]
	return pkg, ok
}

// Has reports whether name is bound, including reserved names.
func (p *PackagesInfo) Has(name string) bool {
	_, ok := p.pkgs[name]
	return ok
}

// Names returns every bound name in insertion order, including reserved names.
func (p *PackagesInfo) Names() []string {
	return slices.Clone(p.order)
}

// Packages returns the non-sentinel packages in insertion order.
func (p *PackagesInfo) Packages() []*Package {
	out := make([]*Package, 0, len(p.order))
	for pkg := range p.All() {
		out = append(out, pkg)
	}
	return out
}

// All iterates over the non-sentinel packages in insertion order.
func (p *PackagesInfo) All() iter.Seq[*Package] {
	return func(yield func(*Package) bool) {
		for _, name := range p.order {
			pkg := p.pkgs[name]
			if pkg == nil {
				continue
			}
			if !yield(pkg) {
				return
			}
		}
	}
}

// Len returns the number of non-sentinel packages.
func (p *PackagesInfo) Len() int {
	n := 0
	for _, pkg := range p.pkgs {
		if pkg != nil {
			n++
		}
	}
	return n
}

// AddSetupDeps merges names into the setup-deps of the named package.
func (p *PackagesInfo) AddSetupDeps(name string, deps NameSet) {
	if len(deps) == 0 {
		return
	}
	set, ok := p.SetupDeps[name]
	if !ok {
		set = make(NameSet, len(deps))
		p.SetupDeps[name] = set
	}
	for d := range deps {
		set.Add(d)
	}
}

// AllSetupDeps returns the union of every package's setup-deps.
func (p *PackagesInfo) AllSetupDeps() NameSet {
	out := make(NameSet)
	for _, deps := range p.SetupDeps {
		for d := range deps {
			out.Add(d)
		}
	}
	return out
}
