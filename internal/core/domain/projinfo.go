package domain

import "slices"

// EnvAction is how an environment specification modifies a variable.
type EnvAction string

const (
	EnvSet         EnvAction = "value"
	EnvPath        EnvAction = "path"
	EnvPathAppend  EnvAction = "path-append"
	EnvPathPrepend EnvAction = "path-prepend"
)

// EnvSpec is one entry of the manifest's env list.
type EnvSpec struct {
	Name    string
	Action  EnvAction
	Values  []string
	SrcInfo SrcInfo
}

// CacheConfig is the manifest's optional cache section.
type CacheConfig struct {
	Backend string
	Prefix  string
}

// ProjInfo is the parsed description of one project.
type ProjInfo struct {
	Name         string
	Version      string
	Dir          string
	DepsDir      string
	TargetDepSet string
	SetupDeps    NameSet
	Paths        map[string]map[string][]string
	Env          []EnvSpec
	Cache        CacheConfig
	SrcInfo      SrcInfo
	HasManifest  bool

	depSets     map[string]*PackagesInfo
	depSetOrder []string
}

// NewProjInfo creates a project description with only a name, as used for
// packages that carry no manifest.
func NewProjInfo(name string) *ProjInfo {
	return &ProjInfo{
		Name:      name,
		DepsDir:   DefaultDepsDir,
		SetupDeps: make(NameSet),
		Paths:     make(map[string]map[string][]string),
		depSets:   make(map[string]*PackagesInfo),
	}
}

// AddDepSet registers a dependency set. It reports false if the name is taken.
func (p *ProjInfo) AddDepSet(ds *PackagesInfo) bool {
	if _, exists := p.depSets[ds.Name]; exists {
		return false
	}
	p.depSets[ds.Name] = ds
	p.depSetOrder = append(p.depSetOrder, ds.Name)
	return true
}

// DepSet returns the named dependency set.
func (p *ProjInfo) DepSet(name string) (*PackagesInfo, bool) {
	ds, ok := p.depSets[name]
	return ds, ok
}

// DepSetNames returns the dependency set names in declaration order.
func (p *ProjInfo) DepSetNames() []string {
	return slices.Clone(p.depSetOrder)
}

// ConsumedDepSet returns the dependency set to traverse when this project is
// consumed as a dependency and the consumer did not request one.
func (p *ProjInfo) ConsumedDepSet() string {
	if p.TargetDepSet != "" {
		return p.TargetDepSet
	}
	return DefaultConsumedDepSet
}
