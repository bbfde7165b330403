// Package manifest reads ivpm.yaml project descriptions.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Legacy dependency list keys and the dependency sets they map to.
const (
	legacyDepsKey    = "deps"
	legacyDevDepsKey = "dev-deps"
)

// Loader implements ports.ManifestLoader on top of yaml.v3 nodes so that every
// value keeps its file position.
type Loader struct {
	Logger   ports.Logger
	Registry ports.SourceRegistry
}

// NewLoader creates a Loader that builds packages through registry.
func NewLoader(logger ports.Logger, registry ports.SourceRegistry) *Loader {
	return &Loader{Logger: logger, Registry: registry}
}

// LoadDir reads <dir>/ivpm.yaml.
func (l *Loader) LoadDir(dir string) (*domain.ProjInfo, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrManifestReadFailed, err), "directory", dir)
	}

	path := filepath.Join(absDir, domain.ManifestFileName)
	// #nosec G304 -- path is the manifest of a project directory chosen by the user
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrManifestNotFound, ""), "directory", absDir)
		}
		return nil, zerr.With(errors.Join(domain.ErrManifestReadFailed, err), "file", path)
	}
	defer func() { _ = f.Close() }()

	return l.Load(f, path)
}

// Load parses a manifest from r.
func (l *Loader) Load(r io.Reader, file string) (*domain.ProjInfo, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, withReason(zerr.With(zerr.Wrap(domain.ErrMalformedManifest, ""), "file", file), "empty document")
		}
		return nil, withReason(zerr.With(zerr.Wrap(domain.ErrMalformedManifest, ""), "file", file), err.Error())
	}

	p := &parser{
		file:     file,
		dir:      filepath.Dir(file),
		logger:   l.Logger,
		registry: l.Registry,
	}
	return p.project(&doc)
}

type parser struct {
	file     string
	dir      string
	logger   ports.Logger
	registry ports.SourceRegistry
}

func (p *parser) project(doc *yaml.Node) (*domain.ProjInfo, error) {
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, p.malformed(root, "empty document")
		}
		root = resolve(root.Content[0])
	}
	if root.Kind != yaml.MappingNode {
		return nil, p.malformed(root, "top-level value must be a mapping")
	}

	pkgNode := lookup(root, "package")
	if pkgNode == nil {
		return nil, p.malformed(root, "missing 'package' section")
	}
	if err := p.mapping(pkgNode, "package"); err != nil {
		return nil, err
	}

	proj := domain.NewProjInfo("")
	proj.Dir = p.dir
	proj.SrcInfo = p.loc(pkgNode)
	proj.HasManifest = true

	legacy := make(map[string]*yaml.Node)
	var depSets *yaml.Node

	for k, v := range pairs(pkgNode) {
		var err error
		switch k.Value {
		case "name":
			proj.Name, err = p.scalar(v, "package name")
		case "version":
			proj.Version, err = p.scalar(v, "version")
		case "deps-dir":
			proj.DepsDir, err = p.scalar(v, "deps-dir")
		case "default-dep-set":
			proj.TargetDepSet, err = p.scalar(v, "default-dep-set")
		case "setup-deps":
			err = p.setupDeps(v, proj.SetupDeps)
		case "dep-sets":
			depSets = v
		case legacyDepsKey, legacyDevDepsKey:
			legacy[k.Value] = v
		case "paths":
			err = p.paths(v, proj.Paths)
		case "env":
			proj.Env, err = p.env(v)
		case "cache":
			err = p.cache(v, &proj.Cache)
		default:
			p.warn(k, fmt.Sprintf("unknown package key %q ignored", k.Value))
		}
		if err != nil {
			return nil, err
		}
	}

	if proj.Name == "" {
		return nil, p.malformed(pkgNode, "package is missing 'name'")
	}

	// Legacy lists are also accepted next to the package section.
	for _, key := range []string{legacyDepsKey, legacyDevDepsKey} {
		if v := lookup(root, key); v != nil {
			if _, dup := legacy[key]; dup {
				return nil, p.malformed(v, fmt.Sprintf("%q is declared twice", key))
			}
			legacy[key] = v
		}
	}

	switch {
	case depSets != nil && len(legacy) > 0:
		return nil, p.malformed(depSets, "dep-sets cannot be combined with deps or dev-deps")
	case depSets != nil:
		if err := p.depSets(depSets, proj); err != nil {
			return nil, err
		}
	case len(legacy) > 0:
		if err := p.legacyDeps(legacy, proj); err != nil {
			return nil, err
		}
	}

	return proj, nil
}

func (p *parser) setupDeps(n *yaml.Node, into domain.NameSet) error {
	names, err := p.strings(n, "setup-deps")
	if err != nil {
		return err
	}
	into.Add(names...)
	return nil
}

func (p *parser) depSets(n *yaml.Node, proj *domain.ProjInfo) error {
	if isNull(n) {
		return nil
	}
	if err := p.sequence(n, "dep-sets"); err != nil {
		return err
	}

	for _, item := range n.Content {
		item = resolve(item)
		if err := p.mapping(item, "dep-set"); err != nil {
			return err
		}

		nameNode := lookup(item, "name")
		if nameNode == nil {
			return p.malformed(item, "dep-set is missing 'name'")
		}
		name, err := p.scalar(nameNode, "dep-set name")
		if err != nil {
			return err
		}

		ds := domain.NewPackagesInfo(name)
		ds.SrcInfo = p.loc(item)

		for k, v := range pairs(item) {
			switch k.Value {
			case "name":
			case "deps":
				if err := p.deps(v, ds); err != nil {
					return err
				}
			default:
				p.warn(k, fmt.Sprintf("unknown dep-set key %q ignored", k.Value))
			}
		}

		if !proj.AddDepSet(ds) {
			return withReason(p.loc(item).Annotate(domain.ErrMalformedManifest),
				fmt.Sprintf("dep-set %q is declared twice", name))
		}
	}
	return nil
}

// legacyDeps maps `deps` onto the default set and `deps` followed by
// `dev-deps` onto the default-dev set.
func (p *parser) legacyDeps(legacy map[string]*yaml.Node, proj *domain.ProjInfo) error {
	base := domain.NewPackagesInfo(domain.DefaultConsumedDepSet)
	dev := domain.NewPackagesInfo(domain.DefaultDepSet)

	if n, ok := legacy[legacyDepsKey]; ok {
		base.SrcInfo = p.loc(n)
		dev.SrcInfo = p.loc(n)
		if err := p.deps(n, base); err != nil {
			return err
		}
		for pkg := range base.All() {
			dev.Add(pkg)
		}
	}
	if n, ok := legacy[legacyDevDepsKey]; ok {
		if dev.SrcInfo.IsZero() {
			dev.SrcInfo = p.loc(n)
		}
		if err := p.deps(n, dev); err != nil {
			return err
		}
	}

	proj.AddDepSet(base)
	proj.AddDepSet(dev)
	return nil
}

func (p *parser) deps(n *yaml.Node, ds *domain.PackagesInfo) error {
	if isNull(n) {
		return nil
	}
	if err := p.sequence(n, "deps"); err != nil {
		return err
	}
	for _, item := range n.Content {
		if err := p.dep(resolve(item), ds); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) dep(n *yaml.Node, ds *domain.PackagesInfo) error {
	if err := p.mapping(n, "dependency"); err != nil {
		return err
	}
	si := p.loc(n)

	var (
		name    string
		src     string
		srcNode *yaml.Node
		opts    domain.Options
	)
	for k, v := range pairs(n) {
		switch k.Value {
		case "name":
			s, err := p.scalar(v, "dependency name")
			if err != nil {
				return err
			}
			name = s
		case "src":
			s, err := p.scalar(v, "src")
			if err != nil {
				return err
			}
			src, srcNode = s, v
		default:
			val, err := p.value(v)
			if err != nil {
				return err
			}
			if s, ok := val.(string); ok && k.Value == "url" {
				val = os.ExpandEnv(s)
			}
			opts = append(opts, domain.Option{Key: k.Value, Value: val, SrcInfo: p.loc(k)})
		}
	}

	if name == "" {
		return si.Annotate(domain.ErrMissingPackageName)
	}

	if prev, exists := ds.Get(name); exists && prev != nil {
		err := si.Annotate(domain.ErrDuplicatePackage)
		err = zerr.With(err, "package", name)
		err = zerr.With(err, "dep_set", ds.Name)
		return zerr.With(err, "other", prev.SrcInfo.String())
	}

	tag := domain.SourceType(src)
	if srcNode == nil {
		inferred, err := inferSource(opts, si)
		if err != nil {
			return zerr.With(err, "package", name)
		}
		tag = inferred
	} else if src == "" {
		return p.malformed(srcNode, "src must not be empty")
	}

	pkg, err := p.registry.Create(tag, name, opts, si)
	if err != nil {
		return err
	}
	pkg.SrcInfo = si
	ds.Add(pkg)
	return nil
}

// inferSource derives a source tag from the url option.
func inferSource(opts domain.Options, si domain.SrcInfo) (domain.SourceType, error) {
	opt, ok := opts.Get("url")
	if !ok {
		return "", si.Annotate(domain.ErrSourceNotInferred)
	}
	url := opt.String()
	switch {
	case strings.HasSuffix(url, ".git"):
		return domain.SrcGit, nil
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return domain.SrcHTTP, nil
	case strings.HasPrefix(url, "file://"):
		if isLocalDir(url, si.File) {
			return domain.SrcDir, nil
		}
		return domain.SrcFile, nil
	default:
		return "", zerr.With(opt.SrcInfo.Annotate(domain.ErrSourceNotInferred), "url", url)
	}
}

// isLocalDir reports whether a file:// URL names an existing directory.
// Relative paths resolve against the manifest's directory.
func isLocalDir(url, manifest string) bool {
	path := filepath.FromSlash(strings.TrimPrefix(url, "file://"))
	if !filepath.IsAbs(path) && manifest != "" {
		path = filepath.Join(filepath.Dir(manifest), path)
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (p *parser) paths(n *yaml.Node, into map[string]map[string][]string) error {
	if isNull(n) {
		return nil
	}
	if err := p.mapping(n, "paths"); err != nil {
		return err
	}
	for kind, subs := range pairs(n) {
		if err := p.mapping(subs, "paths."+kind.Value); err != nil {
			return err
		}
		group, ok := into[kind.Value]
		if !ok {
			group = make(map[string][]string)
			into[kind.Value] = group
		}
		for sub, list := range pairs(subs) {
			entries, err := p.strings(list, "paths."+kind.Value+"."+sub.Value)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if !filepath.IsAbs(e) {
					e = filepath.Join(p.dir, e)
				}
				group[sub.Value] = append(group[sub.Value], e)
			}
		}
	}
	return nil
}

var envActions = []domain.EnvAction{domain.EnvSet, domain.EnvPath, domain.EnvPathAppend, domain.EnvPathPrepend}

func (p *parser) env(n *yaml.Node) ([]domain.EnvSpec, error) {
	if isNull(n) {
		return nil, nil
	}
	if err := p.sequence(n, "env"); err != nil {
		return nil, err
	}

	specs := make([]domain.EnvSpec, 0, len(n.Content))
	for _, item := range n.Content {
		item = resolve(item)
		if err := p.mapping(item, "env entry"); err != nil {
			return nil, err
		}

		spec := domain.EnvSpec{SrcInfo: p.loc(item)}
		for k, v := range pairs(item) {
			if k.Value == "name" {
				s, err := p.scalar(v, "env name")
				if err != nil {
					return nil, err
				}
				spec.Name = s
				continue
			}

			action := domain.EnvAction(k.Value)
			if !slices.Contains(envActions, action) {
				return nil, p.malformed(k, fmt.Sprintf("unknown env action %q", k.Value))
			}
			if spec.Action != "" {
				return nil, p.malformed(k, "env entry has more than one action")
			}
			values, err := p.strings(v, "env "+k.Value)
			if err != nil {
				return nil, err
			}
			spec.Action, spec.Values = action, values
		}

		if spec.Name == "" {
			return nil, p.malformed(item, "env entry is missing 'name'")
		}
		if spec.Action == "" {
			return nil, p.malformed(item, "env entry needs one of value, path, path-append, path-prepend")
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (p *parser) cache(n *yaml.Node, into *domain.CacheConfig) error {
	if isNull(n) {
		return nil
	}
	if err := p.mapping(n, "cache"); err != nil {
		return err
	}
	for k, v := range pairs(n) {
		var err error
		switch k.Value {
		case "backend":
			into.Backend, err = p.scalar(v, "cache backend")
		case "prefix":
			into.Prefix, err = p.scalar(v, "cache prefix")
		default:
			p.warn(k, fmt.Sprintf("unknown cache key %q ignored", k.Value))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) warn(n *yaml.Node, msg string) {
	if p.logger == nil {
		return
	}
	p.logger.Warn(fmt.Sprintf("%s: %s", p.loc(n), msg))
}

func withReason(err error, reason string) error {
	if reason == "" {
		return err
	}
	return zerr.With(err, "reason", reason)
}
