package manifest

import (
	"iter"

	"go.trai.ch/ivpm/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// resolve follows aliases so anchors behave like the value they point to.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// pairs iterates over the key/value nodes of a mapping.
func pairs(n *yaml.Node) iter.Seq2[*yaml.Node, *yaml.Node] {
	return func(yield func(*yaml.Node, *yaml.Node) bool) {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if !yield(n.Content[i], resolve(n.Content[i+1])) {
				return
			}
		}
	}
}

// lookup returns the value node bound to key in a mapping.
func lookup(n *yaml.Node, key string) *yaml.Node {
	for k, v := range pairs(n) {
		if k.Value == key {
			return v
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

func (p *parser) loc(n *yaml.Node) domain.SrcInfo {
	if n == nil {
		return domain.SrcInfo{File: p.file}
	}
	return domain.SrcInfo{File: p.file, Line: n.Line, Column: n.Column}
}

// malformed reports a structural problem at n.
func (p *parser) malformed(n *yaml.Node, reason string) error {
	return withReason(p.loc(n).Annotate(domain.ErrMalformedManifest), reason)
}

func (p *parser) mapping(n *yaml.Node, what string) error {
	if n.Kind != yaml.MappingNode {
		return p.malformed(n, what+" must be a mapping")
	}
	return nil
}

func (p *parser) sequence(n *yaml.Node, what string) error {
	if n.Kind != yaml.SequenceNode {
		return p.malformed(n, what+" must be a list")
	}
	return nil
}

func (p *parser) scalar(n *yaml.Node, what string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", p.malformed(n, what+" must be a scalar")
	}
	return n.Value, nil
}

// strings reads a scalar or a list of scalars.
func (p *parser) strings(n *yaml.Node, what string) ([]string, error) {
	if n.Kind == yaml.ScalarNode {
		if isNull(n) {
			return nil, nil
		}
		return []string{n.Value}, nil
	}
	if err := p.sequence(n, what); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		s, err := p.scalar(resolve(item), what+" entries")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// value decodes an option value into its natural Go type.
func (p *parser) value(n *yaml.Node) (any, error) {
	var out any
	if err := n.Decode(&out); err != nil {
		return nil, withReason(p.loc(n).Annotate(domain.ErrInvalidPackageOption), err.Error())
	}
	return out, nil
}
