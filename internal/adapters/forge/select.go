package forge

import (
	"strings"

	"github.com/hashicorp/go-version"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// LatestSpec selects the newest release.
const LatestSpec = "latest"

type relation int

const (
	relExact relation = iota
	relGT
	relGE
	relLT
	relLE
)

// versionSpec is a parsed gh-rls version requirement.
type versionSpec struct {
	raw    string
	latest bool
	rel    relation
	target *version.Version
}

func parseSpec(spec string) (versionSpec, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, LatestSpec) {
		return versionSpec{raw: LatestSpec, latest: true}, nil
	}

	vs := versionSpec{raw: spec, rel: relExact}
	rest := spec
	for _, op := range []struct {
		prefix string
		rel    relation
	}{
		{">=", relGE},
		{"<=", relLE},
		{">", relGT},
		{"<", relLT},
	} {
		if after, ok := strings.CutPrefix(spec, op.prefix); ok {
			vs.rel, rest = op.rel, strings.TrimSpace(after)
			break
		}
	}
	if vs.rel == relExact {
		return vs, nil
	}

	target, err := parseTag(rest)
	if err != nil {
		return versionSpec{}, zerr.With(zerr.Wrap(domain.ErrInvalidVersionSpec, ""), "spec", spec)
	}
	vs.target = target
	return vs, nil
}

func (s versionSpec) satisfiedBy(v *version.Version) bool {
	switch s.rel {
	case relGT:
		return v.GreaterThan(s.target)
	case relGE:
		return v.GreaterThanOrEqual(s.target)
	case relLT:
		return v.LessThan(s.target)
	case relLE:
		return v.LessThanOrEqual(s.target)
	default:
		return false
	}
}

// matchesExact accepts the tag itself, the tag with a v prefix and the spec
// with its v prefix removed.
func (s versionSpec) matchesExact(tag string) bool {
	return tag == s.raw || tag == "v"+s.raw || tag == strings.TrimPrefix(s.raw, "v")
}

func parseTag(tag string) (*version.Version, error) {
	return version.NewVersion(strings.TrimPrefix(strings.TrimSpace(tag), "v"))
}

// SelectRelease picks the release that satisfies spec. Drafts are never
// selected. Releases are expected in API order, newest first.
func SelectRelease(releases []domain.Release, spec string, prerelease bool) (domain.Release, error) {
	vs, err := parseSpec(spec)
	if err != nil {
		return domain.Release{}, err
	}

	published := make([]domain.Release, 0, len(releases))
	for _, r := range releases {
		if !r.Draft {
			published = append(published, r)
		}
	}

	switch {
	case vs.latest:
		if r, ok := pickLatest(published, prerelease); ok {
			return r, nil
		}
	case vs.rel == relExact:
		for _, r := range published {
			if vs.matchesExact(r.TagName) {
				return r, nil
			}
		}
	default:
		if r, ok := pickRelational(published, vs, prerelease); ok {
			return r, nil
		}
	}

	return domain.Release{}, zerr.With(zerr.Wrap(domain.ErrNoMatchingRelease, ""), "spec", vs.raw)
}

// pickLatest returns the first stable release, or the first prerelease when
// prereleases were requested. A request for a prerelease falls back to the
// first stable release when the repository has none.
func pickLatest(releases []domain.Release, prerelease bool) (domain.Release, bool) {
	if prerelease {
		for _, r := range releases {
			if r.Prerelease {
				return r, true
			}
		}
	}
	for _, r := range releases {
		if !r.Prerelease {
			return r, true
		}
	}
	return domain.Release{}, false
}

func pickRelational(releases []domain.Release, vs versionSpec, prerelease bool) (domain.Release, bool) {
	var (
		best    domain.Release
		bestVer *version.Version
	)
	for _, r := range releases {
		if r.Prerelease && !prerelease {
			continue
		}
		v, err := parseTag(r.TagName)
		if err != nil || !vs.satisfiedBy(v) {
			continue
		}
		if bestVer == nil || v.GreaterThan(bestVer) {
			best, bestVer = r, v
		}
	}
	return best, bestVer != nil
}
