package forge

import (
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// AssetChoice is the file a gh-rls package downloads.
type AssetChoice struct {
	Name string
	URL  string
	// Binary is true for platform-specific assets.
	Binary bool
	// PlatformTag is the <os>_<arch> tag of binary assets.
	PlatformTag string
}

// AssetRequest carries the package options that influence asset selection.
type AssetRequest struct {
	// File names an asset explicitly. Glob patterns are accepted.
	File string
	// ForceSource selects the source archive even if binaries exist.
	ForceSource bool
}

var (
	manylinuxRe       = regexp.MustCompile(`manylinux_(\d+)_(\d+)_(x86_64|aarch64|i686|ppc64le|s390x|armv7l)`)
	legacyManylinuxRe = regexp.MustCompile(`manylinux(1|2010|2014)_(x86_64|aarch64|i686|ppc64le|s390x|armv7l)`)

	legacyManylinux = map[string]Glibc{
		"1":    {2, 5},
		"2010": {2, 12},
		"2014": {2, 17},
	}

	macTokens = []string{"darwin", "macos", "osx"}
)

type manylinuxTag struct {
	raw   string
	glibc Glibc
	arch  string
}

func parseManylinux(name string) []manylinuxTag {
	var tags []manylinuxTag
	for _, m := range manylinuxRe.FindAllStringSubmatch(name, -1) {
		major, _ := strconv.Atoi(m[1])
		minor, _ := strconv.Atoi(m[2])
		tags = append(tags, manylinuxTag{raw: m[0], glibc: Glibc{major, minor}, arch: m[3]})
	}
	for _, m := range legacyManylinuxRe.FindAllStringSubmatch(name, -1) {
		tags = append(tags, manylinuxTag{raw: m[0], glibc: legacyManylinux[m[1]], arch: m[2]})
	}
	return tags
}

func hasMacToken(name string) bool {
	lower := strings.ToLower(name)
	for _, tok := range macTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

func hasWindowsToken(name string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "windows") {
		return true
	}
	for tok := range strings.FieldsFuncSeq(lower, func(r rune) bool { return r == '-' || r == '.' || r == '_' }) {
		if tok == "win" || tok == "win32" || tok == "win64" {
			return true
		}
	}
	return false
}

func isPlatformSpecific(name string) bool {
	return strings.Contains(strings.ToLower(name), "manylinux") || hasMacToken(name) || hasWindowsToken(name)
}

// SelectAsset picks the asset of rel that fits the request and platform.
func SelectAsset(rel domain.Release, req AssetRequest, plat Platform) (AssetChoice, error) {
	if req.File != "" {
		return selectNamed(rel, req.File)
	}
	if req.ForceSource || !slices.ContainsFunc(rel.Assets, func(a domain.Asset) bool { return isPlatformSpecific(a.Name) }) {
		return sourceArchive(rel)
	}

	switch plat.OS {
	case "linux":
		return selectLinux(rel, plat)
	case "darwin":
		return selectByToken(rel, plat, hasMacToken, []string{plat.Machine()})
	case "windows":
		arches := []string{plat.Machine()}
		if plat.Machine() == "x86_64" {
			arches = append(arches, "amd64")
		}
		return selectByToken(rel, plat, hasWindowsToken, arches)
	default:
		return AssetChoice{}, noAsset(rel, "unsupported platform "+plat.OS)
	}
}

func selectNamed(rel domain.Release, pattern string) (AssetChoice, error) {
	for _, a := range rel.Assets {
		if a.Name == pattern {
			return AssetChoice{Name: a.Name, URL: a.URL}, nil
		}
	}
	for _, a := range rel.Assets {
		if ok, _ := path.Match(pattern, a.Name); ok {
			return AssetChoice{Name: a.Name, URL: a.URL}, nil
		}
	}
	return AssetChoice{}, noAsset(rel, "no asset named "+pattern)
}

// sourceArchive prefers the tarball over the zipball.
func sourceArchive(rel domain.Release) (AssetChoice, error) {
	switch {
	case rel.TarballURL != "":
		return AssetChoice{Name: rel.TagName + ".tar.gz", URL: rel.TarballURL}, nil
	case rel.ZipballURL != "":
		return AssetChoice{Name: rel.TagName + ".zip", URL: rel.ZipballURL}, nil
	default:
		return AssetChoice{}, noAsset(rel, "release has no source archive")
	}
}

// selectLinux picks the asset with the newest manylinux tag the runtime glibc
// can load.
func selectLinux(rel domain.Release, plat Platform) (AssetChoice, error) {
	var (
		best    *domain.Asset
		bestTag manylinuxTag
		seen    []string
	)
	for i := range rel.Assets {
		a := &rel.Assets[i]
		for _, tag := range parseManylinux(a.Name) {
			seen = append(seen, tag.raw)
			if tag.arch != plat.Machine() || !tag.glibc.AtMost(plat.Glibc) {
				continue
			}
			if best == nil || !tag.glibc.AtMost(bestTag.glibc) {
				best, bestTag = a, tag
			}
		}
	}
	if best == nil {
		err := noAsset(rel, "no manylinux asset fits the runtime glibc")
		err = zerr.With(err, "glibc", plat.Glibc.String())
		err = zerr.With(err, "arch", plat.Machine())
		return AssetChoice{}, zerr.With(err, "available", strings.Join(slices.Compact(slices.Sorted(slices.Values(seen))), ", "))
	}
	return AssetChoice{Name: best.Name, URL: best.URL, Binary: true, PlatformTag: plat.Tag()}, nil
}

func selectByToken(rel domain.Release, plat Platform, match func(string) bool, arches []string) (AssetChoice, error) {
	var fallback *domain.Asset
	for i := range rel.Assets {
		a := &rel.Assets[i]
		if !match(a.Name) {
			continue
		}
		lower := strings.ToLower(a.Name)
		for _, arch := range arches {
			if strings.Contains(lower, arch) {
				return AssetChoice{Name: a.Name, URL: a.URL, Binary: true, PlatformTag: plat.Tag()}, nil
			}
		}
		if fallback == nil {
			fallback = a
		}
	}
	if fallback != nil {
		return AssetChoice{Name: fallback.Name, URL: fallback.URL, Binary: true, PlatformTag: plat.Tag()}, nil
	}
	return AssetChoice{}, noAsset(rel, "no asset for "+plat.OS)
}

func noAsset(rel domain.Release, reason string) error {
	err := zerr.With(zerr.Wrap(domain.ErrNoMatchingAsset, ""), "release", rel.TagName)
	return zerr.With(err, "reason", reason)
}
