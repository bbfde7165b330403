package forge

import (
	"context"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
)

// Resolver turns a gh-rls package into a concrete release asset.
type Resolver struct {
	Client   ports.ReleaseClient
	Platform Platform
}

// NewResolver creates a Resolver for plat.
func NewResolver(client ports.ReleaseClient, plat Platform) *Resolver {
	return &Resolver{Client: client, Platform: plat}
}

// Resolve queries the releases of src.URL and fills the resolved fields of src.
func (r *Resolver) Resolve(ctx context.Context, src *domain.ReleaseSource) (AssetChoice, error) {
	owner, repo, err := ParseRepoURL(src.URL)
	if err != nil {
		return AssetChoice{}, err
	}

	releases, err := r.Client.ListReleases(ctx, owner, repo)
	if err != nil {
		return AssetChoice{}, err
	}

	rel, err := SelectRelease(releases, src.Version, src.Prerelease)
	if err != nil {
		return AssetChoice{}, zerr.With(err, "repository", owner+"/"+repo)
	}

	choice, err := SelectAsset(rel, AssetRequest{File: src.File, ForceSource: src.ForceSource}, r.Platform)
	if err != nil {
		return AssetChoice{}, zerr.With(err, "repository", owner+"/"+repo)
	}

	src.ResolvedTag = rel.TagName
	src.AssetName = choice.Name
	src.AssetURL = choice.URL
	src.BinaryAsset = choice.Binary
	src.PlatformTag = choice.PlatformTag
	return choice, nil
}

// Version is the cache version of a resolved release: the tag, plus the
// platform for binary assets.
func Version(src *domain.ReleaseSource) string {
	if src.BinaryAsset && src.PlatformTag != "" {
		return src.ResolvedTag + "_" + src.PlatformTag
	}
	return src.ResolvedTag
}
