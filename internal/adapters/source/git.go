package source

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"go.trai.ch/zerr"
)

// shortCommitLen is the length of the commit prefix used as a cache version.
const shortCommitLen = 12

// GitHandler clones git repositories.
type GitHandler struct {
	git ports.GitRunner
}

// NewGitHandler creates a GitHandler.
func NewGitHandler(git ports.GitRunner) *GitHandler {
	return &GitHandler{git: git}
}

// Create implements ports.SourceHandler.
func (h *GitHandler) Create(name string, opts domain.Options, si domain.SrcInfo) (*domain.Package, error) {
	r := newOptionReader(opts)
	pkg, err := newPackage(domain.SrcGit, name, r, si)
	if err != nil {
		return nil, err
	}
	rawURL, err := requireURL(r, name, si)
	if err != nil {
		return nil, err
	}

	src := &domain.GitSource{
		URL:    rawURL,
		Branch: r.str("branch"),
		Tag:    r.str("tag"),
		Commit: r.str("commit"),
	}
	if src.Depth, err = r.integer("depth", 0); err != nil {
		return nil, err
	}
	if src.Anonymous, err = r.boolean("anonymous", false); err != nil {
		return nil, err
	}
	if pkg.Cache, err = r.cacheMode(); err != nil {
		return nil, err
	}
	if src.Branch != "" && src.Tag != "" {
		opt, _ := r.get("tag")
		return nil, invalid(opt, "branch and tag are mutually exclusive")
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	pkg.Source = src
	return pkg, nil
}

// Update implements ports.SourceHandler.
func (h *GitHandler) Update(
	ctx context.Context, uctx *ports.UpdateContext, pkg *domain.Package,
) (domain.UpdateResult, error) {
	src := pkg.Git()
	remote := remoteURL(src, uctx.AnonymousGit)
	fill := func(ctx context.Context, dir string) error {
		return h.clone(ctx, src, remote, dir)
	}

	var (
		res domain.UpdateResult
		err error
	)
	if useCache(uctx, pkg) {
		version, verr := h.version(ctx, src, remote)
		if verr != nil {
			return res, fetchErr(verr, pkg)
		}
		res, err = cachedUpdate(ctx, uctx, pkg, version, fill)
	} else {
		res, err = editableUpdate(ctx, uctx, pkg, fill)
	}
	if err != nil {
		return res, fetchErr(err, pkg)
	}

	head, err := h.git.Run(ctx, pkg.Path, "rev-parse", "HEAD")
	switch {
	case err == nil:
		src.ResolvedCommit = head
	case !res.AlreadyLoaded:
		return res, fetchErr(err, pkg)
	}
	return res, nil
}

// version derives the cache version without cloning: the pinned commit, or
// the commit the requested ref points to on the remote.
func (h *GitHandler) version(ctx context.Context, src *domain.GitSource, remote string) (string, error) {
	if src.Commit != "" {
		return shortCommit(src.Commit), nil
	}

	var refs []string
	switch {
	case src.Tag != "":
		refs = []string{"refs/tags/" + src.Tag + "^{}", "refs/tags/" + src.Tag}
	case src.Branch != "":
		refs = []string{"refs/heads/" + src.Branch}
	default:
		refs = []string{"HEAD"}
	}

	out, err := h.git.Run(ctx, "", append([]string{"ls-remote", remote}, refs...)...)
	if err != nil {
		return "", err
	}
	found := parseLsRemote(out)
	for _, ref := range refs {
		if sha, ok := found[ref]; ok {
			return shortCommit(sha), nil
		}
	}
	return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrGitRefNotFound, ""), "url", remote), "ref", refs[len(refs)-1])
}

func (h *GitHandler) clone(ctx context.Context, src *domain.GitSource, remote, dir string) error {
	if err := os.MkdirAll(filepath.Dir(dir), domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrCreateDirFailed, err), "path", filepath.Dir(dir))
	}

	args := []string{"clone"}
	if src.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(src.Depth))
	}
	switch {
	case src.Branch != "":
		args = append(args, "-b", src.Branch)
	case src.Tag != "":
		args = append(args, "-b", src.Tag)
	}
	args = append(args, remote, dir)
	if _, err := h.git.Run(ctx, "", args...); err != nil {
		return err
	}

	if src.Commit != "" {
		if src.Depth > 0 {
			if _, err := h.git.Run(ctx, dir, "fetch", "--depth", strconv.Itoa(src.Depth), "origin", src.Commit); err != nil {
				return err
			}
		}
		if _, err := h.git.Run(ctx, dir, "reset", "--hard", src.Commit); err != nil {
			return err
		}
	}

	if _, err := os.Stat(filepath.Join(dir, ".gitmodules")); err == nil {
		if _, err := h.git.Run(ctx, dir, "submodule", "update", "--init", "--recursive"); err != nil {
			return err
		}
	}
	return nil
}

func remoteURL(src *domain.GitSource, anonymous bool) string {
	return CloneURL(src.URL, src.Anonymous || anonymous)
}

// CloneURL rewrites an http(s) URL to the ssh form unless anonymous is set.
// Other schemes are returned unchanged.
func CloneURL(raw string, anonymous bool) string {
	if anonymous {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return raw
	}
	return "git@" + u.Hostname() + ":" + strings.TrimPrefix(u.Path, "/")
}

func parseLsRemote(out string) map[string]string {
	refs := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		sha, ref, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if ok {
			refs[ref] = sha
		}
	}
	return refs
}

func shortCommit(sha string) string {
	if len(sha) > shortCommitLen {
		return sha[:shortCommitLen]
	}
	return sha
}
