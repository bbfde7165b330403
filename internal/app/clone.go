package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"go.trai.ch/ivpm/internal/adapters/source"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// CloneOptions configuration for the Clone method.
type CloneOptions struct {
	// Src is the URL of the project repository.
	Src string
	// Dir is the workspace to create. Empty uses the repository name.
	Dir string
	// Branch is checked out instead of the remote default branch.
	Branch string
	// Anonymous clones over the given URL without ssh rewriting, for the
	// project and for every git dependency.
	Anonymous bool
	// Update configures the update that runs inside the new workspace.
	Update UpdateOptions
}

// Clone clones a project repository and updates its dependencies.
func (a *App) Clone(ctx context.Context, opts CloneOptions) error {
	dir := opts.Dir
	if dir == "" {
		dir = WorkspaceName(opts.Src)
	}
	if _, err := os.Stat(dir); err == nil {
		return zerr.With(zerr.Wrap(domain.ErrWorkspaceExists, ""), "path", dir)
	}

	args := []string{"clone"}
	if opts.Branch != "" {
		args = append(args, "-b", opts.Branch)
	}
	args = append(args, source.CloneURL(opts.Src, opts.Anonymous), dir)

	a.logger.Info(fmt.Sprintf("cloning %s into %s", opts.Src, dir))
	if _, err := a.git.Run(ctx, "", args...); err != nil {
		return zerr.With(errors.Join(domain.ErrCloneFailed, err), "url", opts.Src)
	}

	up := opts.Update
	up.ProjectDir = dir
	up.AnonymousGit = up.AnonymousGit || opts.Anonymous
	return a.Update(ctx, up)
}

// WorkspaceName derives a directory name from a repository URL.
func WorkspaceName(src string) string {
	name := strings.TrimRight(src, "/")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".git")
	if name == "" {
		return path.Base(src)
	}
	return name
}
