// Package status inspects materialized packages without modifying them.
package status

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/ivpm/internal/adapters/fs"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds every git call made while reading status.
const DefaultTimeout = 10 * time.Second

// Reader collects PkgStatus for locked packages.
type Reader struct {
	git     ports.GitRunner
	jobs    int
	timeout time.Duration
}

// New creates a Reader running at most jobs inspections at once.
func New(git ports.GitRunner, jobs int) *Reader {
	if jobs < 1 {
		jobs = 1
	}
	return &Reader{git: git, jobs: jobs, timeout: DefaultTimeout}
}

// Read inspects every checkout and returns the results in input order.
func (r *Reader) Read(ctx context.Context, checkouts []domain.Checkout) []domain.PkgStatus {
	out := make([]domain.PkgStatus, len(checkouts))
	var g errgroup.Group
	g.SetLimit(r.jobs)
	for i, co := range checkouts {
		g.Go(func() error {
			out[i] = r.readOne(ctx, co)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *Reader) readOne(ctx context.Context, co domain.Checkout) domain.PkgStatus {
	st := domain.PkgStatus{Name: co.Name, SrcType: co.Src, Path: co.Path, VCS: domain.VCSNone}

	if _, err := os.Stat(co.Path); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			st.Error = domain.StatusMissing
		} else {
			st.Error = err.Error()
		}
		return st
	}
	st.ReadOnly = fs.IsReadOnly(co.Path)

	if !r.isRepo(co.Path) {
		return st
	}
	st.VCS = domain.VCSGit

	commit, err := r.run(ctx, co.Path, "rev-parse", "--short", "HEAD")
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.Commit = commit

	if b, err := r.run(ctx, co.Path, "symbolic-ref", "--short", "-q", "HEAD"); err == nil {
		st.Branch = b
	}
	if tag, err := r.run(ctx, co.Path, "describe", "--tags", "--exact-match", "HEAD"); err == nil {
		st.Tag = tag
	}

	porcelain, err := r.run(ctx, co.Path, "status", "--porcelain")
	if err != nil {
		st.Error = err.Error()
		return st
	}
	if porcelain != "" {
		st.Dirty = true
		st.DirtyLines = strings.Split(porcelain, "\n")
	}

	if counts, err := r.run(ctx, co.Path, "rev-list", "--left-right", "--count", "HEAD...@{upstream}"); err == nil {
		st.Ahead, st.Behind = parseCounts(counts)
	}
	return st
}

// isRepo reports whether dir has its own .git entry. An enclosing
// repository does not count.
func (r *Reader) isRepo(dir string) bool {
	_, err := os.Lstat(filepath.Join(dir, ".git"))
	return err == nil
}

func (r *Reader) run(ctx context.Context, dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.git.Run(ctx, dir, args...)
}

// parseCounts reads the "<ahead>\t<behind>" output of rev-list --left-right.
func parseCounts(s string) (*int, *int) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return nil, nil
	}
	ahead, err1 := strconv.Atoi(fields[0])
	behind, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return nil, nil
	}
	return &ahead, &behind
}
