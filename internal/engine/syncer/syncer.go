// Package syncer brings writable git checkouts up to date with their
// upstream branch using fast-forward merges only.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/ivpm/internal/adapters/fs"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

const remote = "origin"

// Options controls one sync run.
type Options struct {
	DryRun bool
	// OnStart is called when a worker picks up a package.
	OnStart func(name string)
	// OnResult is called with the final result of each package.
	OnResult func(res domain.PkgSyncResult)
}

// Syncer runs the per-package sync state machine over a worker pool.
type Syncer struct {
	git    ports.GitRunner
	tracer ports.Tracer
	jobs   int
}

// New creates a Syncer running at most jobs packages at once.
func New(git ports.GitRunner, tracer ports.Tracer, jobs int) *Syncer {
	if jobs < 1 {
		jobs = 1
	}
	return &Syncer{git: git, tracer: tracer, jobs: jobs}
}

// Sync processes every checkout and returns the results in input order.
func (s *Syncer) Sync(ctx context.Context, checkouts []domain.Checkout, opts Options) []domain.PkgSyncResult {
	results := make([]domain.PkgSyncResult, len(checkouts))
	var g errgroup.Group
	g.SetLimit(s.jobs)
	for i, co := range checkouts {
		g.Go(func() error {
			if opts.OnStart != nil {
				opts.OnStart(co.Name)
			}
			ctx, span := s.tracer.Start(ctx, "sync "+co.Name)
			res := s.syncOne(ctx, co, opts.DryRun)
			span.SetAttribute("ivpm.outcome", string(res.Outcome))
			if res.Outcome == domain.SyncError {
				span.RecordError(errors.New(res.Error))
			}
			span.End()

			results[i] = res
			if opts.OnResult != nil {
				opts.OnResult(res)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// syncOne walks the state machine for one checkout. Only the live
// fast-forward step writes to the working copy.
//
//nolint:cyclop // one branch per outcome
func (s *Syncer) syncOne(ctx context.Context, co domain.Checkout, dryRun bool) domain.PkgSyncResult {
	res := domain.PkgSyncResult{Name: co.Name, SrcType: co.Src, Path: co.Path}

	if co.Src != domain.SrcGit {
		return skipped(res, "src:"+co.Src.String())
	}
	if !s.isRepoRoot(ctx, co.Path) {
		return failed(res, domain.ErrNotGitRepository.Error())
	}
	if fs.IsReadOnly(co.Path) {
		return skipped(res, "read-only")
	}
	if co.Tag != "" {
		return skipped(res, "tag:"+co.Tag)
	}

	branch, err := s.branch(ctx, co)
	if err != nil {
		return failed(res, err.Error())
	}
	res.Branch = branch

	if res.OldCommit, err = s.git.Run(ctx, co.Path, "rev-parse", "HEAD"); err != nil {
		return failed(res, err.Error())
	}
	res.NewCommit = res.OldCommit

	if _, err := s.git.Run(ctx, co.Path, "fetch", remote); err != nil {
		return failed(res, err.Error())
	}

	upstream := remote + "/" + branch
	if res.CommitsBehind, err = s.count(ctx, co.Path, "HEAD.."+upstream); err != nil {
		return failed(res, err.Error())
	}
	if res.CommitsAhead, err = s.count(ctx, co.Path, upstream+"..HEAD"); err != nil {
		return failed(res, err.Error())
	}

	if res.CommitsBehind == 0 {
		if res.CommitsAhead == 0 {
			res.Outcome = domain.SyncUpToDate
			return res
		}
		res.Outcome = domain.SyncAhead
		res.NextSteps = []string{fmt.Sprintf("git -C %s push %s %s", co.Path, remote, branch)}
		return res
	}

	dirty, err := s.dirtyFiles(ctx, co.Path)
	if err != nil {
		return failed(res, err.Error())
	}
	if len(dirty) > 0 {
		res.DirtyFiles = dirty
		res.Outcome = domain.SyncDirty
		if dryRun {
			res.Outcome = domain.SyncDryDirty
		}
		res.NextSteps = []string{
			fmt.Sprintf("commit or stash the changes in %s", co.Path),
			"re-run ivpm sync",
		}
		return res
	}

	if res.CommitsAhead > 0 {
		if dryRun {
			res.Outcome = domain.SyncDryWouldConflict
			res.ConflictFiles = s.conflictFiles(ctx, co.Path, upstream)
			return res
		}
		return s.conflict(ctx, res, upstream)
	}

	if dryRun {
		res.Outcome = domain.SyncDryWouldSync
		return res
	}
	if _, err := s.git.Run(ctx, co.Path, "merge", "--ff-only", upstream); err != nil {
		s.abortMerge(ctx, co.Path)
		return failed(res, err.Error())
	}
	if res.NewCommit, err = s.git.Run(ctx, co.Path, "rev-parse", "HEAD"); err != nil {
		return failed(res, err.Error())
	}
	res.Outcome = domain.SyncSynced
	return res
}

// conflict handles a diverged branch: the fast-forward is attempted and is
// expected to be refused, leaving the tree untouched.
func (s *Syncer) conflict(ctx context.Context, res domain.PkgSyncResult, upstream string) domain.PkgSyncResult {
	if _, err := s.git.Run(ctx, res.Path, "merge", "--ff-only", upstream); err == nil {
		head, herr := s.git.Run(ctx, res.Path, "rev-parse", "HEAD")
		if herr != nil {
			return failed(res, herr.Error())
		}
		res.NewCommit = head
		res.Outcome = domain.SyncSynced
		return res
	}
	s.abortMerge(ctx, res.Path)

	res.Outcome = domain.SyncConflict
	res.ConflictFiles = s.conflictFiles(ctx, res.Path, upstream)
	res.NextSteps = []string{
		fmt.Sprintf("git -C %s pull --rebase %s %s", res.Path, remote, res.Branch),
		"resolve the conflicts, then re-run ivpm sync",
	}
	return res
}

// conflictFiles lists the paths a merge of upstream would conflict on,
// computed without touching the working tree.
func (s *Syncer) conflictFiles(ctx context.Context, dir, upstream string) []string {
	out, err := s.git.Run(ctx, dir, "merge-tree", "--write-tree", "--name-only", "--no-messages", "HEAD", upstream)
	if err == nil {
		return nil
	}
	var gitErr *domain.GitError
	if !errors.As(err, &gitErr) || gitErr.ExitCode != 1 {
		return nil
	}
	out = strings.TrimSpace(gitErr.Stdout)

	lines := strings.Split(out, "\n")
	if len(lines) < 2 {
		return nil
	}
	// The first line is the tree id.
	var files []string
	for _, l := range lines[1:] {
		if l = strings.TrimSpace(l); l != "" {
			files = append(files, l)
		}
	}
	return files
}

func (s *Syncer) abortMerge(ctx context.Context, dir string) {
	if _, err := s.git.Run(ctx, dir, "rev-parse", "-q", "--verify", "MERGE_HEAD"); err == nil {
		_, _ = s.git.Run(ctx, dir, "merge", "--abort")
	}
}

// isRepoRoot reports whether dir is the top level of its own work tree. A
// directory nested in an enclosing repository is not a checkout.
func (s *Syncer) isRepoRoot(ctx context.Context, dir string) bool {
	top, err := s.git.Run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil || top == "" {
		return false
	}
	return samePath(filepath.FromSlash(top), dir)
}

func samePath(a, b string) bool {
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return ra == rb
}

// branch returns the checked-out branch. A detached HEAD falls back to the
// locked branch, then to the remote default branch.
func (s *Syncer) branch(ctx context.Context, co domain.Checkout) (string, error) {
	if b, err := s.git.Run(ctx, co.Path, "symbolic-ref", "--short", "-q", "HEAD"); err == nil && b != "" {
		return b, nil
	}
	if co.Branch != "" {
		return co.Branch, nil
	}
	if ref, err := s.git.Run(ctx, co.Path, "symbolic-ref", "--short", "-q", "refs/remotes/"+remote+"/HEAD"); err == nil {
		if b, ok := strings.CutPrefix(ref, remote+"/"); ok && b != "" {
			return b, nil
		}
	}
	return "", domain.ErrDetachedHead
}

func (s *Syncer) count(ctx context.Context, dir, revRange string) (int, error) {
	out, err := s.git.Run(ctx, dir, "rev-list", "--count", revRange)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(out))
}

// dirtyFiles lists modified tracked files. Untracked files do not block a
// fast-forward and are ignored.
func (s *Syncer) dirtyFiles(ctx context.Context, dir string) ([]string, error) {
	out, err := s.git.Run(ctx, dir, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

func skipped(res domain.PkgSyncResult, reason string) domain.PkgSyncResult {
	res.Outcome = domain.SyncSkipped
	res.SkippedReason = reason
	return res
}

func failed(res domain.PkgSyncResult, msg string) domain.PkgSyncResult {
	res.Outcome = domain.SyncError
	res.Error = msg
	return res
}
