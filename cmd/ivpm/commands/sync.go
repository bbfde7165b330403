package commands

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"go.trai.ch/ivpm/internal/app"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/ui/style"
)

func (c *CLI) newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fast-forward writable git packages to their upstream branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			p := newPrinter(cmd.OutOrStdout())

			var mu sync.Mutex
			results, err := c.app.Sync(cmd.Context(), app.SyncOptions{
				RunOptions: c.runOptions(cmd),
				DryRun:     dryRun,
				OnResult: func(res domain.PkgSyncResult) {
					mu.Lock()
					defer mu.Unlock()
					p.syncLine(res)
				},
			})
			if results != nil {
				p.syncSummary(results, dryRun)
			}
			return err
		},
	}
	cmd.Flags().Bool("dry-run", false, "Report what would change without touching any working copy")
	cmd.Flags().IntP("jobs", "j", 0, "Number of packages synced in parallel (default: IVPM_JOBS or the number of CPUs)")
	return cmd
}

func (p *printer) syncLine(r domain.PkgSyncResult) {
	icon, outcome := p.outcome(r.Outcome)
	var detail string
	switch r.Outcome {
	case domain.SyncSynced:
		detail = fmt.Sprintf("%s %s..%s (%s)", r.Branch, short(r.OldCommit), short(r.NewCommit),
			english.Plural(r.CommitsBehind, "commit", ""))
	case domain.SyncDryWouldSync:
		detail = fmt.Sprintf("%s would pull %s", r.Branch, english.Plural(r.CommitsBehind, "commit", ""))
	case domain.SyncAhead:
		detail = fmt.Sprintf("%s is %s ahead", r.Branch, english.Plural(r.CommitsAhead, "commit", ""))
	case domain.SyncConflict, domain.SyncDryWouldConflict:
		detail = fmt.Sprintf("%s diverged: %d ahead, %d behind", r.Branch, r.CommitsAhead, r.CommitsBehind)
	case domain.SyncDirty, domain.SyncDryDirty:
		detail = fmt.Sprintf("%s has %s", r.Branch, english.Plural(len(r.DirtyFiles), "modified file", ""))
	case domain.SyncSkipped:
		detail = r.SkippedReason
	case domain.SyncError:
		detail = r.Error
	case domain.SyncUpToDate:
		detail = r.Branch
	}
	p.linef("%s %s %s %s", icon, p.Bold(r.Name), outcome, p.Faint(detail))

	for _, f := range r.ConflictFiles {
		p.linef("    %s %s", p.Fail("conflict"), f)
	}
	for _, f := range r.DirtyFiles {
		p.linef("    %s", f)
	}
	for _, s := range r.NextSteps {
		p.linef("    %s %s", p.Faint(style.Arrow), s)
	}
}

func (p *printer) outcome(o domain.SyncOutcome) (string, string) {
	label := strings.ToLower(strings.ReplaceAll(string(o), "_", " "))
	switch o {
	case domain.SyncSynced, domain.SyncUpToDate, domain.SyncDryWouldSync:
		return p.OK(style.Check), p.OK(label)
	case domain.SyncError:
		return p.Fail(style.Cross), p.Fail(label)
	case domain.SyncSkipped:
		return p.Faint(style.Skipped), p.Faint(label)
	default:
		return p.Warn(style.Bang), p.Warn(label)
	}
}

func (p *printer) syncSummary(results []domain.PkgSyncResult, dryRun bool) {
	counts := make(map[domain.SyncOutcome]int)
	for _, r := range results {
		counts[r.Outcome]++
	}
	order := []domain.SyncOutcome{
		domain.SyncSynced, domain.SyncDryWouldSync, domain.SyncUpToDate, domain.SyncAhead,
		domain.SyncDirty, domain.SyncDryDirty, domain.SyncConflict, domain.SyncDryWouldConflict,
		domain.SyncSkipped, domain.SyncError,
	}
	var parts []string
	for _, o := range order {
		if n := counts[o]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(strings.ReplaceAll(string(o), "_", " "))))
		}
	}
	verb := "Synced"
	if dryRun {
		verb = "Checked"
	}
	p.linef("%s %s: %s", verb, english.Plural(len(results), "package", ""), strings.Join(parts, ", "))
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
