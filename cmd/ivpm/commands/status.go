package commands

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"go.trai.ch/ivpm/internal/app"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/ui/style"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the working-copy state of every package",
		Long: `Show the branch, commit and modification state of every package recorded
in the lock file. Use -v to list modified files and -vv to add the distance
to the upstream branch and the current tag.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetCount("verbose")
			statuses, err := c.app.Status(cmd.Context(), app.StatusOptions{RunOptions: c.runOptions(cmd)})
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			for i := range statuses {
				p.statusLine(&statuses[i], verbose)
			}
			p.statusSummary(statuses)
			return nil
		},
	}
	cmd.Flags().CountP("verbose", "v", "Increase detail (-v modified files, -vv upstream distance and tags)")
	cmd.Flags().IntP("jobs", "j", 0, "Number of packages inspected in parallel")
	return cmd
}

func (p *printer) statusLine(s *domain.PkgStatus, verbose int) {
	switch {
	case s.Error == domain.StatusMissing:
		p.linef("%s %s %s", p.Fail(style.Cross), p.Bold(s.Name), p.Fail("missing"))
		return
	case s.Error != "":
		p.linef("%s %s %s", p.Fail(style.Cross), p.Bold(s.Name), p.Fail(s.Error))
		return
	case s.VCS != domain.VCSGit:
		p.linef("%s %s %s", p.Faint(style.Skipped), p.Bold(s.Name), p.Faint(string(s.SrcType)))
		return
	}

	icon := p.OK(style.Check)
	state := p.OK("clean")
	if s.Dirty {
		icon = p.Warn(style.Modified)
		state = p.Warn("modified")
	}

	ref := s.Branch
	if ref == "" {
		ref = "(detached)"
	}
	detail := fmt.Sprintf("%s@%s", p.Accent(ref), short(s.Commit))
	if s.ReadOnly {
		detail += " " + p.Faint("read-only")
	}
	if verbose >= 2 {
		if s.Tag != "" {
			detail += " " + p.Faint("tag "+s.Tag)
		}
		if s.Ahead != nil && s.Behind != nil {
			detail += " " + p.Faint(fmt.Sprintf("↑%d ↓%d", *s.Ahead, *s.Behind))
		}
	}
	p.linef("%s %s %s %s", icon, p.Bold(s.Name), detail, state)

	if verbose >= 1 {
		for _, l := range s.DirtyLines {
			p.linef("    %s", l)
		}
	}
}

func (p *printer) statusSummary(statuses []domain.PkgStatus) {
	var dirty, failed int
	for _, s := range statuses {
		switch {
		case s.Error != "":
			failed++
		case s.Dirty:
			dirty++
		}
	}
	parts := []string{english.Plural(len(statuses), "package", "")}
	if dirty > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", dirty))
	}
	if failed > 0 {
		parts = append(parts, fmt.Sprintf("%d unavailable", failed))
	}
	p.linef("%s", p.Faint(strings.Join(parts, ", ")))
}
