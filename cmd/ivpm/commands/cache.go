package commands

import (
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"go.trai.ch/ivpm/internal/ui/style"
)

const defaultCleanDays = 7

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the shared package cache",
		Long: `Manage the shared package cache. Every subcommand takes an optional
cache directory and falls back to IVPM_CACHE.`,
	}
	cmd.AddCommand(c.newCacheInitCmd(), c.newCacheInfoCmd(), c.newCacheCleanCmd())
	return cmd
}

func (c *CLI) newCacheInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a cache directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := c.app.CacheInit(optionalArg(args))
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			p.linef("%s cache ready at %s", p.OK(style.Check), root)
			p.linef("%s", p.Faint("export IVPM_CACHE="+root))
			return nil
		},
	}
}

func (c *CLI) newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [dir]",
		Short: "List the cached packages and their versions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.app.CacheInfo(optionalArg(args))
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			p.linef("%s %s", p.Bold("cache"), report.Root)
			for _, name := range report.Packages() {
				p.linef("%s %s", p.Accent(style.Package), p.Bold(name))
				for _, e := range report.Versions(name) {
					p.linef("    %s %s %s", e.Version, humanize.Bytes(uint64(max(e.Size, 0))), //nolint:gosec // clamped
						p.Faint("used "+humanize.Time(e.ModTime)))
				}
			}
			p.linef("%s, %s, %s",
				english.Plural(len(report.Packages()), "package", ""),
				english.Plural(len(report.Entries), "version", ""),
				humanize.Bytes(uint64(max(report.TotalSize(), 0)))) //nolint:gosec // clamped
			return nil
		},
	}
}

func (c *CLI) newCacheCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [dir]",
		Short: "Remove cache entries that have not been used recently",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			removed, err := c.app.CacheClean(optionalArg(args), days)
			p := newPrinter(cmd.OutOrStdout())
			var freed int64
			for _, e := range removed {
				freed += e.Size
				p.linef("%s %s %s", p.Faint(style.Cross), e.Name, p.Faint(e.Version))
			}
			if err != nil {
				return err
			}
			p.linef("removed %s older than %s, freed %s",
				english.Plural(len(removed), "entry", "entries"),
				english.Plural(days, "day", ""),
				humanize.Bytes(uint64(max(freed, 0)))) //nolint:gosec // clamped
			return nil
		},
	}
	cmd.Flags().Int("days", defaultCleanDays, "Remove entries not used for this many days")
	return cmd
}

func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
