package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/ivpm/internal/app"
)

func (c *CLI) newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Fetch the project dependencies and write the lock file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Update(cmd.Context(), c.updateOptions(cmd))
		},
	}
	addUpdateFlags(cmd)
	cmd.Flags().StringP("dep-set", "d", "", "Dependency set to load (default: default-dev)")
	cmd.Flags().Bool("lock", false, "Reproduce the workspace from the existing lock file")
	return cmd
}

// addUpdateFlags registers the flags shared by update and clone.
func addUpdateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntP("jobs", "j", 0, "Number of packages fetched in parallel (default: IVPM_JOBS or the number of CPUs)")
	f.BoolP("anonymous-git", "a", false, "Clone git dependencies over their given URL without ssh rewriting")
	f.Bool("py-system-site-packages", false, "Give the python environment access to system site packages")
	f.Bool("skip-py-install", false, "Do not create or update the python environment")
	f.String("cache-backend", "", "Cache backend: none, filesystem, gha, s3 or auto")
	f.StringP("output", "o", "auto", "Progress output: auto, interactive or plain")
	f.BoolP("quiet", "q", false, "Hide subprocess output")
}

func (c *CLI) updateOptions(cmd *cobra.Command) app.UpdateOptions {
	f := cmd.Flags()
	opts := app.UpdateOptions{
		RunOptions: c.runOptions(cmd),
		LogEvents:  c.jsonLogs,
	}
	opts.AnonymousGit, _ = f.GetBool("anonymous-git")
	opts.SystemSitePackages, _ = f.GetBool("py-system-site-packages")
	opts.SkipPyInstall, _ = f.GetBool("skip-py-install")
	opts.CacheBackend, _ = f.GetString("cache-backend")
	opts.OutputMode, _ = f.GetString("output")
	opts.SuppressOutput, _ = f.GetBool("quiet")
	if f.Lookup("dep-set") != nil {
		opts.DepSet, _ = f.GetString("dep-set")
		opts.FromLock, _ = f.GetBool("lock")
	}
	return opts
}
