package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/ivpm/internal/app"
)

func (c *CLI) newCloneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone <src> [<wsdir>]",
		Short: "Clone a project and fetch its dependencies",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.CloneOptions{
				Src:    args[0],
				Update: c.updateOptions(cmd),
			}
			if len(args) == 2 {
				opts.Dir = args[1]
			}
			opts.Branch, _ = cmd.Flags().GetString("branch")
			opts.Anonymous, _ = cmd.Flags().GetBool("anonymous")
			opts.Update.DepSet, _ = cmd.Flags().GetString("dep-set")
			return c.app.Clone(cmd.Context(), opts)
		},
	}
	addUpdateFlags(cmd)
	cmd.Flags().StringP("branch", "b", "", "Branch to check out")
	cmd.Flags().Bool("anonymous", false, "Clone the project and its dependencies without ssh rewriting")
	cmd.Flags().StringP("dep-set", "d", "", "Dependency set to load (default: default-dev)")
	return cmd
}
