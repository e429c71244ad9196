package cmd

import (
	"github.com/spf13/cobra"

	"github.com/forgeworks/forgestat/core"
	"github.com/forgeworks/forgestat/internal/contract"
)

// reposCmd lists all repositories that a stats run would cover.
var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List repositories across all organizations.",
	Long: `List every non-fork repository across all organizations on the forge.

This is exactly the repository set a stats run iterates, in the same order.

Examples:
  forgestat repos
  forgestat repos --output json`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRepos(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot list repositories", err)
		}
	},
}
