package cmd

import (
	"github.com/spf13/cobra"

	"github.com/forgeworks/forgestat/core"
	"github.com/forgeworks/forgestat/internal/contract"
)

// usersCmd lists the registered active accounts.
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered active forge accounts.",
	Long: `List every active registered account on the forge.

These are the accounts commits can be attributed to; authors that resolve to
none of them are reported as external skips by the stats command.

Examples:
  forgestat users
  forgestat users --output json`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteUsers(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot list users", err)
		}
	},
}
