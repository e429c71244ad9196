package cmd

import (
	"github.com/spf13/cobra"

	"github.com/forgeworks/forgestat/core"
	"github.com/forgeworks/forgestat/internal/contract"
)

// statsCmd runs the full contribution aggregation pass.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate contribution statistics across all repositories.",
	Long: `Collect commits from every non-fork repository on the forge, attribute them
to registered accounts, and print per-user and per-repository rollups.

Commits are fetched either through the forge REST API (default) or by cloning
each repository and parsing git log directly (--source git). Author identities
that do not match a registered login are resolved through aliases, email
matching and fuzzy login matching; the rest are counted as skips.

Examples:
  # Last 7 days through the API
  forgestat stats --period 7

  # Today's activity against yesterday's cutoff
  forgestat stats --days 1

  # Explicit window, parsing git log from local clones
  forgestat stats --since 2025-06-01 --end 2025-06-30 --source git --clone-dir /tmp/repos

  # Machine-readable snapshot
  forgestat stats --period 30 --output json --output-file report.json`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStats(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot aggregate statistics", err)
		}
	},
}
