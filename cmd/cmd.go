// Package cmd defines the command-line interface for forgestat.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/forgeworks/forgestat/internal/contract"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("forge-url", "", "Base URL of the git forge (e.g., https://git.example.com)")
	rootCmd.PersistentFlags().String("token", "", "Forge API token (prefer the FORGESTAT_TOKEN env variable)")
	rootCmd.PersistentFlags().String("username", "", "Forge username for basic auth")
	rootCmd.PersistentFlags().String("password", "", "Forge password for basic auth (prefer env variable)")
	rootCmd.PersistentFlags().String("source", "api", "Commit source: api or git")
	rootCmd.PersistentFlags().String("clone-dir", "", "Local directory for repository clones (required with --source git)")
	rootCmd.PersistentFlags().String("timeout", "60s", "Per-repository fetch timeout (e.g., 30s, 2m)")
	rootCmd.PersistentFlags().Int("days", 0, "Report on the last N days (1 uses the daily cutoff window)")
	rootCmd.PersistentFlags().String("period", "", "Named reporting period: 7, 14 or 30 days")
	rootCmd.PersistentFlags().String("since", "", "Explicit window start (YYYY-MM-DD or YYYY-MM-DD HH:MM:SS, UTC)")
	rootCmd.PersistentFlags().String("end", "", "Explicit window end (YYYY-MM-DD or YYYY-MM-DD HH:MM:SS, UTC)")
	rootCmd.PersistentFlags().String("aliases", "", "Comma-separated external:canonical author aliases")
	rootCmd.PersistentFlags().String("output", "text", "Output format: text or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of ranked users to display")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("cache-backend", "sqlite", "Commit cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}
}
